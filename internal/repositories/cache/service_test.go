package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   uint
	Name string
}

func TestNilServiceNeverHits(t *testing.T) {
	var s *Service
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", row{ID: 1}))
	found, err := s.Lookup(ctx, "k", &row{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, s.Invalidate(ctx, "k"))
}

func TestRemember_LoadsThroughNilService(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func() (*row, error) {
		calls++
		return &row{ID: 3, Name: "cash"}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := Remember(ctx, nil, "payment_method:code:cash", load)
		require.NoError(t, err)
		assert.Equal(t, "cash", got.Name)
	}
	assert.Equal(t, 2, calls)
}

func TestRemember_PassesThroughMissesAndErrors(t *testing.T) {
	ctx := context.Background()

	got, err := Remember(ctx, nil, "k", func() (*row, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, got)

	boom := errors.New("db down")
	_, err = Remember(ctx, nil, "k", func() (*row, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

type recorder struct {
	keys [][]string
}

func (r *recorder) Invalidate(_ context.Context, keys ...string) error {
	r.keys = append(r.keys, keys)
	return nil
}

func TestPending_HoldsKeysUntilFlush(t *testing.T) {
	ctx := context.Background()
	target := &recorder{}
	p := NewPending(target)

	require.NoError(t, p.Invalidate(ctx, "active_contract:partner:4"))
	require.NoError(t, p.Invalidate(ctx, "user:id:9", "active_contract:partner:4"))
	assert.Empty(t, target.keys)

	require.NoError(t, p.Flush(ctx))
	assert.Equal(t, [][]string{{"active_contract:partner:4", "user:id:9"}}, target.keys)

	require.NoError(t, p.Flush(ctx))
	assert.Equal(t, []string(nil), target.keys[1], "keys are flushed once")
}
