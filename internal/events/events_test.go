package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, change Change) error {
	return m.Called(change).Error(0)
}

func TestFanout_PublishesToEverySink(t *testing.T) {
	ok := new(mockPublisher)
	failing := new(mockPublisher)
	ok.On("Publish", mock.MatchedBy(func(c Change) bool { return !c.At.IsZero() })).Return(nil)
	failing.On("Publish", mock.Anything).Return(errors.New("broker down"))

	f := NewFanout(zap.NewNop()).Add("redis", ok).Add("kafka", failing)
	err := f.Publish(context.Background(), Change{Entity: EntityTransaction, Action: ActionCreated, ID: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	ok.AssertExpectations(t)
	failing.AssertExpectations(t)
}

func TestMessage(t *testing.T) {
	partner := uint(3)
	msg, err := Message(Change{Entity: EntityRecharge, Action: ActionApproved, ID: 42, PartnerID: &partner})
	require.NoError(t, err)
	assert.Equal(t, "recharge:42", string(msg.Key))

	decoded, err := Decode(string(msg.Value))
	require.NoError(t, err)
	assert.Equal(t, uint(42), decoded.ID)
	assert.Equal(t, uint(3), *decoded.PartnerID)
}
