package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New(3, 10)
	assert.Equal(t, 20, p.Offset)

	p = New(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = New(1, 1000)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestTotalPages(t *testing.T) {
	p := New(1, 10)
	p.Total = 21
	assert.Equal(t, int64(3), p.TotalPages())

	meta := Response(p, []int{})["meta"]
	assert.NotNil(t, meta)
}
