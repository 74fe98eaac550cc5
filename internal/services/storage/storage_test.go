package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name, err := ObjectName("/recharges/12/", "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "recharges/12/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	_, err = ObjectName("recharges", "application/zip")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "x", "image/png", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
