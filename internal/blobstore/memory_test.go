package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocx/syncx/internal/apperr"
)

func TestMemory_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "backup/id/1/x.txt", []byte("hello")))

	got, err := m.Get(ctx, "backup/id/1/x.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestMemory_GetMissingReturnsNotFound(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.NotFound))
}
