package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocx/syncx/internal/cache"
)

// countingPersistence wraps memoryPersistence to count getClient calls, so
// tests can assert the cache genuinely short-circuits the store.
type countingPersistence struct {
	*memoryPersistence
	getCalls int
}

func (c *countingPersistence) getClient(ctx context.Context, id string) (ClientRecord, bool, error) {
	c.getCalls++
	return c.memoryPersistence.getClient(ctx, id)
}

func TestCacheWarmedRead(t *testing.T) {
	ctx := context.Background()
	db := &countingPersistence{memoryPersistence: newMemoryPersistence()}
	store := newStore(db, cache.NewMemory())

	record := ClientRecord{ID: "client-1", PasswordHash: "hash"}
	require.NoError(t, store.InsertClient(ctx, record))

	got, ok, err := store.FindClient(ctx, "client-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record, got)

	// InsertClient already warms the cache, so this read never touched
	// the persistent store.
	assert.Equal(t, 0, db.getCalls)

	got2, ok2, err := store.FindClient(ctx, "client-1")
	require.NoError(t, err)
	require.True(t, ok2)
	assert.Equal(t, record, got2)
	assert.Equal(t, 0, db.getCalls)
}

func TestFindClient_MissesThenWarms(t *testing.T) {
	ctx := context.Background()
	db := &countingPersistence{memoryPersistence: newMemoryPersistence()}
	store := newStore(db, cache.NewMemory())

	require.NoError(t, db.insertClient(ctx, ClientRecord{ID: "client-2", PasswordHash: "hash2"}))

	_, ok, err := store.FindClient(ctx, "client-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, db.getCalls)

	_, ok, err = store.FindClient(ctx, "client-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, db.getCalls, "second read should be served from cache")
}

func TestFindClient_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(cache.NewMemory())
	_, ok, err := store.FindClient(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
