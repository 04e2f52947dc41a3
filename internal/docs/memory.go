package docs

import (
	"context"
	"sync"

	"github.com/ocx/syncx/internal/cache"
)

// memoryPersistence is an in-process fake of the persistent half of the
// store, used by tests in place of Postgres.
type memoryPersistence struct {
	mu      sync.Mutex
	records map[string]ClientRecord
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{records: make(map[string]ClientRecord)}
}

func (m *memoryPersistence) insertClient(_ context.Context, record ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *memoryPersistence) getClient(_ context.Context, id string) (ClientRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	return record, ok, nil
}

// NewMemoryStore builds a cache-warming Store over an in-process fake
// persistent store, for tests that don't stand up Postgres.
func NewMemoryStore(c cache.Cache) *Store {
	return newStore(newMemoryPersistence(), c)
}
