package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process fake implementing Cache, used by unit tests that
// exercise the existence index and docs cache-warming without a live Redis.
type Memory struct {
	mu   sync.Mutex
	data map[string]memEntry
}

type memEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(m.data, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	m.data[key] = memEntry{value: value, expires: expires}
	return nil
}
