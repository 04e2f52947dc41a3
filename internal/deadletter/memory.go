package deadletter

import (
	"context"
	"sync"
)

// Entry is one recorded dead-letter.
type Entry struct {
	JobID  string
	Reason string
}

// Memory is an in-process fake DeadLetter, used by worker tests.
type Memory struct {
	mu      sync.Mutex
	Entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Send(_ context.Context, jobID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, Entry{JobID: jobID, Reason: reason})
	return nil
}
