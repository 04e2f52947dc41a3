package events

import "sync"

// Memory is an in-process Emitter fake that records every event, used by
// tests that assert on which notifications a step raised.
type Memory struct {
	mu     sync.Mutex
	seq    eventIDSeq
	Events []*CloudEvent
}

func NewMemory() *Memory {
	return &Memory{seq: eventIDSeq{source: "test"}}
}

func (m *Memory) Emit(eventType, subject string, data map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, newCloudEvent(m.seq.next(), eventType, "syncx", subject, data))
}
