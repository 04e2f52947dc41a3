package queue

import "context"

// Memory is an in-process fake Queue backed by a buffered channel, used by
// unit tests of the upload/worker pipeline without a live Redis.
type Memory struct {
	ch chan string
}

func NewMemory(capacity int) *Memory {
	return &Memory{ch: make(chan string, capacity)}
}

func (m *Memory) Push(_ context.Context, value string) error {
	m.ch <- value
	return nil
}

func (m *Memory) BlockingPop(ctx context.Context) (string, error) {
	select {
	case v := <-m.ch:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
