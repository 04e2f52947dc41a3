// Package queue implements the durable FIFO of pending ingest jobs (§3 Job,
// §4.6 Queue semantics): right-push to enqueue, blocking left-pop to
// dequeue, at-least-once delivery.
package queue

import "context"

// Queue is the capability boundary an adapter implements.
type Queue interface {
	// Push enqueues value (a job id) for later delivery.
	Push(ctx context.Context, value string) error
	// BlockingPop blocks until a value is available or ctx is canceled.
	BlockingPop(ctx context.Context) (string, error)
}
