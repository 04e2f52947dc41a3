// Package deadletter routes ingest jobs that exhausted their retry budget
// (§4.5, §9 worker retry resolution) to a durable holding queue for manual
// inspection, instead of silently dropping them.
package deadletter

import "context"

// DeadLetter is the capability boundary the worker depends on.
type DeadLetter interface {
	// Send records job as permanently failed, carrying reason for
	// operator triage.
	Send(ctx context.Context, jobID, reason string) error
}
