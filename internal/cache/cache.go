// Package cache provides the short-lived key→value lookup used both as the
// existence index (§3 ExistenceIndex) and to warm-cache client records
// (§4.7), matching spec.md §6's Cache capability interface.
package cache

import (
	"context"
	"time"
)

// Cache is the capability boundary every adapter implements. Get reports
// whether the key was present; Set stores value with an optional ttl (zero
// means "forever", used for the existence index).
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
