// Package apperr defines the error categories used across Syncx's RPC
// boundary (§7). Adapters wrap downstream failures with context via
// fmt.Errorf("...: %w", err); handlers classify with errors.Is against these
// sentinels and translate to the matching gRPC status code, never leaking
// adapter detail to the client.
package apperr

import "errors"

var (
	// Unauthenticated: bad, expired, or mutated bearer token.
	Unauthenticated = errors.New("unauthenticated")
	// InvalidRequest: malformed or empty request (e.g. empty upload stream).
	InvalidRequest = errors.New("invalid request")
	// NotFound: the requested file is not indexed for this account.
	NotFound = errors.New("not found")
	// Conflict is reserved; not currently emitted by any operation.
	Conflict = errors.New("conflict")
	// Internal covers any downstream adapter failure (blob store, cache,
	// docs, disk). Logged with context server-side, surfaced generically.
	Internal = errors.New("internal error")
	// PoolTimeout is an acquire-timeout from a pooled resource (cache/queue
	// connection pool). It is always mapped to Internal at the RPC boundary.
	PoolTimeout = errors.New("pool timeout")
)
