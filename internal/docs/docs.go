// Package docs implements the metadata store (§4.7): the durable record of
// registered clients, read through a cache-warming layer.
package docs

import "context"

// ClientRecord is the persistent half of a ClientCommitment (§3): the
// server never stores merkle_root or bearer_token, only what it must
// verify future requests against.
type ClientRecord struct {
	ID           string `json:"id"`
	PasswordHash string `json:"password_hash"`
}

// Docs is the capability boundary an adapter implements.
type Docs interface {
	// InsertClient persists a new record. Implementations also warm the
	// cache so a subsequent FindClient is a cache hit.
	InsertClient(ctx context.Context, record ClientRecord) error
	// FindClient returns the record for id, consulting the cache first
	// and falling through to the persistent store on a miss (§4.7).
	FindClient(ctx context.Context, id string) (ClientRecord, bool, error)
}
