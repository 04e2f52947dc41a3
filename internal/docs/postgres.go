package docs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // postgres driver, registered for database/sql

	"github.com/ocx/syncx/internal/apperr"
	"github.com/ocx/syncx/internal/cache"
)

const createClientsTable = `
CREATE TABLE IF NOT EXISTS clients (
	id            TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL
)`

// Postgres is the persistent half of the metadata store (§4.7), storing
// {id, password_hash} and nothing else — merkle_root and bearer_token
// never leave the client.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against url and ensures the clients
// table exists.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("docs: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("docs: ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createClientsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("docs: create clients table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewStore wraps p with the cache-warming Docs adapter (§4.7).
func (p *Postgres) NewStore(c cache.Cache) *Store {
	return newStore(p, c)
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) insertClient(ctx context.Context, record ClientRecord) error {
	const q = `INSERT INTO clients (id, password_hash) VALUES ($1, $2)`
	if _, err := p.db.ExecContext(ctx, q, record.ID, record.PasswordHash); err != nil {
		return fmt.Errorf("%w: docs insert client %s: %v", apperr.Internal, record.ID, err)
	}
	return nil
}

func (p *Postgres) getClient(ctx context.Context, id string) (ClientRecord, bool, error) {
	const q = `SELECT id, password_hash FROM clients WHERE id = $1`
	var record ClientRecord
	err := p.db.QueryRowContext(ctx, q, id).Scan(&record.ID, &record.PasswordHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ClientRecord{}, false, nil
	case err != nil:
		return ClientRecord{}, false, fmt.Errorf("%w: docs get client %s: %v", apperr.Internal, id, err)
	}
	return record, true, nil
}
