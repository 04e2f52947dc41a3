package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ocx/syncx/internal/apperr"
	"github.com/ocx/syncx/internal/cache"
)

// cacheTTL bounds how long a warmed record lives in the cache; the
// persistent store remains the source of truth.
const cacheTTL = 30 * time.Minute

// persistence is the narrow durable-storage boundary Store layers caching
// on top of. Postgres implements it directly.
type persistence interface {
	insertClient(ctx context.Context, record ClientRecord) error
	getClient(ctx context.Context, id string) (ClientRecord, bool, error)
}

// Store is the cache-warming Docs adapter described in §4.7: every read
// consults the cache first; a miss falls through to persistence and warms
// the cache with the serialized record keyed by id.
type Store struct {
	db    persistence
	cache cache.Cache
}

func newStore(db persistence, c cache.Cache) *Store {
	return &Store{db: db, cache: c}
}

func (s *Store) InsertClient(ctx context.Context, record ClientRecord) error {
	if err := s.db.insertClient(ctx, record); err != nil {
		return err
	}
	return s.warm(ctx, record)
}

func (s *Store) FindClient(ctx context.Context, id string) (ClientRecord, bool, error) {
	if raw, ok, err := s.cache.Get(ctx, cacheKey(id)); err != nil {
		return ClientRecord{}, false, err
	} else if ok {
		var record ClientRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return ClientRecord{}, false, fmt.Errorf("%w: docs cache decode %s: %v", apperr.Internal, id, err)
		}
		return record, true, nil
	}

	record, ok, err := s.db.getClient(ctx, id)
	if err != nil || !ok {
		return ClientRecord{}, ok, err
	}
	if err := s.warm(ctx, record); err != nil {
		return ClientRecord{}, false, err
	}
	return record, true, nil
}

func (s *Store) warm(ctx context.Context, record ClientRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: docs cache encode %s: %v", apperr.Internal, record.ID, err)
	}
	return s.cache.Set(ctx, cacheKey(record.ID), string(raw), cacheTTL)
}

func cacheKey(id string) string {
	return "client:" + id
}
