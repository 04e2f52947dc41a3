package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ocx/syncx/internal/apperr"
)

// key is the single Redis list the ingest pipeline uses as its job queue.
const key = "syncx:ingest-jobs"

// RedisQueue implements Queue over a Redis list, sharing the connection
// pool the cache adapter already opened (§5 "Resource sharing").
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Push(ctx context.Context, value string) error {
	if err := q.rdb.RPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("%w: queue push: %v", apperr.Internal, err)
	}
	return nil
}

// BlockingPop performs a BLPOP with no timeout (block until ctx is
// canceled), matching spec.md §4.6's "blocking consumer" note: this call is
// explicitly allowed to block the worker-loop task while it waits.
func (q *RedisQueue) BlockingPop(ctx context.Context) (string, error) {
	res, err := q.rdb.BLPop(ctx, 0, key).Result()
	if err != nil {
		return "", fmt.Errorf("%w: queue blocking pop: %v", apperr.Internal, err)
	}
	// BLPOP returns [key, value].
	if len(res) != 2 {
		return "", fmt.Errorf("%w: queue blocking pop: unexpected reply shape", apperr.Internal)
	}
	return res[1], nil
}
