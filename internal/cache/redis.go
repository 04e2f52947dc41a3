package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ocx/syncx/internal/apperr"
)

// Pool defaults from spec.md §4.6.
const (
	defaultPoolSize     = 16
	defaultMinIdleConns = 8
	defaultIdleTimeout  = 60 * time.Second
	defaultPoolTimeout  = 1 * time.Second
)

// RedisCache wraps go-redis v9 with the bounded pool spec.md §4.6 describes:
// max=16 open, min=8 idle, idle-ttl=60s, acquire-timeout=1s. Get reports a
// context deadline as apperr.PoolTimeout; every other failure, including
// the pool's own acquire timeout, is reported as apperr.Internal.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache dials addr (a redis:// URL) and verifies connectivity.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse REDIS_URL: %w", err)
	}
	opts.PoolSize = defaultPoolSize
	opts.MinIdleConns = defaultMinIdleConns
	opts.ConnMaxIdleTime = defaultIdleTimeout
	opts.PoolTimeout = defaultPoolTimeout

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// Client exposes the underlying go-redis client for the queue adapter,
// which shares this same connection pool (§5 "Resource sharing").
func (c *RedisCache) Client() *redis.Client { return c.rdb }

func (c *RedisCache) Close() error { return c.rdb.Close() }

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		return "", false, nil
	case err == context.DeadlineExceeded:
		return "", false, fmt.Errorf("%w: %v", apperr.PoolTimeout, err)
	case err != nil:
		return "", false, fmt.Errorf("%w: cache get %s: %v", apperr.Internal, key, err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: cache set %s: %v", apperr.Internal, key, err)
	}
	return nil
}
