// Package redis keeps second-factor attempt counters in Redis so that
// several auth replicas share one view of a ticket's failures.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "gk:2fa:att:"

// AttemptCounter implements store.AttemptCounter on INCR/EXPIRE NX inside
// MULTI. The TTL is set on the first failure only, so the window is anchored
// there. Needs Redis 7 or newer.
type AttemptCounter struct {
	rdb    redis.UniversalClient
	prefix string
	window time.Duration
}

func NewAttemptCounter(rdb redis.UniversalClient, window time.Duration) *AttemptCounter {
	return &AttemptCounter{rdb: rdb, prefix: defaultPrefix, window: window}
}

// NewClient parses a redis:// URL and verifies the server answers.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

func (c *AttemptCounter) key(k string) string { return c.prefix + k }

func (c *AttemptCounter) Attempts(ctx context.Context, key string) (int, error) {
	n, err := c.rdb.Get(ctx, c.key(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: get attempts: %w", err)
	}
	return n, nil
}

func (c *AttemptCounter) Increment(ctx context.Context, key string) (int, error) {
	k := c.key(key)

	// INCR and EXPIRE NX commit together, so a counter never outlives its
	// window. NX keeps the window anchored on the first failure and gives a
	// TTL to any key that somehow lost its own.
	var incr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, c.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis: incr attempts: %w", err)
	}
	return int(incr.Val()), nil
}

func (c *AttemptCounter) Reset(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: reset attempts: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op, Redis expires the keys itself.
func (c *AttemptCounter) PurgeExpired(context.Context) (int64, error) { return 0, nil }
