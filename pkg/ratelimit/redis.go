package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisLimiter keeps per-key request timestamps in a Redis sorted set so the
// window is shared across apiserver replicas.
type RedisLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed sliding window limiter.
func NewRedisLimiter(client *goredis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:embed:",
		now:    time.Now,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	rkey := l.prefix + key
	cutoff := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	countCmd := pipe.ZCard(ctx, rkey)
	oldestCmd := pipe.ZRangeWithScores(ctx, rkey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(countCmd.Val())
	if count >= l.limit {
		retry := time.Duration(0)
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retry = oldestAt.Add(l.window).Sub(now)
			if retry < 0 {
				retry = 0
			}
		}
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: retry}, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, rkey, goredis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, rkey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - count - 1}, nil
}

// Peek implements Limiter.
func (l *RedisLimiter) Peek(ctx context.Context, key string) (Result, error) {
	now := l.now()
	rkey := l.prefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", fmt.Sprintf("%d", now.Add(-l.window).UnixNano()))
	countCmd := pipe.ZCard(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	remaining := l.limit - int(countCmd.Val())
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: remaining > 0, Limit: l.limit, Remaining: remaining}, nil
}
