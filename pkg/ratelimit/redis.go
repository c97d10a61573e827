package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mp:rate_limit"

type cmdable interface {
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	PTTL(context.Context, string) *redis.DurationCmd
}

// RedisLimiter is the shared-store variant: all API instances see one counter per key.
type RedisLimiter struct {
	store  cmdable
	scope  string
	max    int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, scope string, maxRequests int, windowSize time.Duration) *RedisLimiter {
	return newRedisLimiter(client, scope, maxRequests, windowSize)
}

func newRedisLimiter(store cmdable, scope string, maxRequests int, windowSize time.Duration) *RedisLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	return &RedisLimiter{
		store:  store,
		scope:  scope,
		max:    maxRequests,
		window: windowSize,
		now:    time.Now,
	}
}

func (l *RedisLimiter) CheckAndConsume(ctx context.Context, key string) (Result, error) {
	redisKey := l.key(key)

	count, err := l.store.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.store.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	ttl, err := l.store.PTTL(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("pttl %s: %w", redisKey, err)
	}
	if ttl < 0 {
		// key lost its ttl somehow; never let it live forever
		ttl = l.window
		if err := l.store.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	now := l.now()
	resetAt := now.Add(ttl)

	if int(count) > l.max {
		return Result{
			Allowed:          false,
			Count:            l.max,
			Remaining:        0,
			ResetAt:          resetAt,
			RemainingMinutes: minutesUntil(resetAt, now),
		}, nil
	}

	return Result{
		Allowed:   true,
		Count:     int(count),
		Remaining: l.max - int(count),
		ResetAt:   resetAt,
	}, nil
}

func (l *RedisLimiter) key(key string) string {
	return strings.Join([]string{keyPrefix, l.scope, strings.ToLower(strings.TrimSpace(key))}, ":")
}
