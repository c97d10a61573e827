package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) PTTL(_ context.Context, key string) *redis.DurationCmd {
	ttl, ok := m.ttls[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(ttl, nil)
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	store := newMockCmdable()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l := newRedisLimiter(store, "otp", 3, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.CheckAndConsume(ctx, " Rana@Example.com ")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := l.CheckAndConsume(ctx, "rana@example.com")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 60, res.RemainingMinutes)

	// ttl is set once, on the first hit
	assert.Equal(t, time.Hour, store.ttls["mp:rate_limit:otp:rana@example.com"])
	assert.Len(t, store.ttls, 1)
}
