package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryLimiterAllowsThreeThenDenies(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(3, time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.CheckAndConsume(ctx, "+962790000000")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "call %d", i)
		assert.Equal(t, i, res.Count)
		assert.Equal(t, 3-i, res.Remaining)
	}

	clock.Advance(20 * time.Minute)
	res, err := l.CheckAndConsume(ctx, "+962790000000")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 40, res.RemainingMinutes)
	assert.Equal(t, time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC), res.ResetAt)
}

func TestMemoryLimiterWindowIsFixedNotSliding(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(3, time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	_, _ = l.CheckAndConsume(ctx, "k")
	clock.Advance(59 * time.Minute)
	_, _ = l.CheckAndConsume(ctx, "k")
	res, _ := l.CheckAndConsume(ctx, "k")
	assert.True(t, res.Allowed)

	// one second past the first window: a whole new allowance
	clock.Advance(time.Minute + time.Second)
	for i := 0; i < 3; i++ {
		res, _ = l.CheckAndConsume(ctx, "k")
		assert.True(t, res.Allowed)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Hour)
	ctx := context.Background()

	a, _ := l.CheckAndConsume(ctx, "a")
	b, _ := l.CheckAndConsume(ctx, "b")
	a2, _ := l.CheckAndConsume(ctx, "a")

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
}

func TestMemoryLimiterEvictsLazily(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(3, time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	_, _ = l.CheckAndConsume(ctx, "a")
	_, _ = l.CheckAndConsume(ctx, "b")
	assert.Equal(t, 2, l.Len())

	clock.Advance(2 * time.Minute)
	// nothing runs in the background
	assert.Equal(t, 2, l.Len())

	_, _ = l.CheckAndConsume(ctx, "c")
	assert.Equal(t, 1, l.Len())
}

func TestMemoryLimiterConcurrentCallers(t *testing.T) {
	l := NewMemoryLimiter(50, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := l.CheckAndConsume(ctx, "shared")
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
