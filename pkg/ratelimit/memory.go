package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps one counter per key in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*window
	max     int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(maxRequests int, windowSize time.Duration) *MemoryLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	return &MemoryLimiter{
		entries: make(map[string]*window),
		max:     maxRequests,
		window:  windowSize,
		now:     time.Now,
	}
}

// WithClock swaps the time source; used by tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) CheckAndConsume(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictExpired(now)

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &window{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = entry
		return Result{
			Allowed:   true,
			Count:     1,
			Remaining: l.max - 1,
			ResetAt:   entry.resetAt,
		}, nil
	}

	if entry.count >= l.max {
		return Result{
			Allowed:          false,
			Count:            entry.count,
			Remaining:        0,
			ResetAt:          entry.resetAt,
			RemainingMinutes: minutesUntil(entry.resetAt, now),
		}, nil
	}

	entry.count++
	return Result{
		Allowed:   true,
		Count:     entry.count,
		Remaining: l.max - entry.count,
		ResetAt:   entry.resetAt,
	}, nil
}

// Len reports the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// caller holds l.mu
func (l *MemoryLimiter) evictExpired(now time.Time) {
	for key, entry := range l.entries {
		if entry.resetAt.Before(now) {
			delete(l.entries, key)
		}
	}
}
