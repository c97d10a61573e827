// Package ratelimit gates OTP issuance per contact with a fixed-window counter.
//
// The window is fixed, not sliding: a burst straddling a window boundary can see up to
// 2x the limit in a short span. The in-memory limiter is process-local, so every
// instance of the API enforces its own allowance. RedisLimiter shares the counter.
package ratelimit

import (
	"context"
	"math"
	"time"
)

const (
	DefaultMaxRequests = 3
	DefaultWindow      = time.Hour
)

// Result is the outcome of one CheckAndConsume call.
type Result struct {
	Allowed          bool
	Count            int
	Remaining        int
	ResetAt          time.Time
	RemainingMinutes int
}

type Limiter interface {
	CheckAndConsume(ctx context.Context, key string) (Result, error)
}

// minutesUntil rounds up, so 30 seconds left reads as 1 minute.
func minutesUntil(reset, now time.Time) int {
	d := reset.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
