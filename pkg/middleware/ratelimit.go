package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/data/repository"
	"marketplace-api/pkg/metrics"
	"marketplace-api/pkg/ratelimit"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

// maxRateLimitBody bounds how much of the body is buffered to find the key.
const maxRateLimitBody = 64 << 10

// KeyResolver maps a matched body value to the value the limiter counts, so that
// different spellings of one contact share a window.
type KeyResolver func(ctx context.Context, field, value string) string

// PhoneOwnerKey counts a phone_number under its owner's full number, so the local
// and the country-code form of one account hit the same window. Unknown, ambiguous
// or failed lookups keep the value as sent.
func PhoneOwnerKey(users repository.UserRepository, logger *zap.Logger) KeyResolver {
	return func(ctx context.Context, field, value string) string {
		if field != "phone_number" {
			return value
		}
		user, err := users.FindByPhone(ctx, value)
		if err != nil {
			if !errors.Is(err, repository.ErrAmbiguousPhone) {
				logger.Warn("Rate limit key lookup failed", zap.Error(err))
			}
			return value
		}
		if user == nil {
			return value
		}
		return user.Phone()
	}
}

// OTPRateLimit throttles OTP issuance per contact. The key is the first non-empty
// JSON body field among fields, e.g. "phone_number" or "email", passed through
// resolve when it is set. Requests without any of them pass through and fail
// validation downstream.
func OTPRateLimit(limiter ratelimit.Limiter, m *metrics.OTPMetrics, logger *zap.Logger, resolve KeyResolver, fields ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
			if err != nil {
				utils.ResponseBadRequest(w, "Invalid request body", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			field, key := rateLimitKey(body, fields)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if resolve != nil {
				key = resolve(r.Context(), field, key)
			}

			result, err := limiter.CheckAndConsume(r.Context(), field+":"+key)
			if err != nil {
				// limiter store down: let the request through rather than block logins
				logger.Error("Rate limiter unavailable", zap.Error(err), zap.String("scope", field))
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				m.IncDenied(field)
				logger.Warn("OTP rate limit exceeded",
					zap.String("scope", field),
					zap.Int("count", result.Count),
					zap.Time("reset_at", result.ResetAt),
				)
				utils.ResponseTooManyRequests(w,
					fmt.Sprintf("Too many OTP requests. Please try again after %d minute(s)", result.RemainingMinutes),
					map[string]any{
						"resetTime":        result.ResetAt.UTC().Format(time.RFC3339),
						"remainingMinutes": result.RemainingMinutes,
					},
				)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitKey returns the matched field name and its normalized value.
func rateLimitKey(body []byte, fields []string) (string, string) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ""
	}
	for _, field := range fields {
		v, ok := payload[field].(string)
		if !ok {
			continue
		}
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			return field, v
		}
	}
	return "", ""
}
