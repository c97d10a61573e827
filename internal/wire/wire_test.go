package wire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-api/internal/adaptor"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/metrics"
	"marketplace-api/pkg/ratelimit"
	"marketplace-api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func deny(status int) func(http.Handler) http.Handler {
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			utils.ResponseJSON(w, status, false, http.StatusText(status), nil, nil, nil)
		})
	}
}

func pass(next http.Handler) http.Handler { return next }

func newTestRouter(guards routeGuards) http.Handler {
	config := &utils.Config{
		App:     utils.AppConfig{CORSOrigins: []string{"*"}},
		Metrics: utils.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	// services are never reached: every request here stops at a guard or a static route
	handler := adaptor.NewHandler(&usecase.Service{}, zap.NewNop())
	throttle := otpThrottle{limiter: ratelimit.NewMemoryLimiter(3, time.Hour)}
	return setupRouter(handler, guards, throttle, metrics.NewRegistry(), config, zap.NewNop())
}

func TestRouter_Operational(t *testing.T) {
	r := newTestRouter(routeGuards{auth: pass, staff: pass, admin: pass})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestRouter_Guards(t *testing.T) {
	unauthenticated := newTestRouter(routeGuards{
		auth:  deny(http.StatusUnauthorized),
		staff: deny(http.StatusForbidden),
		admin: deny(http.StatusForbidden),
	})
	customer := newTestRouter(routeGuards{
		auth:  pass,
		staff: deny(http.StatusForbidden),
		admin: deny(http.StatusForbidden),
	})

	protected := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/auth/profile"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodPost, "/api/v1/users/fcm-token"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodPatch, "/api/v1/notifications/abc/mark-read"},
		{http.MethodGet, "/api/v1/branches/vendor/v1"},
		{http.MethodPost, "/api/v1/reviews/branches/b1"},
		{http.MethodGet, "/api/v1/reviews/user/u1"},
		{http.MethodPut, "/api/v1/reviews/r1"},
	}
	for _, rt := range protected {
		rec := httptest.NewRecorder()
		unauthenticated.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}

	staffOnly := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/vendors"},
		{http.MethodGet, "/api/v1/vendors/expired-subscriptions"},
		{http.MethodDelete, "/api/v1/categories/c1"},
		{http.MethodPost, "/api/v1/branches/vendor/v1"},
		{http.MethodPost, "/api/v1/branches/b1/activate"},
		{http.MethodPost, "/api/v1/subcategories/branches/b1"},
		{http.MethodPost, "/api/v1/products/branches/b1"},
		{http.MethodPut, "/api/v1/products/variations/v1"},
		{http.MethodPost, "/api/v1/offers/branches/b1/subcategories/s1"},
		{http.MethodDelete, "/api/v1/offers/o1"},
	}
	for _, rt := range staffOnly {
		rec := httptest.NewRecorder()
		customer.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", rt.method, rt.path)
	}
}

type exhaustedLimiter struct{}

func (exhaustedLimiter) CheckAndConsume(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{Allowed: false, ResetAt: time.Now().Add(10 * time.Minute), RemainingMinutes: 10}, nil
}

func TestRouter_OTPRateLimited(t *testing.T) {
	config := &utils.Config{}
	handler := adaptor.NewHandler(&usecase.Service{}, zap.NewNop())
	r := setupRouter(handler, routeGuards{auth: pass, staff: pass, admin: pass}, otpThrottle{limiter: exhaustedLimiter{}}, metrics.NewRegistry(), config, zap.NewNop())

	limited := []struct {
		path, body string
	}{
		{"/api/v1/auth/request-otp-login", `{"phone_number":"+628123456789"}`},
		{"/api/v1/auth/request-password-reset", `{"email":"budi@example.com"}`},
		{"/api/v1/auth/resend-otp", `{"email":"budi@example.com","type":"email_verification"}`},
	}
	for _, rt := range limited {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, rt.path, strings.NewReader(rt.body)))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, rt.path)
		assert.Contains(t, rec.Body.String(), "Please try again after 10 minute(s)")
	}
}
