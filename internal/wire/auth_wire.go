package wire

import (
	"net/http"

	"marketplace-api/internal/adaptor"
	"marketplace-api/pkg/metrics"
	"marketplace-api/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	guards routeGuards,
	throttle otpThrottle,
	otpMetrics *metrics.OTPMetrics,
	log *zap.Logger,
) {
	limit := func(fields ...string) func(http.Handler) http.Handler {
		return middleware.OTPRateLimit(throttle.limiter, otpMetrics, log, throttle.key, fields...)
	}

	r.Route("/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/verify-otp-login", authHandler.VerifyOTPLogin)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/verify-email", authHandler.VerifyOTP)
		r.Post("/refresh-token", authHandler.RefreshToken)

		// OTP issuance, max 3 per contact per hour
		r.With(limit("phone_number")).
			Post("/request-otp-login", authHandler.RequestOTPLogin)
		r.With(limit("email")).
			Post("/request-password-reset", authHandler.RequestPasswordReset)
		r.With(limit("email", "phone_number")).
			Post("/resend-otp", authHandler.ResendOTP)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(guards.auth)

			r.Get("/profile", authHandler.GetProfile)
			r.Put("/profile", authHandler.UpdateProfile)
			r.Post("/logout", authHandler.Logout)
		})
	})
}
