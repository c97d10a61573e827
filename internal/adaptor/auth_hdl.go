package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req, clientInfo(r))
	if err != nil {
		writeServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "User registered successfully", resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req, clientInfo(r))
	if err != nil {
		writeServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// RequestOTPLogin handles POST /api/v1/auth/request-otp-login
func (h *AuthHandler) RequestOTPLogin(w http.ResponseWriter, r *http.Request) {
	var req request.RequestOTPLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.RequestOTPLogin(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "request otp login")
		return
	}

	utils.ResponseSuccess(w, "OTP sent to your phone number", resp)
}

// VerifyOTPLogin handles POST /api/v1/auth/verify-otp-login
func (h *AuthHandler) VerifyOTPLogin(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyOTPLogin(r.Context(), &req, clientInfo(r))
	if err != nil {
		writeServiceError(w, h.log, err, "verify otp login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// RequestPasswordReset handles POST /api/v1/auth/request-password-reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req request.RequestPasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.RequestPasswordReset(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "request password reset")
		return
	}

	utils.ResponseSuccess(w, "Password reset OTP sent to your email", resp)
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password reset successfully", nil)
}

// VerifyOTP handles POST /api/v1/auth/verify-otp and /verify-email
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.VerifyOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "verify otp")
		return
	}

	utils.ResponseSuccess(w, "OTP verified successfully", user)
}

// ResendOTP handles POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.ResendOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "resend otp")
		return
	}

	utils.ResponseSuccess(w, "OTP resent successfully", resp)
}

// RefreshToken handles POST /api/v1/auth/refresh-token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.service.RefreshToken(r.Context(), &req, clientInfo(r))
	if err != nil {
		writeServiceError(w, h.log, err, "refresh token")
		return
	}

	utils.ResponseSuccess(w, "Token refreshed successfully", pair)
}

// GetProfile handles GET /api/v1/auth/profile (protected)
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseItem(w, "Profile retrieved successfully", profile)
}

// UpdateProfile handles PUT /api/v1/auth/profile (protected)
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseItem(w, "Profile updated successfully", profile)
}

// Logout handles POST /api/v1/auth/logout (protected)
// Semua session user di-revoke, bukan cuma token yang dipakai.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logged out successfully", nil)
}
