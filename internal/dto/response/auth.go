package response

import (
	"time"

	"marketplace-api/internal/data/entity"
)

type UserResponse struct {
	ID            string             `json:"id"`
	Username      string             `json:"username"`
	Email         string             `json:"email"`
	CountryCode   string             `json:"country_code"`
	PhoneNumber   string             `json:"phone_number"`
	DateOfBirth   *string            `json:"date_of_birth,omitempty"`
	Gender        *string            `json:"gender,omitempty"`
	AccountType   entity.AccountType `json:"account_type"`
	IsActive      bool               `json:"is_active"`
	IsVerified    bool               `json:"is_verified"`
	EmailVerified bool               `json:"email_verified"`
	PhoneVerified bool               `json:"phone_verified"`
	ProfileImage  *string            `json:"profile_image,omitempty"`
	LastLoginAt   *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// AuthResponse is returned by register, login and OTP login.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	// OTPSent is only reported by register.
	OTPSent *bool `json:"otpSent,omitempty"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type OTPSentResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	resp := UserResponse{
		ID:            user.ID.String(),
		Username:      user.Username,
		Email:         user.Email,
		CountryCode:   user.CountryCode,
		PhoneNumber:   user.PhoneNumber,
		Gender:        user.Gender,
		AccountType:   user.AccountType,
		IsActive:      user.IsActive,
		IsVerified:    user.IsVerified,
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
		ProfileImage:  user.ProfileImage,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
	if user.DateOfBirth != nil {
		dob := user.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}
