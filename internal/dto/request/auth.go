package request

type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	CountryCode string  `json:"country_code" validate:"required,max=5"`
	PhoneNumber string  `json:"phone_number" validate:"required,numeric,min=6,max=15"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RequestOTPLoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=6,max=20"`
}

type VerifyOTPLoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=6,max=20"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// VerifyOTPRequest identifies the user by email for email purposes and by
// phone_number for phone purposes.
type VerifyOTPRequest struct {
	Email       *string `json:"email,omitempty" validate:"required_without=PhoneNumber,omitempty,email"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"required_without=Email,omitempty,min=6,max=20"`
	OTP         string  `json:"otp" validate:"required,len=6,numeric"`
	Type        string  `json:"type" validate:"required,oneof=email_verification phone_verification"`
}

type ResendOTPRequest struct {
	Email       *string `json:"email,omitempty" validate:"required_without=PhoneNumber,omitempty,email"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"required_without=Email,omitempty,min=6,max=20"`
	Type        string  `json:"type" validate:"required,oneof=email_verification phone_verification password_reset phone_login"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Username     *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	CountryCode  *string `json:"country_code,omitempty" validate:"omitempty,max=5"`
	PhoneNumber  *string `json:"phone_number,omitempty" validate:"omitempty,numeric,min=6,max=15"`
	ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcm_token" validate:"required,max=512"`
}

// ClientInfo is recorded on the session created at login.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
