package entity

import (
	"time"

	"github.com/google/uuid"
)

type OTPPurpose string

const (
	OTPEmailVerification OTPPurpose = "email_verification"
	OTPPhoneVerification OTPPurpose = "phone_verification"
	OTPPasswordReset     OTPPurpose = "password_reset"
	OTPPhoneLogin        OTPPurpose = "phone_login"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPEmailVerification, OTPPhoneVerification, OTPPasswordReset, OTPPhoneLogin:
		return true
	}
	return false
}

// Channel is where codes for this purpose are delivered and matched.
func (p OTPPurpose) Channel() Channel {
	switch p {
	case OTPPhoneVerification, OTPPhoneLogin:
		return ChannelPhone
	default:
		return ChannelEmail
	}
}

// Label is the human wording used in messages.
func (p OTPPurpose) Label() string {
	switch p {
	case OTPEmailVerification:
		return "email verification"
	case OTPPhoneVerification:
		return "phone verification"
	case OTPPasswordReset:
		return "password reset"
	case OTPPhoneLogin:
		return "login"
	}
	return "verification"
}

type OTP struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Email     *string    `db:"email"`
	Phone     *string    `db:"phone"`
	Code      string     `db:"otp"`
	Purpose   OTPPurpose `db:"type"`
	ExpiresAt time.Time  `db:"expires_at"`
	IsUsed    bool       `db:"is_used"`
	Attempts  int        `db:"attempts"`
}

// Contact returns whichever of email/phone the row was issued to.
func (o *OTP) Contact() string {
	if o.Email != nil {
		return *o.Email
	}
	if o.Phone != nil {
		return *o.Phone
	}
	return ""
}

func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
