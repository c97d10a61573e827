package entity

import (
	"time"
)

type AccountType string

const (
	AccountCustomer AccountType = "CUSTOMER"
	AccountVendor   AccountType = "VENDOR"
	AccountAdmin    AccountType = "ADMIN"
)

const (
	MaxFailedLogins = 5
	LockDuration    = 30 * time.Minute
)

type User struct {
	Base
	Username          string      `db:"username"`
	Email             string      `db:"email"`
	CountryCode       string      `db:"country_code"`
	PhoneNumber       string      `db:"phone_number"`
	DateOfBirth       *time.Time  `db:"date_of_birth"`
	Gender            *string     `db:"gender"`
	PasswordHash      string      `db:"password_hash"`
	AccountType       AccountType `db:"account_type"`
	IsActive          bool        `db:"is_active"`
	IsVerified        bool        `db:"is_verified"`
	EmailVerified     bool        `db:"email_verified"`
	PhoneVerified     bool        `db:"phone_verified"`
	FailLoginAttempts int         `db:"fail_login_attempts"`
	LockedUntil       *time.Time  `db:"locked_until"`
	LastLoginAt       *time.Time  `db:"last_login_at"`
	FCMToken          *string     `db:"fcm_token"`
	ProfileImage      *string     `db:"profile_image"`
}

func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RegisterFailedLogin bumps the counter and locks the account on the 5th failure.
func (u *User) RegisterFailedLogin(now time.Time) (locked bool) {
	u.FailLoginAttempts++
	if u.FailLoginAttempts >= MaxFailedLogins {
		until := now.Add(LockDuration)
		u.LockedUntil = &until
		u.FailLoginAttempts = 0
		return true
	}
	return false
}

func (u *User) ResetFailedLogins() {
	u.FailLoginAttempts = 0
	u.LockedUntil = nil
}

// Phone is the dialable number, country code included.
func (u *User) Phone() string {
	return u.CountryCode + u.PhoneNumber
}
