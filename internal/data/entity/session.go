package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session tracks one issued refresh token so it can be rotated or revoked.
type Session struct {
	BaseSimple
	UserID         uuid.UUID  `db:"user_id"`
	RefreshTokenID string     `db:"refresh_token_id"`
	UserAgent      *string    `db:"user_agent"`
	IPAddress      *string    `db:"ip_address"`
	ExpiresAt      time.Time  `db:"expires_at"`
	RevokedAt      *time.Time `db:"revoked_at"`
}

func (s *Session) Usable(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
