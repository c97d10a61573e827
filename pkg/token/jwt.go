package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Payload is what the API puts inside a token.
type Payload struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Type   Type      `json:"type"`
}

// Claims represents the JWT claims
type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// Pair is an access + refresh token bundle handed back on login.
type Pair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshTokenID   string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock swaps the time source; used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Sign issues a token for payload valid for ttl. tokenID becomes the jti.
func (m *Manager) Sign(payload Payload, tokenID string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   payload.UserID.String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", payload.Type, err)
	}
	return signed, nil
}

// IssuePair signs a fresh access and refresh token for the user.
func (m *Manager) IssuePair(userID uuid.UUID, email string) (*Pair, error) {
	access, err := m.Sign(Payload{UserID: userID, Email: email, Type: TypeAccess}, uuid.NewString(), m.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshID := uuid.NewString()
	refresh, err := m.Sign(Payload{UserID: userID, Email: email, Type: TypeRefresh}, refreshID, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshTokenID:   refreshID,
		RefreshExpiresAt: m.now().Add(m.refreshTTL),
	}, nil
}

// Verify parses token and checks signature, issuer, audience, expiry and type.
func (m *Manager) Verify(tokenString string, want Type) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Type != want {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
