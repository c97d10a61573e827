package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	AccountTypeKey contextKey = "account_type"
	TokenIDKey     contextKey = "token_id"
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func GetAccountTypeFromContext(ctx context.Context) (string, bool) {
	accountType, ok := ctx.Value(AccountTypeKey).(string)
	return accountType, ok
}

// SetUserContext stores the authenticated user on the request context.
func SetUserContext(ctx context.Context, userID uuid.UUID, accountType string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, AccountTypeKey, accountType)
	return ctx
}

// GetTokenIDFromContext returns the jti of the access token used for the request
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

func SetTokenIDContext(ctx context.Context, tokenID string) context.Context {
	return context.WithValue(ctx, TokenIDKey, tokenID)
}
