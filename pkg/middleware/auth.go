package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

// Auth validates the Bearer access token and loads the account behind it.
func Auth(tokens *token.Manager, userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Access token is required")
				return
			}

			scheme, raw, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(raw), token.TypeAccess)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					utils.ResponseUnauthorized(w, "Access token has expired")
					return
				}
				utils.ResponseUnauthorized(w, "Invalid access token")
				return
			}

			user, err := userRepo.FindByID(r.Context(), claims.UserID)
			if err != nil {
				logger.Error("Failed to load token user",
					zap.Error(err), zap.String("user_id", claims.UserID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if user == nil || !user.IsActive {
				logger.Warn("Token for missing or inactive user", zap.String("user_id", claims.UserID.String()))
				utils.ResponseUnauthorized(w, "User not found or inactive")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, string(user.AccountType))
			ctx = utils.SetTokenIDContext(ctx, claims.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAccountType must run after Auth.
func RequireAccountType(logger *zap.Logger, allowed ...entity.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountType, ok := utils.GetAccountTypeFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !slices.Contains(allowed, entity.AccountType(accountType)) {
				userID, _ := utils.GetUserIDFromContext(r.Context())
				logger.Warn("Access denied for account type",
					zap.String("user_id", userID.String()),
					zap.String("account_type", accountType),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Staff allows vendors and admins.
func Staff(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireAccountType(logger, entity.AccountAdmin, entity.AccountVendor)
}

// Admin - hanya ADMIN
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireAccountType(logger, entity.AccountAdmin)
}
