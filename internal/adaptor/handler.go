package adaptor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Vendor       *VendorHandler
	Branch       *BranchHandler
	Category     *CategoryHandler
	Subcategory  *SubcategoryHandler
	Product      *ProductHandler
	Offer        *OfferHandler
	Review       *ReviewHandler
	Notification *NotificationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		User:         NewUserHandler(service.User, log),
		Vendor:       NewVendorHandler(service.Vendor, log),
		Branch:       NewBranchHandler(service.Branch, log),
		Category:     NewCategoryHandler(service.Category, log),
		Subcategory:  NewSubcategoryHandler(service.Subcategory, log),
		Product:      NewProductHandler(service.Product, log),
		Offer:        NewOfferHandler(service.Offer, log),
		Review:       NewReviewHandler(service.Review, log),
		Notification: NewNotificationHandler(service.Notification, log),
	}
}

// writeServiceError maps a service failure to its envelope. Only *usecase.Error
// messages reach the client; anything else is logged and answered with a bare 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var svcErr *usecase.Error
	if !errors.As(err, &svcErr) {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.String("errors", utils.FormatValidationErrors(svcErr.Fields)))
		utils.ResponseBadRequest(w, svcErr.Message, svcErr.Fields)

	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequestData(w, svcErr.Message, svcErr.Data)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, svcErr.Message)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, svcErr.Message)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, svcErr.Message)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, svcErr.Message)

	case errors.Is(err, usecase.ErrLocked):
		log.Warn(operation+" failed - locked", zap.Error(err))
		utils.ResponseLocked(w, svcErr.Message)

	case errors.Is(err, usecase.ErrUnavailable):
		log.Error(operation+" failed - unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, svcErr.Message)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON answers 400 itself and reports false when the body is not JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// currentUserID answers 401 itself when the auth middleware did not run.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", false
	}
	return userID.String(), true
}

func paginationFrom(r *http.Request) request.PaginatedRequest {
	q := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(q.Get("page"), 1),
		PerPage: utils.ParseInt(q.Get("limit"), utils.DefaultPerPage),
	}
}

func clientInfo(r *http.Request) request.ClientInfo {
	return request.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr without port.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
