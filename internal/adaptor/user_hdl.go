package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// UpdateFCMToken handles POST /api/v1/users/fcm-token (protected)
func (h *UserHandler) UpdateFCMToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req request.UpdateFCMTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.UpdateFCMToken(r.Context(), userID, &req); err != nil {
		writeServiceError(w, h.log, err, "update fcm token")
		return
	}

	utils.ResponseSuccess(w, "FCM token saved successfully", nil)
}
