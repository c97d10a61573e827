package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service usecase.NotificationService
	log     *zap.Logger
}

func NewNotificationHandler(service usecase.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log.With(zap.String("handler", "notification")),
	}
}

// List handles GET /api/v1/notifications (protected)
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := &request.NotificationListRequest{
		Type:  utils.ParseOptionalString(q, "type"),
		Limit: utils.ParseInt(q.Get("limit"), 0),
	}

	resp, err := h.service.List(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.log, err, "list notifications")
		return
	}

	utils.ResponseList(w, "Notifications retrieved successfully", resp, len(resp.Items))
}

// MarkRead handles PATCH /api/v1/notifications/{id}/mark-read (protected)
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeServiceError(w, h.log, err, "mark notification read")
		return
	}

	utils.ResponseSuccess(w, "Notification marked as read", nil)
}
