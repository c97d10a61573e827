package usecase

import (
	"context"
	"fmt"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 50
)

type NotificationService interface {
	List(ctx context.Context, userID string, req *request.NotificationListRequest) (*response.NotificationListResponse, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		log:  log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) List(ctx context.Context, userID string, req *request.NotificationListRequest) (*response.NotificationListResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	userUUID, err := parseCallerID(userID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	limit = min(limit, maxNotificationLimit)

	var kind *entity.NotificationType
	if req.Type != nil && *req.Type != "" {
		t := entity.NotificationType(*req.Type)
		kind = &t
	}

	items, err := s.repo.FindByUser(ctx, userUUID, kind, limit)
	if err != nil {
		s.log.Error("Failed to list notifications", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.repo.CountUnread(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	resp := &response.NotificationListResponse{
		Items:       make([]response.NotificationResponse, len(items)),
		UnreadCount: unread,
	}
	for i, n := range items {
		resp.Items[i] = response.NotificationToResponse(n)
	}
	return resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	id, err := parseID(notificationID, "notification")
	if err != nil {
		return err
	}
	userUUID, err := parseCallerID(userID)
	if err != nil {
		return err
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find notification: %w", err)
	}
	if n == nil {
		return notFound("Notification")
	}
	if n.UserID != userUUID {
		return newError(ErrForbidden, "You can only modify your own notifications")
	}

	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		s.log.Error("Failed to mark notification read", zap.Error(err), zap.String("notification_id", notificationID))
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
