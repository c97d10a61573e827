package usecase

import (
	"context"
	"fmt"

	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	UpdateFCMToken(ctx context.Context, userID string, req *request.UpdateFCMTokenRequest) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) UpdateFCMToken(ctx context.Context, userID string, req *request.UpdateFCMTokenRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}

	id, err := parseCallerID(userID)
	if err != nil {
		return err
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return notFound("User")
	}

	if err := us.userRepo.UpdateFCMToken(ctx, id, req.FCMToken); err != nil {
		us.log.Error("Failed to save FCM token", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("save fcm token: %w", err)
	}

	us.log.Info("FCM token updated", zap.String("user_id", userID))
	return nil
}
