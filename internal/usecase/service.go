package usecase

import (
	"fmt"

	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/pricing"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/metrics"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	OTP          OTPService
	Auth         AuthService
	User         UserService
	Vendor       VendorService
	Branch       BranchService
	Category     CategoryService
	Subcategory  SubcategoryService
	Product      ProductService
	Offer        OfferService
	Review       ReviewService
	Notification NotificationService

	// Tokens is shared with the auth middleware.
	Tokens *token.Manager
}

func NewService(repo *repository.Repository, config *utils.Config, reg *metrics.Registry, log *zap.Logger) (*Service, error) {
	email, err := mailer.New(config.Email, log)
	if err != nil {
		return nil, fmt.Errorf("init email sender: %w", err)
	}

	var otpMetrics *metrics.OTPMetrics
	if reg != nil {
		otpMetrics = reg.OTP
	}

	tokens := token.NewManager(
		config.JWT.Secret,
		config.JWT.Issuer,
		config.JWT.Audience,
		config.JWT.AccessTTL,
		config.JWT.RefreshTTL,
	)
	engine := pricing.NewEngine(repo.Offer)
	otp := NewOTPService(repo.OTP, email, mailer.NewLogSMSSender(log), otpMetrics, config.OTP, log)

	log.Info("Services initialized", zap.String("email_provider", email.Name()))

	return &Service{
		OTP:          otp,
		Auth:         NewAuthService(repo, otp, tokens, log),
		User:         NewUserService(repo.User, log),
		Vendor:       NewVendorService(repo, log),
		Branch:       NewBranchService(repo, engine, log),
		Category:     NewCategoryService(repo.Category, log),
		Subcategory:  NewSubcategoryService(repo, engine, log),
		Product:      NewProductService(repo, engine, log),
		Offer:        NewOfferService(repo, log),
		Review:       NewReviewService(repo, log),
		Notification: NewNotificationService(repo.Notification, log),
		Tokens:       tokens,
	}, nil
}
