package repository

import (
	"marketplace-api/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	OTP          OTPRepository
	Vendor       VendorRepository
	Branch       BranchRepository
	Category     CategoryRepository
	Subcategory  SubcategoryRepository
	Product      ProductRepository
	Offer        OfferRepository
	Review       ReviewRepository
	Notification NotificationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		OTP:          NewOTPRepository(db, log),
		Vendor:       NewVendorRepository(db, log),
		Branch:       NewBranchRepository(db, log),
		Category:     NewCategoryRepository(db, log),
		Subcategory:  NewSubcategoryRepository(db, log),
		Product:      NewProductRepository(db, log),
		Offer:        NewOfferRepository(db, log),
		Review:       NewReviewRepository(db, log),
		Notification: NewNotificationRepository(db, log),
	}
}
