package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]response.CategoryResponse, error)
	GetCategory(ctx context.Context, categoryID string) (*response.CategoryResponse, error)
	CreateCategory(ctx context.Context, req *request.CreateCategoryRequest) (*response.CategoryResponse, error)
	UpdateCategory(ctx context.Context, categoryID string, req *request.UpdateCategoryRequest) (*response.CategoryResponse, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	now          func() time.Time
	log          *zap.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, log *zap.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		now:          time.Now,
		log:          log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]response.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]response.CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = response.CategoryToResponse(c)
	}
	return out, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string) (*response.CategoryResponse, error) {
	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req *request.CreateCategoryRequest) (*response.CategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create category validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	hasOffer, err := parseFraction(req.HasOffer)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	now := s.now()
	category := &entity.Category{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		Name:         strings.TrimSpace(req.Name),
		Image:        req.Image,
		HasOffer:     hasOffer,
		FreeDelivery: valueOr(req.FreeDelivery, false),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.log.Error("Failed to create category", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.log.Info("Category created", zap.String("category_id", category.ID.String()))

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, req *request.UpdateCategoryRequest) (*response.CategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && !strings.EqualFold(*req.Name, category.Name) {
		if err := s.ensureUniqueName(ctx, *req.Name, category.ID); err != nil {
			return nil, err
		}
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Image != nil {
		category.Image = req.Image
	}
	if req.HasOffer != nil {
		hasOffer, err := parseFraction(req.HasOffer)
		if err != nil {
			return nil, err
		}
		category.HasOffer = hasOffer
	}
	if req.FreeDelivery != nil {
		category.FreeDelivery = *req.FreeDelivery
	}

	category.Touch(s.now())
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		s.log.Error("Failed to update category", zap.Error(err), zap.String("category_id", categoryID))
		return nil, fmt.Errorf("update category: %w", err)
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	n, err := s.categoryRepo.CountSubcategories(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("count subcategories: %w", err)
	}
	if n > 0 {
		return newError(ErrConflict, "Category still has %d subcategories", n)
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		s.log.Error("Failed to delete category", zap.Error(err), zap.String("category_id", categoryID))
		return fmt.Errorf("delete category: %w", err)
	}

	s.log.Info("Category deleted", zap.String("category_id", categoryID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *categoryService) findCategory(ctx context.Context, categoryID string) (*entity.Category, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, notFound("Category")
	}
	return category, nil
}

func (s *categoryService) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categoryRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if existing != nil && existing.ID != self {
		return newError(ErrConflict, "Category name already exists")
	}
	return nil
}

func parseFraction(d *decimal.Decimal) (entity.Fraction, error) {
	if d == nil {
		return entity.NewFraction(decimal.Zero), nil
	}
	f := entity.NewFraction(*d)
	if !f.Valid() {
		return entity.Fraction{}, validationError(map[string]string{"has_offer": "Must be between 0 and 1"})
	}
	return f, nil
}
