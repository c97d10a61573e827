package usecase

import (
	"context"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/internal/pricing"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

type SubcategoryService interface {
	Search(ctx context.Context, req *request.SubcategorySearchRequest) ([]response.SubcategoryResponse, error)
	GetBranchSubcategories(ctx context.Context, branchID string) ([]response.SubcategoryResponse, error)
	GetBranchSubcategory(ctx context.Context, branchID, subcategoryID string) (*response.SubcategoryDetailResponse, error)

	// Staff endpoints
	CreateSubcategory(ctx context.Context, branchID string, req *request.CreateSubcategoryRequest) (*response.SubcategoryResponse, error)
	UpdateSubcategory(ctx context.Context, branchID, subcategoryID string, req *request.UpdateSubcategoryRequest) (*response.SubcategoryResponse, error)
	DeleteSubcategory(ctx context.Context, branchID, subcategoryID string) error
}

type subcategoryService struct {
	repo    *repository.Repository
	pricing *pricing.Engine
	now     func() time.Time
	log     *zap.Logger
}

func NewSubcategoryService(repo *repository.Repository, engine *pricing.Engine, log *zap.Logger) SubcategoryService {
	return &subcategoryService{
		repo:    repo,
		pricing: engine,
		now:     time.Now,
		log:     log.With(zap.String("service", "subcategory")),
	}
}

func (s *subcategoryService) Search(ctx context.Context, req *request.SubcategorySearchRequest) ([]response.SubcategoryResponse, error) {
	categoryID, err := parseOptionalID(req.CategoryID, "category")
	if err != nil {
		return nil, err
	}
	branchID, err := parseOptionalID(req.BranchID, "branch")
	if err != nil {
		return nil, err
	}

	return s.list(ctx, repository.SubcategoryFilter{
		Search:       req.Search,
		CategoryID:   categoryID,
		BranchID:     branchID,
		HasOffer:     req.HasOffer,
		FreeDelivery: req.FreeDelivery,
		IsActive:     ptrTo(true),
	})
}

func (s *subcategoryService) GetBranchSubcategories(ctx context.Context, branchID string) ([]response.SubcategoryResponse, error) {
	branch, err := s.findBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	return s.list(ctx, repository.SubcategoryFilter{
		BranchID: &branch.ID,
		IsActive: ptrTo(true),
	})
}

func (s *subcategoryService) GetBranchSubcategory(ctx context.Context, branchID, subcategoryID string) (*response.SubcategoryDetailResponse, error) {
	sub, err := s.findSubcategory(ctx, branchID, subcategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	offers, err := s.pricing.FindValidOffers(ctx, entity.SubcategoryRef(sub.ID), now)
	if err != nil {
		return nil, fmt.Errorf("find subcategory offers: %w", err)
	}

	return &response.SubcategoryDetailResponse{
		SubcategoryResponse: response.SubcategoryToResponse(sub),
		ActiveOffers:        response.OffersToResponse(offers, now),
	}, nil
}

func (s *subcategoryService) CreateSubcategory(ctx context.Context, branchID string, req *request.CreateSubcategoryRequest) (*response.SubcategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create subcategory validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	branch, err := s.findBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	category, err := s.findCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &entity.Subcategory{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		BranchID:     branch.ID,
		CategoryID:   category.ID,
		Name:         req.Name,
		Image:        req.Image,
		HasOffer:     valueOr(req.HasOffer, false),
		FreeDelivery: valueOr(req.FreeDelivery, false),
		SortOrder:    valueOr(req.SortOrder, 0),
		IsActive:     valueOr(req.IsActive, true),
	}

	if err := s.repo.Subcategory.Create(ctx, sub); err != nil {
		s.log.Error("Failed to create subcategory", zap.Error(err), zap.String("branch_id", branchID))
		return nil, fmt.Errorf("create subcategory: %w", err)
	}

	s.log.Info("Subcategory created",
		zap.String("subcategory_id", sub.ID.String()),
		zap.String("branch_id", branchID),
	)

	resp := response.SubcategoryToResponse(sub)
	return &resp, nil
}

func (s *subcategoryService) UpdateSubcategory(ctx context.Context, branchID, subcategoryID string, req *request.UpdateSubcategoryRequest) (*response.SubcategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	sub, err := s.findSubcategory(ctx, branchID, subcategoryID)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		category, err := s.findCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		sub.CategoryID = category.ID
	}
	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Image != nil {
		sub.Image = req.Image
	}
	if req.HasOffer != nil {
		sub.HasOffer = *req.HasOffer
	}
	if req.FreeDelivery != nil {
		sub.FreeDelivery = *req.FreeDelivery
	}
	if req.SortOrder != nil {
		sub.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	sub.Touch(s.now())
	if err := s.repo.Subcategory.Update(ctx, sub); err != nil {
		s.log.Error("Failed to update subcategory", zap.Error(err), zap.String("subcategory_id", subcategoryID))
		return nil, fmt.Errorf("update subcategory: %w", err)
	}

	resp := response.SubcategoryToResponse(sub)
	return &resp, nil
}

func (s *subcategoryService) DeleteSubcategory(ctx context.Context, branchID, subcategoryID string) error {
	sub, err := s.findSubcategory(ctx, branchID, subcategoryID)
	if err != nil {
		return err
	}

	if err := s.repo.Subcategory.Deactivate(ctx, sub.ID); err != nil {
		s.log.Error("Failed to deactivate subcategory", zap.Error(err), zap.String("subcategory_id", subcategoryID))
		return fmt.Errorf("deactivate subcategory: %w", err)
	}

	s.log.Info("Subcategory deactivated", zap.String("subcategory_id", subcategoryID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *subcategoryService) list(ctx context.Context, filter repository.SubcategoryFilter) ([]response.SubcategoryResponse, error) {
	subs, err := s.repo.Subcategory.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}

	out := make([]response.SubcategoryResponse, len(subs))
	for i, sub := range subs {
		out[i] = response.SubcategoryToResponse(sub)
	}
	return out, nil
}

func (s *subcategoryService) findBranch(ctx context.Context, branchID string) (*entity.Branch, error) {
	id, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}

	branch, err := s.repo.Branch.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find branch: %w", err)
	}
	if branch == nil {
		return nil, notFound("Branch")
	}
	return branch, nil
}

func (s *subcategoryService) findCategory(ctx context.Context, categoryID string) (*entity.Category, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return nil, err
	}

	category, err := s.repo.Category.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, notFound("Category")
	}
	return category, nil
}

// findSubcategory loads a subcategory and checks it belongs to branchID.
func (s *subcategoryService) findSubcategory(ctx context.Context, branchID, subcategoryID string) (*entity.Subcategory, error) {
	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}
	subUUID, err := parseID(subcategoryID, "subcategory")
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.Subcategory.FindByID(ctx, subUUID)
	if err != nil {
		return nil, fmt.Errorf("find subcategory: %w", err)
	}
	if sub == nil || sub.BranchID != branchUUID {
		return nil, notFound("Subcategory")
	}
	return sub, nil
}
