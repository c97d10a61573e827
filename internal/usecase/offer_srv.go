package usecase

import (
	"context"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OfferService interface {
	ListActive(ctx context.Context, req *request.OfferFilterRequest) (*response.PaginatedResponse[response.OfferResponse], error)
	ListExpired(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OfferResponse], error)
	GetOffer(ctx context.Context, offerID string) (*response.OfferResponse, error)

	// Staff endpoints
	CreateForBranch(ctx context.Context, branchID string, req *request.CreateOfferRequest) (*response.OfferResponse, error)
	CreateForSubcategory(ctx context.Context, branchID, subcategoryID string, req *request.CreateOfferRequest) (*response.OfferResponse, error)
	CreateForProduct(ctx context.Context, productID string, req *request.CreateOfferRequest) (*response.OfferResponse, error)
	UpdateOffer(ctx context.Context, offerID string, req *request.UpdateOfferRequest) (*response.OfferResponse, error)
	DeleteOffer(ctx context.Context, offerID string) error
}

type offerService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewOfferService(repo *repository.Repository, log *zap.Logger) OfferService {
	return &offerService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "offer")),
	}
}

func (s *offerService) ListActive(ctx context.Context, req *request.OfferFilterRequest) (*response.PaginatedResponse[response.OfferResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	entityID, err := parseOptionalID(req.EntityID, "entity")
	if err != nil {
		return nil, err
	}

	filter := repository.OfferFilter{
		EntityID: entityID,
		Limit:    req.Limit(),
		Offset:   req.Offset(),
	}
	if req.EntityType != nil && *req.EntityType != "" {
		t := entity.EntityType(*req.EntityType)
		filter.EntityType = &t
	}

	now := s.now()
	offers, err := s.repo.Offer.FindValid(ctx, filter, now)
	if err != nil {
		s.log.Error("Failed to list active offers", zap.Error(err))
		return nil, fmt.Errorf("list active offers: %w", err)
	}

	total, err := s.repo.Offer.CountValid(ctx, filter, now)
	if err != nil {
		return nil, fmt.Errorf("count active offers: %w", err)
	}

	items, err := s.withDetails(ctx, offers, now)
	if err != nil {
		return nil, err
	}
	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

func (s *offerService) ListExpired(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OfferResponse], error) {
	now := s.now()
	offers, err := s.repo.Offer.FindExpired(ctx, now, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list expired offers", zap.Error(err))
		return nil, fmt.Errorf("list expired offers: %w", err)
	}

	total, err := s.repo.Offer.CountExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("count expired offers: %w", err)
	}

	items, err := s.withDetails(ctx, offers, now)
	if err != nil {
		return nil, err
	}
	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

func (s *offerService) GetOffer(ctx context.Context, offerID string) (*response.OfferResponse, error) {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	items, err := s.withDetails(ctx, []*entity.Offer{offer}, s.now())
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *offerService) CreateForBranch(ctx context.Context, branchID string, req *request.CreateOfferRequest) (*response.OfferResponse, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

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

	return s.create(ctx, entity.BranchRef(branch.ID), req)
}

func (s *offerService) CreateForSubcategory(ctx context.Context, branchID, subcategoryID string, req *request.CreateOfferRequest) (*response.OfferResponse, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

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

	return s.create(ctx, entity.SubcategoryRef(sub.ID), req)
}

func (s *offerService) CreateForProduct(ctx context.Context, productID string, req *request.CreateOfferRequest) (*response.OfferResponse, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Product.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil {
		return nil, notFound("Product")
	}

	return s.create(ctx, entity.ProductRef(product.ID), req)
}

func (s *offerService) UpdateOffer(ctx context.Context, offerID string, req *request.UpdateOfferRequest) (*response.OfferResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		offer.Kind = entity.OfferKind(*req.Type)
	}
	if req.Value != nil {
		offer.Value = *req.Value
	}
	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = req.Description
	}
	if req.StartDate != nil {
		offer.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		offer.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	// re-check the merged offer, a new type can invalidate the stored value
	if errs := offerErrors(offer.Kind, offer.Value, offer.StartDate, offer.EndDate); len(errs) > 0 {
		return nil, validationError(errs)
	}

	now := s.now()
	offer.Touch(now)
	if err := s.repo.Offer.Update(ctx, offer); err != nil {
		s.log.Error("Failed to update offer", zap.Error(err), zap.String("offer_id", offerID))
		return nil, fmt.Errorf("update offer: %w", err)
	}

	s.log.Info("Offer updated", zap.String("offer_id", offerID))

	resp := response.OfferToResponse(offer, now)
	return &resp, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, offerID string) error {
	offer, err := s.findOffer(ctx, offerID)
	if err != nil {
		return err
	}

	if err := s.repo.Offer.Deactivate(ctx, offer.ID); err != nil {
		s.log.Error("Failed to deactivate offer", zap.Error(err), zap.String("offer_id", offerID))
		return fmt.Errorf("deactivate offer: %w", err)
	}

	s.log.Info("Offer deactivated", zap.String("offer_id", offerID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *offerService) validateCreate(req *request.CreateOfferRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create offer validation failed", zap.Any("errors", errs))
		return validationError(errs)
	}
	if errs := offerErrors(entity.OfferKind(req.Type), req.Value, req.StartDate, req.EndDate); len(errs) > 0 {
		return validationError(errs)
	}
	return nil
}

func (s *offerService) create(ctx context.Context, target entity.EntityRef, req *request.CreateOfferRequest) (*response.OfferResponse, error) {
	now := s.now()
	offer := &entity.Offer{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		Target:       target,
		Kind:         entity.OfferKind(req.Type),
		Value:        req.Value,
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     valueOr(req.IsActive, true),
	}

	if err := s.repo.Offer.Create(ctx, offer); err != nil {
		s.log.Error("Failed to create offer", zap.Error(err), zap.Stringer("target", target))
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.log.Info("Offer created",
		zap.String("offer_id", offer.ID.String()),
		zap.Stringer("target", target),
		zap.String("type", req.Type),
	)

	resp := response.OfferToResponse(offer, now)
	return &resp, nil
}

// withDetails converts offers and resolves the name of each target.
func (s *offerService) withDetails(ctx context.Context, offers []*entity.Offer, now time.Time) ([]response.OfferResponse, error) {
	items := make([]response.OfferResponse, len(offers))
	for i, o := range offers {
		name, err := s.repo.Offer.FindEntityName(ctx, o.Target)
		if err != nil {
			return nil, fmt.Errorf("resolve offer target: %w", err)
		}

		items[i] = response.OfferToResponse(o, now)
		items[i].EntityDetails = &response.EntityDetails{
			Type: string(o.Target.Type()),
			ID:   o.Target.ID().String(),
			Name: name,
		}
	}
	return items, nil
}

func (s *offerService) findOffer(ctx context.Context, offerID string) (*entity.Offer, error) {
	id, err := parseID(offerID, "offer")
	if err != nil {
		return nil, err
	}

	offer, err := s.repo.Offer.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find offer: %w", err)
	}
	if offer == nil {
		return nil, notFound("Offer")
	}
	return offer, nil
}

func offerErrors(kind entity.OfferKind, value decimal.Decimal, start, end time.Time) map[string]string {
	errs := map[string]string{}

	switch {
	case value.IsNegative():
		errs["value"] = "Must be greater than or equal to 0"
	case kind == entity.OfferPercentage && !entity.NewPercentPoints(value).Valid():
		errs["value"] = "Percentage must be between 0 and 100"
	}

	if start.IsZero() {
		errs["start_date"] = "This field is required"
	}
	if end.IsZero() {
		errs["end_date"] = "This field is required"
	} else if !start.IsZero() && !end.After(start) {
		errs["end_date"] = "Must be after start_date"
	}
	return errs
}
