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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VendorService interface {
	ListVendors(ctx context.Context, req *request.VendorFilterRequest) (*response.PaginatedResponse[response.VendorResponse], error)
	GetPopular(ctx context.Context, limit int) ([]response.VendorResponse, error)
	GetVendor(ctx context.Context, vendorID string) (*response.VendorDetailResponse, error)

	// Admin endpoints
	GetExpiredSubscriptions(ctx context.Context) ([]response.VendorResponse, error)
	CreateVendor(ctx context.Context, req *request.CreateVendorRequest) (*response.VendorResponse, error)
	UpdateVendor(ctx context.Context, vendorID string, req *request.UpdateVendorRequest) (*response.VendorResponse, error)
	DeleteVendor(ctx context.Context, vendorID string) error
}

type vendorService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewVendorService(repo *repository.Repository, log *zap.Logger) VendorService {
	return &vendorService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "vendor")),
	}
}

func (s *vendorService) ListVendors(ctx context.Context, req *request.VendorFilterRequest) (*response.PaginatedResponse[response.VendorResponse], error) {
	filter := repository.VendorFilter{
		Search:   req.Search,
		IsActive: req.IsActive,
		Limit:    req.Limit(),
		Offset:   req.Offset(),
	}

	if req.Location != nil && *req.Location != "" {
		ids, err := s.vendorsNear(ctx, *req.Location)
		if err != nil {
			return nil, err
		}
		filter.IDs = ids
	}

	vendors, err := s.repo.Vendor.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list vendors", zap.Error(err))
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	total, err := s.repo.Vendor.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count vendors: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(vendors), req.CurrentPage(), req.Limit(), total), nil
}

func (s *vendorService) GetPopular(ctx context.Context, limit int) ([]response.VendorResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, maxListLimit)

	vendors, err := s.repo.Vendor.FindPopular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("find popular vendors: %w", err)
	}
	return s.toResponses(vendors), nil
}

func (s *vendorService) GetVendor(ctx context.Context, vendorID string) (*response.VendorDetailResponse, error) {
	vendor, err := s.findVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	branches, err := s.repo.Branch.FindAll(ctx, repository.BranchFilter{
		VendorID: &vendor.ID,
		IsActive: ptrTo(true),
	})
	if err != nil {
		return nil, fmt.Errorf("find vendor branches: %w", err)
	}

	now := s.now()
	detail := &response.VendorDetailResponse{
		VendorResponse: response.VendorToResponse(vendor, now),
		Branches:       make([]response.BranchResponse, len(branches)),
	}
	for i, b := range branches {
		detail.Branches[i] = response.BranchToResponse(b, now)
	}
	return detail, nil
}

func (s *vendorService) GetExpiredSubscriptions(ctx context.Context) ([]response.VendorResponse, error) {
	vendors, err := s.repo.Vendor.FindExpiredSubscriptions(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("find expired subscriptions: %w", err)
	}
	return s.toResponses(vendors), nil
}

func (s *vendorService) CreateVendor(ctx context.Context, req *request.CreateVendorRequest) (*response.VendorResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create vendor validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	now := s.now()
	subscriptDate := now
	if req.SubscriptDate != nil {
		d, err := time.Parse("2006-01-02", *req.SubscriptDate)
		if err != nil {
			return nil, validationError(map[string]string{"subscript_date": "Must be a date in format 2006-01-02"})
		}
		subscriptDate = d
	}

	vendor := &entity.Vendor{
		BaseNoDelete:  entity.NewBaseNoDelete(now),
		Name:          req.Name,
		Image:         req.Image,
		About:         req.About,
		SubscriptDate: subscriptDate,
		IsActive:      valueOr(req.IsActive, true),
	}

	if err := s.repo.Vendor.Create(ctx, vendor); err != nil {
		s.log.Error("Failed to create vendor", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	s.log.Info("Vendor created", zap.String("vendor_id", vendor.ID.String()))

	resp := response.VendorToResponse(vendor, now)
	return &resp, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, vendorID string, req *request.UpdateVendorRequest) (*response.VendorResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	vendor, err := s.findVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		vendor.Name = *req.Name
	}
	if req.Image != nil {
		vendor.Image = req.Image
	}
	if req.About != nil {
		vendor.About = req.About
	}
	if req.SubscriptDate != nil {
		d, err := time.Parse("2006-01-02", *req.SubscriptDate)
		if err != nil {
			return nil, validationError(map[string]string{"subscript_date": "Must be a date in format 2006-01-02"})
		}
		vendor.SubscriptDate = d
	}
	if req.IsActive != nil {
		vendor.IsActive = *req.IsActive
	}

	now := s.now()
	vendor.Touch(now)
	if err := s.repo.Vendor.Update(ctx, vendor); err != nil {
		s.log.Error("Failed to update vendor", zap.Error(err), zap.String("vendor_id", vendorID))
		return nil, fmt.Errorf("update vendor: %w", err)
	}

	resp := response.VendorToResponse(vendor, now)
	return &resp, nil
}

func (s *vendorService) DeleteVendor(ctx context.Context, vendorID string) error {
	vendor, err := s.findVendor(ctx, vendorID)
	if err != nil {
		return err
	}

	if err := s.repo.Vendor.Deactivate(ctx, vendor.ID); err != nil {
		s.log.Error("Failed to deactivate vendor", zap.Error(err), zap.String("vendor_id", vendorID))
		return fmt.Errorf("deactivate vendor: %w", err)
	}

	s.log.Info("Vendor deactivated", zap.String("vendor_id", vendorID))
	return nil
}

// ==================== HELPER METHODS ====================

// vendorsNear returns the vendors owning at least one active branch inside location.
func (s *vendorService) vendorsNear(ctx context.Context, location string) ([]uuid.UUID, error) {
	point, err := parseLocation(location)
	if err != nil {
		return nil, err
	}

	box := point.box()
	branches, err := s.repo.Branch.FindAll(ctx, repository.BranchFilter{
		Box:      &box,
		IsActive: ptrTo(true),
	})
	if err != nil {
		return nil, fmt.Errorf("find branches near location: %w", err)
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, l := range point.within(branches) {
		if _, ok := seen[l.branch.VendorID]; ok {
			continue
		}
		seen[l.branch.VendorID] = struct{}{}
		ids = append(ids, l.branch.VendorID)
	}
	return ids, nil
}

func (s *vendorService) findVendor(ctx context.Context, vendorID string) (*entity.Vendor, error) {
	id, err := parseID(vendorID, "vendor")
	if err != nil {
		return nil, err
	}

	vendor, err := s.repo.Vendor.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	if vendor == nil {
		return nil, notFound("Vendor")
	}
	return vendor, nil
}

func (s *vendorService) toResponses(vendors []*entity.Vendor) []response.VendorResponse {
	now := s.now()
	out := make([]response.VendorResponse, len(vendors))
	for i, v := range vendors {
		out[i] = response.VendorToResponse(v, now)
	}
	return out
}
