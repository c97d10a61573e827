package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/dto/response"
	"marketplace-api/internal/pricing"
	"marketplace-api/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultRadiusKm    = 10.0
	defaultNearbyLimit = 20
	maxListLimit       = 100
)

type BranchService interface {
	ListBranches(ctx context.Context, req *request.BranchFilterRequest) (*response.PaginatedResponse[response.BranchResponse], error)
	GetNearby(ctx context.Context, req *request.NearbyBranchesRequest) ([]response.BranchResponse, error)
	GetPopular(ctx context.Context, limit int) ([]response.BranchResponse, error)
	GetBranch(ctx context.Context, branchID string) (*response.BranchDetailResponse, error)
	GetVendorBranches(ctx context.Context, vendorID string) ([]response.BranchResponse, error)

	// Staff endpoints
	CreateBranch(ctx context.Context, vendorID string, req *request.CreateBranchRequest) (*response.BranchResponse, error)
	UpdateBranch(ctx context.Context, branchID string, req *request.UpdateBranchRequest) (*response.BranchResponse, error)
	DeactivateBranch(ctx context.Context, branchID string) error
	ActivateBranch(ctx context.Context, branchID string) error
}

type branchService struct {
	repo    *repository.Repository
	pricing *pricing.Engine
	now     func() time.Time
	log     *zap.Logger
}

func NewBranchService(repo *repository.Repository, engine *pricing.Engine, log *zap.Logger) BranchService {
	return &branchService{
		repo:    repo,
		pricing: engine,
		now:     time.Now,
		log:     log.With(zap.String("service", "branch")),
	}
}

func (s *branchService) ListBranches(ctx context.Context, req *request.BranchFilterRequest) (*response.PaginatedResponse[response.BranchResponse], error) {
	now := s.now()

	filter := repository.BranchFilter{
		Search:       req.Search,
		City:         req.City,
		FreeDelivery: req.FreeDelivery,
		MinRating:    req.MinRating,
		IsActive:     ptrTo(true),
		Limit:        req.Limit(),
		Offset:       req.Offset(),
	}

	vendorID, err := parseOptionalID(req.VendorID, "vendor")
	if err != nil {
		return nil, err
	}
	filter.VendorID = vendorID

	if req.HasOffer != nil && *req.HasOffer {
		filter.HasOfferAt = &now
	}

	if req.Lat == nil && req.Lng == nil {
		branches, err := s.repo.Branch.FindAll(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}
		total, err := s.repo.Branch.CountAll(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("count branches: %w", err)
		}

		items := make([]response.BranchResponse, len(branches))
		for i, b := range branches {
			items[i] = response.BranchToResponse(b, now)
		}
		return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
	}

	point, err := newGeoQuery(req.Lat, req.Lng, req.Radius)
	if err != nil {
		return nil, err
	}

	// exact distance filtering happens here, so the page is cut in memory
	box := point.box()
	filter.Box = &box
	filter.Limit, filter.Offset = 0, 0

	candidates, err := s.repo.Branch.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list branches by location: %w", err)
	}

	located := point.within(candidates)
	total := int64(len(located))

	start := min(req.Offset(), len(located))
	end := min(start+req.Limit(), len(located))

	items := make([]response.BranchResponse, 0, end-start)
	for _, l := range located[start:end] {
		items = append(items, l.toResponse(now))
	}

	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

func (s *branchService) GetNearby(ctx context.Context, req *request.NearbyBranchesRequest) ([]response.BranchResponse, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, validationError(map[string]string{
			"lat": "This field is required",
			"lng": "This field is required",
		})
	}

	var radius *float64
	if req.Radius > 0 {
		radius = &req.Radius
	}
	point, err := newGeoQuery(req.Lat, req.Lng, radius)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	limit = min(limit, maxListLimit)

	box := point.box()
	branches, err := s.repo.Branch.FindAll(ctx, repository.BranchFilter{
		Box:      &box,
		IsActive: ptrTo(true),
	})
	if err != nil {
		return nil, fmt.Errorf("find nearby branches: %w", err)
	}

	located := point.within(branches)
	if len(located) > limit {
		located = located[:limit]
	}

	now := s.now()
	items := make([]response.BranchResponse, len(located))
	for i, l := range located {
		items[i] = l.toResponse(now)
	}

	s.log.Debug("Nearby branches",
		zap.Float64("lat", point.lat),
		zap.Float64("lng", point.lng),
		zap.Float64("radius_km", point.radius),
		zap.Int("count", len(items)),
	)

	return items, nil
}

func (s *branchService) GetPopular(ctx context.Context, limit int) ([]response.BranchResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, maxListLimit)

	branches, err := s.repo.Branch.FindPopular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("find popular branches: %w", err)
	}

	now := s.now()
	items := make([]response.BranchResponse, len(branches))
	for i, b := range branches {
		items[i] = response.BranchToResponse(b, now)
	}
	return items, nil
}

func (s *branchService) GetBranch(ctx context.Context, branchID string) (*response.BranchDetailResponse, error) {
	branch, err := s.findBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	offers, err := s.pricing.FindValidOffers(ctx, entity.BranchRef(branch.ID), now)
	if err != nil {
		return nil, fmt.Errorf("find branch offers: %w", err)
	}

	return &response.BranchDetailResponse{
		BranchResponse: response.BranchToResponse(branch, now),
		ActiveOffers:   response.OffersToResponse(offers, now),
	}, nil
}

func (s *branchService) GetVendorBranches(ctx context.Context, vendorID string) ([]response.BranchResponse, error) {
	id, err := parseID(vendorID, "vendor")
	if err != nil {
		return nil, err
	}

	branches, err := s.repo.Branch.FindAll(ctx, repository.BranchFilter{VendorID: &id})
	if err != nil {
		return nil, fmt.Errorf("find vendor branches: %w", err)
	}

	now := s.now()
	items := make([]response.BranchResponse, len(branches))
	for i, b := range branches {
		items[i] = response.BranchToResponse(b, now)
	}
	return items, nil
}

func (s *branchService) CreateBranch(ctx context.Context, vendorID string, req *request.CreateBranchRequest) (*response.BranchResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create branch validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}
	if errs := moneyErrors(map[string]*decimal.Decimal{"min_order": req.MinOrder, "delivery_fee": req.DeliveryFee}); len(errs) > 0 {
		return nil, validationError(errs)
	}

	vendorUUID, err := parseID(vendorID, "vendor")
	if err != nil {
		return nil, err
	}

	vendor, err := s.repo.Vendor.FindByID(ctx, vendorUUID)
	if err != nil {
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	if vendor == nil {
		return nil, notFound("Vendor")
	}

	now := s.now()
	branch := &entity.Branch{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		VendorID:     vendorUUID,
		Name:         req.Name,
		Image:        req.Image,
		Lat:          *req.Lat,
		Lng:          *req.Lng,
		Address:      req.Address,
		City:         req.City,
		WorkTime:     req.WorkTime,
		DeliveryTime: req.DeliveryTime,
		MinOrder:     valueOr(req.MinOrder, decimal.Zero),
		DeliveryFee:  valueOr(req.DeliveryFee, decimal.Zero),
		FreeDelivery: valueOr(req.FreeDelivery, false),
		IsActive:     valueOr(req.IsActive, true),
	}

	if err := s.repo.Branch.Create(ctx, branch); err != nil {
		s.log.Error("Failed to create branch", zap.Error(err), zap.String("vendor_id", vendorID))
		return nil, fmt.Errorf("create branch: %w", err)
	}

	s.log.Info("Branch created",
		zap.String("branch_id", branch.ID.String()),
		zap.String("vendor_id", vendorID),
	)

	resp := response.BranchToResponse(branch, now)
	return &resp, nil
}

func (s *branchService) UpdateBranch(ctx context.Context, branchID string, req *request.UpdateBranchRequest) (*response.BranchResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if errs := moneyErrors(map[string]*decimal.Decimal{"min_order": req.MinOrder, "delivery_fee": req.DeliveryFee}); len(errs) > 0 {
		return nil, validationError(errs)
	}

	branch, err := s.findBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		branch.Name = *req.Name
	}
	if req.Image != nil {
		branch.Image = req.Image
	}
	if req.Lat != nil {
		branch.Lat = *req.Lat
	}
	if req.Lng != nil {
		branch.Lng = *req.Lng
	}
	if req.Address != nil {
		branch.Address = req.Address
	}
	if req.City != nil {
		branch.City = req.City
	}
	if req.WorkTime != nil {
		branch.WorkTime = req.WorkTime
	}
	if req.DeliveryTime != nil {
		branch.DeliveryTime = req.DeliveryTime
	}
	if req.MinOrder != nil {
		branch.MinOrder = *req.MinOrder
	}
	if req.DeliveryFee != nil {
		branch.DeliveryFee = *req.DeliveryFee
	}
	if req.FreeDelivery != nil {
		branch.FreeDelivery = *req.FreeDelivery
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	now := s.now()
	branch.Touch(now)
	if err := s.repo.Branch.Update(ctx, branch); err != nil {
		s.log.Error("Failed to update branch", zap.Error(err), zap.String("branch_id", branchID))
		return nil, fmt.Errorf("update branch: %w", err)
	}

	resp := response.BranchToResponse(branch, now)
	return &resp, nil
}

func (s *branchService) DeactivateBranch(ctx context.Context, branchID string) error {
	return s.setActive(ctx, branchID, false)
}

func (s *branchService) ActivateBranch(ctx context.Context, branchID string) error {
	return s.setActive(ctx, branchID, true)
}

// ==================== HELPER METHODS ====================

func (s *branchService) setActive(ctx context.Context, branchID string, active bool) error {
	branch, err := s.findBranch(ctx, branchID)
	if err != nil {
		return err
	}

	if err := s.repo.Branch.SetActive(ctx, branch.ID, active); err != nil {
		s.log.Error("Failed to change branch status", zap.Error(err), zap.String("branch_id", branchID))
		return fmt.Errorf("set branch active: %w", err)
	}

	s.log.Info("Branch status changed", zap.String("branch_id", branchID), zap.Bool("active", active))
	return nil
}

func (s *branchService) findBranch(ctx context.Context, branchID string) (*entity.Branch, error) {
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

// geoQuery is a validated point plus search radius in km.
type geoQuery struct {
	lat, lng, radius float64
}

type locatedBranch struct {
	branch   *entity.Branch
	distance float64
}

func newGeoQuery(lat, lng, radius *float64) (geoQuery, error) {
	errs := map[string]string{}
	if lat == nil || *lat < -90 || *lat > 90 {
		errs["lat"] = "Must be a valid latitude"
	}
	if lng == nil || *lng < -180 || *lng > 180 {
		errs["lng"] = "Must be a valid longitude"
	}

	r := defaultRadiusKm
	if radius != nil {
		if *radius <= 0 {
			errs["radius"] = "Must be greater than 0"
		}
		r = *radius
	}
	if len(errs) > 0 {
		return geoQuery{}, validationError(errs)
	}

	return geoQuery{lat: *lat, lng: *lng, radius: r}, nil
}

func (q geoQuery) box() utils.Box {
	return utils.BoundingBox(q.lat, q.lng, q.radius)
}

// within keeps branches whose haversine distance is inside the radius, nearest first.
func (q geoQuery) within(branches []*entity.Branch) []locatedBranch {
	out := make([]locatedBranch, 0, len(branches))
	for _, b := range branches {
		d := utils.Haversine(q.lat, q.lng, b.Lat, b.Lng)
		if d <= q.radius {
			out = append(out, locatedBranch{branch: b, distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].distance < out[j].distance })
	return out
}

func (l locatedBranch) toResponse(now time.Time) response.BranchResponse {
	resp := response.BranchToResponse(l.branch, now)
	d := utils.Round2(l.distance)
	resp.Distance = &d
	return resp
}

// parseLocation reads "lat,lng,radius".
func parseLocation(raw string) (geoQuery, error) {
	invalid := validationError(map[string]string{"location": "Must look like lat,lng,radius"})

	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return geoQuery{}, invalid
	}
	values := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geoQuery{}, invalid
		}
		values[i] = v
	}
	return newGeoQuery(&values[0], &values[1], &values[2])
}

func moneyErrors(values map[string]*decimal.Decimal) map[string]string {
	errs := map[string]string{}
	for field, v := range values {
		if v != nil && v.IsNegative() {
			errs[field] = "Must be greater than or equal to 0"
		}
	}
	return errs
}

func ptrTo[T any](v T) *T { return &v }

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
