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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductService interface {
	GetProduct(ctx context.Context, productID string) (*response.ProductResponse, error)
	ListBranchProducts(ctx context.Context, branchID string, req *request.ProductFilterRequest) (*response.PaginatedResponse[response.ProductResponse], error)
	ListSubcategoryProducts(ctx context.Context, branchID, subcategoryID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ProductResponse], error)

	// Staff endpoints
	CreateProduct(ctx context.Context, branchID string, req *request.CreateProductRequest) (*response.ProductResponse, error)
	UpdateProduct(ctx context.Context, productID string, req *request.UpdateProductRequest) (*response.ProductResponse, error)
	DeleteProduct(ctx context.Context, productID string) error

	CreateVariation(ctx context.Context, productID string, req *request.CreateVariationRequest) (*response.ProductResponse, error)
	UpdateVariation(ctx context.Context, variationID string, req *request.UpdateVariationRequest) (*response.ProductResponse, error)
	DeleteVariation(ctx context.Context, variationID string) error
}

type productService struct {
	repo    *repository.Repository
	pricing *pricing.Engine
	now     func() time.Time
	log     *zap.Logger
}

func NewProductService(repo *repository.Repository, engine *pricing.Engine, log *zap.Logger) ProductService {
	return &productService{
		repo:    repo,
		pricing: engine,
		now:     time.Now,
		log:     log.With(zap.String("service", "product")),
	}
}

func (s *productService) GetProduct(ctx context.Context, productID string) (*response.ProductResponse, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.priced(ctx, product, s.now())
}

func (s *productService) ListBranchProducts(ctx context.Context, branchID string, req *request.ProductFilterRequest) (*response.PaginatedResponse[response.ProductResponse], error) {
	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}

	errs := moneyErrors(map[string]*decimal.Decimal{"min_price": req.MinPrice, "max_price": req.MaxPrice})
	if req.MinPrice != nil && req.MaxPrice != nil && req.MinPrice.GreaterThan(*req.MaxPrice) {
		errs["max_price"] = "Must be greater than or equal to min_price"
	}
	if len(errs) > 0 {
		return nil, validationError(errs)
	}

	subcategoryID, err := parseOptionalID(req.SubcategoryID, "subcategory")
	if err != nil {
		return nil, err
	}

	now := s.now()
	filter := repository.ProductFilter{
		BranchID:      &branchUUID,
		SubcategoryID: subcategoryID,
		Search:        req.Search,
		MinPrice:      req.MinPrice,
		MaxPrice:      req.MaxPrice,
		IsActive:      ptrTo(true),
		Limit:         req.Limit(),
		Offset:        req.Offset(),
	}
	if req.HasOffer != nil && *req.HasOffer {
		filter.HasOfferAt = &now
	}

	return s.list(ctx, filter, req.PaginatedRequest, now)
}

func (s *productService) ListSubcategoryProducts(ctx context.Context, branchID, subcategoryID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ProductResponse], error) {
	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}
	subUUID, err := parseID(subcategoryID, "subcategory")
	if err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{
		BranchID:      &branchUUID,
		SubcategoryID: &subUUID,
		IsActive:      ptrTo(true),
		Limit:         req.Limit(),
		Offset:        req.Offset(),
	}

	return s.list(ctx, filter, *req, s.now())
}

func (s *productService) CreateProduct(ctx context.Context, branchID string, req *request.CreateProductRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create product validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	prices := map[string]*decimal.Decimal{"base_price": &req.BasePrice}
	for i := range req.Variations {
		prices[fmt.Sprintf("variations[%d].price", i)] = req.Variations[i].Price
	}
	if errs := moneyErrors(prices); len(errs) > 0 {
		return nil, validationError(errs)
	}

	branchUUID, err := parseID(branchID, "branch")
	if err != nil {
		return nil, err
	}
	branch, err := s.repo.Branch.FindByID(ctx, branchUUID)
	if err != nil {
		return nil, fmt.Errorf("find branch: %w", err)
	}
	if branch == nil {
		return nil, notFound("Branch")
	}

	sub, err := s.branchSubcategory(ctx, branch.ID, req.SubcategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := &entity.Product{
		BaseNoDelete:  entity.NewBaseNoDelete(now),
		BranchID:      branch.ID,
		SubcategoryID: sub.ID,
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		BasePrice:     req.BasePrice,
		IsAvailable:   valueOr(req.IsAvailable, true),
		IsActive:      true,
		SortOrder:     valueOr(req.SortOrder, 0),
	}
	for _, v := range req.Variations {
		product.Variations = append(product.Variations, newVariation(product.ID, v, now))
	}

	// produk dan variasinya disimpan dalam satu transaksi
	if err := s.repo.Product.Create(ctx, product); err != nil {
		s.log.Error("Failed to create product", zap.Error(err), zap.String("branch_id", branchID))
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("branch_id", branchID),
		zap.Int("variations", len(product.Variations)),
	)

	return s.priced(ctx, product, now)
}

func (s *productService) UpdateProduct(ctx context.Context, productID string, req *request.UpdateProductRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if errs := moneyErrors(map[string]*decimal.Decimal{"base_price": req.BasePrice}); len(errs) > 0 {
		return nil, validationError(errs)
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.SubcategoryID != nil {
		sub, err := s.branchSubcategory(ctx, product.BranchID, *req.SubcategoryID)
		if err != nil {
			return nil, err
		}
		product.SubcategoryID = sub.ID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Image != nil {
		product.Image = req.Image
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		product.SortOrder = *req.SortOrder
	}

	now := s.now()
	product.Touch(now)
	if err := s.repo.Product.Update(ctx, product); err != nil {
		s.log.Error("Failed to update product", zap.Error(err), zap.String("product_id", productID))
		return nil, fmt.Errorf("update product: %w", err)
	}

	return s.priced(ctx, product, now)
}

func (s *productService) DeleteProduct(ctx context.Context, productID string) error {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.repo.Product.Deactivate(ctx, product.ID); err != nil {
		s.log.Error("Failed to deactivate product", zap.Error(err), zap.String("product_id", productID))
		return fmt.Errorf("deactivate product: %w", err)
	}

	s.log.Info("Product deactivated", zap.String("product_id", productID))
	return nil
}

func (s *productService) CreateVariation(ctx context.Context, productID string, req *request.CreateVariationRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if errs := moneyErrors(map[string]*decimal.Decimal{"price": req.Price}); len(errs) > 0 {
		return nil, validationError(errs)
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	variation := newVariation(product.ID, *req, now)
	if err := s.repo.Product.CreateVariation(ctx, variation); err != nil {
		s.log.Error("Failed to create variation", zap.Error(err), zap.String("product_id", productID))
		return nil, fmt.Errorf("create variation: %w", err)
	}

	return s.reload(ctx, product.ID, now)
}

func (s *productService) UpdateVariation(ctx context.Context, variationID string, req *request.UpdateVariationRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if errs := moneyErrors(map[string]*decimal.Decimal{"price": req.Price}); len(errs) > 0 {
		return nil, validationError(errs)
	}

	variation, err := s.findVariation(ctx, variationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		variation.Name = *req.Name
	}
	switch {
	case req.ClearPrice:
		variation.Price = decimal.NullDecimal{}
	case req.Price != nil:
		variation.Price = decimal.NewNullDecimal(*req.Price)
	}
	if req.IsAvailable != nil {
		variation.IsAvailable = *req.IsAvailable
	}
	if req.SortOrder != nil {
		variation.SortOrder = *req.SortOrder
	}

	now := s.now()
	variation.Touch(now)
	if err := s.repo.Product.UpdateVariation(ctx, variation); err != nil {
		s.log.Error("Failed to update variation", zap.Error(err), zap.String("variation_id", variationID))
		return nil, fmt.Errorf("update variation: %w", err)
	}

	return s.reload(ctx, variation.ProductID, now)
}

func (s *productService) DeleteVariation(ctx context.Context, variationID string) error {
	variation, err := s.findVariation(ctx, variationID)
	if err != nil {
		return err
	}

	if err := s.repo.Product.DeleteVariation(ctx, variation.ID); err != nil {
		s.log.Error("Failed to delete variation", zap.Error(err), zap.String("variation_id", variationID))
		return fmt.Errorf("delete variation: %w", err)
	}

	s.log.Info("Variation deleted", zap.String("variation_id", variationID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *productService) list(ctx context.Context, filter repository.ProductFilter, page request.PaginatedRequest, now time.Time) (*response.PaginatedResponse[response.ProductResponse], error) {
	products, err := s.repo.Product.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}

	total, err := s.repo.Product.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	items := make([]response.ProductResponse, len(products))
	for i, p := range products {
		resp, err := s.priced(ctx, p, now)
		if err != nil {
			return nil, err
		}
		items[i] = *resp
	}

	return response.NewPaginatedResponse(items, page.CurrentPage(), page.Limit(), total), nil
}

// priced runs the product and each variation through the offer engine.
// Only offers targeting the product itself apply.
func (s *productService) priced(ctx context.Context, product *entity.Product, now time.Time) (*response.ProductResponse, error) {
	quote, err := s.pricing.Quote(ctx, entity.ProductRef(product.ID), product.BasePrice, now)
	if err != nil {
		return nil, fmt.Errorf("price product %s: %w", product.ID, err)
	}

	resp := response.ProductToResponse(product)
	resp.FinalPrice = response.Money(quote.FinalPrice)
	resp.HasDiscount = quote.HasDiscount
	resp.ActiveOffers = response.OffersToResponse(quote.Offers, now)

	// variations share the product's offers
	for _, v := range product.Variations {
		vr := response.VariationToResponse(v, product.BasePrice)
		vq := pricing.NewQuote(v.EffectivePrice(product.BasePrice), quote.Offers)
		vr.FinalPrice = response.Money(vq.FinalPrice)
		vr.HasDiscount = vq.HasDiscount
		resp.Variations = append(resp.Variations, vr)
	}

	return &resp, nil
}

func (s *productService) reload(ctx context.Context, productID uuid.UUID, now time.Time) (*response.ProductResponse, error) {
	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	if product == nil {
		return nil, notFound("Product")
	}
	return s.priced(ctx, product, now)
}

func (s *productService) findProduct(ctx context.Context, productID string) (*entity.Product, error) {
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
	return product, nil
}

func (s *productService) findVariation(ctx context.Context, variationID string) (*entity.ProductVariation, error) {
	id, err := parseID(variationID, "variation")
	if err != nil {
		return nil, err
	}

	variation, err := s.repo.Product.FindVariationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find variation: %w", err)
	}
	if variation == nil {
		return nil, notFound("Variation")
	}
	return variation, nil
}

// branchSubcategory resolves a subcategory that must belong to branchID.
func (s *productService) branchSubcategory(ctx context.Context, branchID uuid.UUID, subcategoryID string) (*entity.Subcategory, error) {
	id, err := parseID(subcategoryID, "subcategory")
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.Subcategory.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find subcategory: %w", err)
	}
	if sub == nil || sub.BranchID != branchID {
		return nil, notFound("Subcategory")
	}
	return sub, nil
}

func newVariation(productID uuid.UUID, req request.CreateVariationRequest, now time.Time) *entity.ProductVariation {
	v := &entity.ProductVariation{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		ProductID:    productID,
		Name:         req.Name,
		IsAvailable:  valueOr(req.IsAvailable, true),
		SortOrder:    valueOr(req.SortOrder, 0),
	}
	if req.Price != nil {
		v.Price = decimal.NewNullDecimal(*req.Price)
	}
	return v
}
