package adaptor

import (
	"net/http"
	"net/url"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service usecase.ProductService
	log     *zap.Logger
}

func NewProductHandler(service usecase.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log.With(zap.String("handler", "product")),
	}
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get product")
		return
	}

	utils.ResponseItem(w, "Product details retrieved successfully", product)
}

// ListBranchProducts handles GET /api/v1/products/branches/{id}
// Query: subcategory_id, search, min_price, max_price, has_offer, page, limit
func (h *ProductHandler) ListBranchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minPrice, ok := parseDecimalQuery(q, "min_price")
	if !ok {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"min_price": "Must be a number"})
		return
	}
	maxPrice, ok := parseDecimalQuery(q, "max_price")
	if !ok {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"max_price": "Must be a number"})
		return
	}

	req := &request.ProductFilterRequest{
		PaginatedRequest: paginationFrom(r),
		SubcategoryID:    utils.ParseOptionalString(q, "subcategory_id"),
		Search:           utils.ParseOptionalString(q, "search"),
		MinPrice:         minPrice,
		MaxPrice:         maxPrice,
		HasOffer:         utils.ParseBool(q.Get("has_offer")),
	}

	products, err := h.service.ListBranchProducts(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list branch products")
		return
	}

	utils.ResponseList(w, "Branch products retrieved successfully", products, int(products.Pagination.Total))
}

// ListSubcategoryProducts handles GET /api/v1/products/branches/{id}/subcategories/{sub_id}
func (h *ProductHandler) ListSubcategoryProducts(w http.ResponseWriter, r *http.Request) {
	page := paginationFrom(r)

	products, err := h.service.ListSubcategoryProducts(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sub_id"), &page)
	if err != nil {
		writeServiceError(w, h.log, err, "list subcategory products")
		return
	}

	utils.ResponseList(w, "Subcategory products retrieved successfully", products, int(products.Pagination.Total))
}

// CreateProduct handles POST /api/v1/products/branches/{id} (staff only)
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create product")
		return
	}

	utils.ResponseCreated(w, "Product created successfully", product)
}

// UpdateProduct handles PUT /api/v1/products/{id} (staff only)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update product")
		return
	}

	utils.ResponseItem(w, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/v1/products/{id} (staff only, soft delete)
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete product")
		return
	}

	utils.ResponseSuccess(w, "Product removed successfully", nil)
}

// CreateVariation handles POST /api/v1/products/{id}/variations (staff only)
func (h *ProductHandler) CreateVariation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateVariationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.CreateVariation(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create variation")
		return
	}

	utils.ResponseCreated(w, "Product variation added successfully", product)
}

// UpdateVariation handles PUT /api/v1/products/variations/{id} (staff only)
func (h *ProductHandler) UpdateVariation(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateVariationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.UpdateVariation(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update variation")
		return
	}

	utils.ResponseItem(w, "Product variation updated successfully", product)
}

// DeleteVariation handles DELETE /api/v1/products/variations/{id} (staff only)
func (h *ProductHandler) DeleteVariation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteVariation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete variation")
		return
	}

	utils.ResponseSuccess(w, "Product variation deleted successfully", nil)
}

// parseDecimalQuery returns (nil, true) when the param is absent.
func parseDecimalQuery(q url.Values, key string) (*decimal.Decimal, bool) {
	raw := utils.ParseOptionalString(q, key)
	if raw == nil {
		return nil, true
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}
