package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type VendorHandler struct {
	service usecase.VendorService
	log     *zap.Logger
}

func NewVendorHandler(service usecase.VendorService, log *zap.Logger) *VendorHandler {
	return &VendorHandler{
		service: service,
		log:     log.With(zap.String("handler", "vendor")),
	}
}

// ListVendors handles GET /api/v1/vendors
// Query: search, is_active, location=lat,lng,radius, page, limit
func (h *VendorHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &request.VendorFilterRequest{
		PaginatedRequest: paginationFrom(r),
		Search:           utils.ParseOptionalString(q, "search"),
		IsActive:         utils.ParseBool(q.Get("is_active")),
		Location:         utils.ParseOptionalString(q, "location"),
	}

	vendors, err := h.service.ListVendors(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list vendors")
		return
	}

	message := "Vendors retrieved successfully"
	if req.Location != nil {
		message = "Nearby vendors retrieved successfully"
	}
	utils.ResponseList(w, message, vendors, int(vendors.Pagination.Total))
}

// GetPopular handles GET /api/v1/vendors/popular
func (h *VendorHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)

	vendors, err := h.service.GetPopular(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.log, err, "get popular vendors")
		return
	}

	utils.ResponseList(w, "Popular vendors retrieved successfully", vendors, len(vendors))
}

// GetVendor handles GET /api/v1/vendors/{id}
func (h *VendorHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.service.GetVendor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get vendor")
		return
	}

	utils.ResponseItem(w, "Vendor retrieved successfully", vendor)
}

// GetExpiredSubscriptions handles GET /api/v1/vendors/expired-subscriptions (admin only)
func (h *VendorHandler) GetExpiredSubscriptions(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.service.GetExpiredSubscriptions(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get expired subscriptions")
		return
	}

	utils.ResponseList(w, "Expired subscription vendors retrieved successfully", vendors, len(vendors))
}

// CreateVendor handles POST /api/v1/vendors (admin only)
func (h *VendorHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req request.CreateVendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vendor, err := h.service.CreateVendor(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create vendor")
		return
	}

	utils.ResponseCreated(w, "Vendor created successfully", vendor)
}

// UpdateVendor handles PUT /api/v1/vendors/{id} (admin only)
func (h *VendorHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateVendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vendor, err := h.service.UpdateVendor(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update vendor")
		return
	}

	utils.ResponseItem(w, "Vendor updated successfully", vendor)
}

// DeleteVendor handles DELETE /api/v1/vendors/{id} (admin only, soft delete)
func (h *VendorHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteVendor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete vendor")
		return
	}

	utils.ResponseSuccess(w, "Vendor deactivated successfully", nil)
}
