package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BranchHandler struct {
	service usecase.BranchService
	log     *zap.Logger
}

func NewBranchHandler(service usecase.BranchService, log *zap.Logger) *BranchHandler {
	return &BranchHandler{
		service: service,
		log:     log.With(zap.String("handler", "branch")),
	}
}

// ListBranches handles GET /api/v1/branches
func (h *BranchHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &request.BranchFilterRequest{
		PaginatedRequest: paginationFrom(r),
		Search:           utils.ParseOptionalString(q, "search"),
		City:             utils.ParseOptionalString(q, "city"),
		VendorID:         utils.ParseOptionalString(q, "vendor_id"),
		FreeDelivery:     utils.ParseBool(q.Get("free_delivery")),
		HasOffer:         utils.ParseBool(q.Get("has_offer")),
		MinRating:        utils.ParseFloat(q.Get("min_rating")),
		Lat:              utils.ParseFloat(q.Get("lat")),
		Lng:              utils.ParseFloat(q.Get("lng")),
		Radius:           utils.ParseFloat(q.Get("radius")),
	}

	branches, err := h.service.ListBranches(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list branches")
		return
	}

	utils.ResponseList(w, "Branches retrieved successfully", branches, int(branches.Pagination.Total))
}

// GetNearby handles GET /api/v1/branches/nearby
// lat dan lng wajib, radius default 10 km
func (h *BranchHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &request.NearbyBranchesRequest{
		Lat:   utils.ParseFloat(q.Get("lat")),
		Lng:   utils.ParseFloat(q.Get("lng")),
		Limit: utils.ParseInt(q.Get("limit"), 0),
	}
	if radius := utils.ParseFloat(q.Get("radius")); radius != nil {
		req.Radius = *radius
	}

	branches, err := h.service.GetNearby(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "get nearby branches")
		return
	}

	utils.ResponseList(w, "Nearby branches retrieved successfully", branches, len(branches))
}

// GetPopular handles GET /api/v1/branches/popular
func (h *BranchHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)

	branches, err := h.service.GetPopular(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.log, err, "get popular branches")
		return
	}

	utils.ResponseList(w, "Popular branches retrieved successfully", branches, len(branches))
}

// GetBranch handles GET /api/v1/branches/{id}
func (h *BranchHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	branch, err := h.service.GetBranch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get branch")
		return
	}

	utils.ResponseItem(w, "Branch details retrieved successfully", branch)
}

// GetVendorBranches handles GET /api/v1/branches/vendor/{vendor_id} (protected)
func (h *BranchHandler) GetVendorBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.GetVendorBranches(r.Context(), chi.URLParam(r, "vendor_id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get vendor branches")
		return
	}

	utils.ResponseList(w, "Vendor branches retrieved successfully", branches, len(branches))
}

// CreateBranch handles POST /api/v1/branches/vendor/{vendor_id} (staff only)
func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	branch, err := h.service.CreateBranch(r.Context(), chi.URLParam(r, "vendor_id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create branch")
		return
	}

	utils.ResponseCreated(w, "Branch created successfully", branch)
}

// UpdateBranch handles PUT /api/v1/branches/{id} (staff only)
func (h *BranchHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateBranchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	branch, err := h.service.UpdateBranch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update branch")
		return
	}

	utils.ResponseItem(w, "Branch updated successfully", branch)
}

// DeactivateBranch handles DELETE /api/v1/branches/{id} (staff only)
func (h *BranchHandler) DeactivateBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateBranch(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "deactivate branch")
		return
	}

	utils.ResponseSuccess(w, "Branch deactivated successfully", nil)
}

// ActivateBranch handles POST /api/v1/branches/{id}/activate (staff only)
func (h *BranchHandler) ActivateBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ActivateBranch(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "activate branch")
		return
	}

	utils.ResponseSuccess(w, "Branch activated successfully", nil)
}
