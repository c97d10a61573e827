package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SubcategoryHandler struct {
	service usecase.SubcategoryService
	log     *zap.Logger
}

func NewSubcategoryHandler(service usecase.SubcategoryService, log *zap.Logger) *SubcategoryHandler {
	return &SubcategoryHandler{
		service: service,
		log:     log.With(zap.String("handler", "subcategory")),
	}
}

// Search handles GET /api/v1/subcategories/search
func (h *SubcategoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &request.SubcategorySearchRequest{
		Search:       utils.ParseOptionalString(q, "search"),
		CategoryID:   utils.ParseOptionalString(q, "category_id"),
		BranchID:     utils.ParseOptionalString(q, "branch_id"),
		HasOffer:     utils.ParseBool(q.Get("has_offer")),
		FreeDelivery: utils.ParseBool(q.Get("free_delivery")),
	}

	subs, err := h.service.Search(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "search subcategories")
		return
	}

	utils.ResponseList(w, "Subcategories retrieved successfully", subs, len(subs))
}

// GetBranchSubcategories handles GET /api/v1/subcategories/branches/{id}
func (h *SubcategoryHandler) GetBranchSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.GetBranchSubcategories(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get branch subcategories")
		return
	}

	utils.ResponseList(w, "Branch subcategories retrieved successfully", subs, len(subs))
}

// GetBranchSubcategory handles GET /api/v1/subcategories/branches/{id}/{sub_id}
func (h *SubcategoryHandler) GetBranchSubcategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetBranchSubcategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sub_id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get branch subcategory")
		return
	}

	utils.ResponseItem(w, "Subcategory details retrieved successfully", sub)
}

// CreateSubcategory handles POST /api/v1/subcategories/branches/{id} (staff only)
func (h *SubcategoryHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSubcategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := h.service.CreateSubcategory(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create subcategory")
		return
	}

	utils.ResponseCreated(w, "Subcategory created successfully", sub)
}

// UpdateSubcategory handles PUT /api/v1/subcategories/branches/{id}/{sub_id} (staff only)
func (h *SubcategoryHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSubcategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := h.service.UpdateSubcategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sub_id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update subcategory")
		return
	}

	utils.ResponseItem(w, "Subcategory updated successfully", sub)
}

// DeleteSubcategory handles DELETE /api/v1/subcategories/branches/{id}/{sub_id} (staff only)
func (h *SubcategoryHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSubcategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sub_id")); err != nil {
		writeServiceError(w, h.log, err, "delete subcategory")
		return
	}

	utils.ResponseSuccess(w, "Subcategory removed successfully", nil)
}
