package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OfferHandler struct {
	service usecase.OfferService
	log     *zap.Logger
}

func NewOfferHandler(service usecase.OfferService, log *zap.Logger) *OfferHandler {
	return &OfferHandler{
		service: service,
		log:     log.With(zap.String("handler", "offer")),
	}
}

// ListActive handles GET /api/v1/offers/active
func (h *OfferHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &request.OfferFilterRequest{
		PaginatedRequest: paginationFrom(r),
		EntityType:       utils.ParseOptionalString(q, "entity_type"),
		EntityID:         utils.ParseOptionalString(q, "entity_id"),
	}

	offers, err := h.service.ListActive(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list active offers")
		return
	}

	utils.ResponseList(w, "Active offers retrieved successfully", offers, int(offers.Pagination.Total))
}

// ListExpired handles GET /api/v1/offers/expired
func (h *OfferHandler) ListExpired(w http.ResponseWriter, r *http.Request) {
	page := paginationFrom(r)

	offers, err := h.service.ListExpired(r.Context(), &page)
	if err != nil {
		writeServiceError(w, h.log, err, "list expired offers")
		return
	}

	utils.ResponseList(w, "Expired offers retrieved successfully", offers, int(offers.Pagination.Total))
}

// GetOffer handles GET /api/v1/offers/{id}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.GetOffer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get offer")
		return
	}

	utils.ResponseItem(w, "Offer details retrieved successfully", offer)
}

// CreateForBranch handles POST /api/v1/offers/branches/{id} (staff only)
func (h *OfferHandler) CreateForBranch(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	offer, err := h.service.CreateForBranch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create branch offer")
		return
	}

	utils.ResponseCreated(w, "Branch offer created successfully", offer)
}

// CreateForSubcategory handles POST /api/v1/offers/branches/{id}/subcategories/{sub_id} (staff only)
func (h *OfferHandler) CreateForSubcategory(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	offer, err := h.service.CreateForSubcategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sub_id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create subcategory offer")
		return
	}

	utils.ResponseCreated(w, "Subcategory offer created successfully", offer)
}

// CreateForProduct handles POST /api/v1/offers/products/{id} (staff only)
func (h *OfferHandler) CreateForProduct(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	offer, err := h.service.CreateForProduct(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create product offer")
		return
	}

	utils.ResponseCreated(w, "Product offer created successfully", offer)
}

// UpdateOffer handles PUT /api/v1/offers/{id} (staff only)
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	offer, err := h.service.UpdateOffer(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update offer")
		return
	}

	utils.ResponseItem(w, "Offer updated successfully", offer)
}

// DeleteOffer handles DELETE /api/v1/offers/{id} (staff only, soft delete)
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete offer")
		return
	}

	utils.ResponseSuccess(w, "Offer deactivated successfully", nil)
}
