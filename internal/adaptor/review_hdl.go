package adaptor

import (
	"net/http"

	"marketplace-api/internal/dto/request"
	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// CreateReview handles POST /api/v1/reviews/branches/{id} (protected)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req request.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create review")
		return
	}

	utils.ResponseCreated(w, "Review added successfully", review)
}

// GetBranchReviews handles GET /api/v1/reviews/branches/{id} (public)
// Query: rating, sort (newest|oldest|highest|lowest), page, limit
func (h *ReviewHandler) GetBranchReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &request.ReviewFilterRequest{
		PaginatedRequest: paginationFrom(r),
		Sort:             q.Get("sort"),
	}
	if rating := utils.ParseInt(q.Get("rating"), 0); rating > 0 {
		req.Rating = &rating
	}

	reviews, err := h.service.GetBranchReviews(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, h.log, err, "get branch reviews")
		return
	}

	utils.ResponseList(w, "Branch reviews retrieved successfully", reviews, int(reviews.Pagination.Total))
}

// GetBranchReviewStats handles GET /api/v1/reviews/branches/{id}/stats (public)
func (h *ReviewHandler) GetBranchReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetBranchReviewStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get branch review stats")
		return
	}

	utils.ResponseItem(w, "Review statistics retrieved successfully", stats)
}

// GetUserReviews handles GET /api/v1/reviews/user/{user_id} (protected)
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	page := paginationFrom(r)

	reviews, err := h.service.GetUserReviews(r.Context(), chi.URLParam(r, "user_id"), &page)
	if err != nil {
		writeServiceError(w, h.log, err, "get user reviews")
		return
	}

	utils.ResponseList(w, "User reviews retrieved successfully", reviews, int(reviews.Pagination.Total))
}

// UpdateReview handles PUT /api/v1/reviews/{id} (owner only)
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req request.UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update review")
		return
	}

	utils.ResponseItem(w, "Review updated successfully", review)
}

// DeleteReview handles DELETE /api/v1/reviews/{id} (owner only)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "Review deleted successfully", nil)
}
