package wire

import (
	"marketplace-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, guards routeGuards) {
	r.Route("/reviews", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		// GET /branches/{id} - View branch reviews
		r.Get("/branches/{id}", reviewHandler.GetBranchReviews)

		// GET /branches/{id}/stats - Rating distribution
		r.Get("/branches/{id}/stats", reviewHandler.GetBranchReviewStats)

		// ==================== PROTECTED ROUTES (require auth) ====================
		r.Group(func(r chi.Router) {
			r.Use(guards.auth)

			// POST /branches/{id} - one review per user per branch
			r.Post("/branches/{id}", reviewHandler.CreateReview)

			r.Get("/user/{user_id}", reviewHandler.GetUserReviews)

			// PUT and DELETE - owner only
			r.Put("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})
	})
}
