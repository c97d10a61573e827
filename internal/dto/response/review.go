package response

import (
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"
)

type ReviewResponse struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branch_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewStatsResponse struct {
	AverageRating      float64          `json:"average_rating"`
	TotalReviews       int64            `json:"total_reviews"`
	MinRating          int              `json:"min_rating"`
	MaxRating          int              `json:"max_rating"`
	RatingDistribution map[string]int64 `json:"rating_distribution"`
}

// Helper converter
func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.String(),
		BranchID:  review.BranchID.String(),
		UserID:    review.UserID.String(),
		Username:  review.Username,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

func ReviewStatsToResponse(stats *entity.ReviewStats) ReviewStatsResponse {
	dist := make(map[string]int64, 5)
	for rating := 1; rating <= 5; rating++ {
		dist[fmt.Sprintf("rating_%d", rating)] = stats.Distribution[rating]
	}
	return ReviewStatsResponse{
		AverageRating:      stats.Average,
		TotalReviews:       stats.Total,
		MinRating:          stats.MinRating,
		MaxRating:          stats.MaxRating,
		RatingDistribution: dist,
	}
}
