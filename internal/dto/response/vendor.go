package response

import (
	"time"

	"marketplace-api/internal/data/entity"
)

type VendorResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Image              *string   `json:"image,omitempty"`
	About              *string   `json:"about,omitempty"`
	SubscriptDate      time.Time `json:"subscript_date"`
	SubscriptionEndsAt time.Time `json:"subscription_ends_at"`
	SubscriptionActive bool      `json:"subscription_active"`
	IsActive           bool      `json:"is_active"`
	Rating             float64   `json:"rating"`
	BranchCount        int64     `json:"branch_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type VendorDetailResponse struct {
	VendorResponse
	Branches []BranchResponse `json:"branches"`
}

func VendorToResponse(v *entity.Vendor, now time.Time) VendorResponse {
	return VendorResponse{
		ID:                 v.ID.String(),
		Name:               v.Name,
		Image:              v.Image,
		About:              v.About,
		SubscriptDate:      v.SubscriptDate,
		SubscriptionEndsAt: v.SubscriptionEndsAt(),
		SubscriptionActive: v.SubscriptionActive(now),
		IsActive:           v.IsActive,
		Rating:             v.Rating,
		BranchCount:        v.BranchCount,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}
