package response

import (
	"time"

	"marketplace-api/internal/data/entity"
)

type BranchResponse struct {
	ID           string            `json:"id"`
	VendorID     string            `json:"vendor_id"`
	Name         string            `json:"name"`
	Image        *string           `json:"image,omitempty"`
	Lat          float64           `json:"lat"`
	Lng          float64           `json:"lng"`
	Address      *string           `json:"address,omitempty"`
	City         *string           `json:"city,omitempty"`
	WorkTime     map[string]string `json:"work_time,omitempty"`
	DeliveryTime *string           `json:"delivery_time,omitempty"`
	MinOrder     string            `json:"min_order"`
	DeliveryFee  string            `json:"delivery_fee"`
	FreeDelivery bool              `json:"free_delivery"`
	IsActive     bool              `json:"is_active"`
	IsOpen       bool              `json:"is_open"`
	Rating       float64           `json:"rating"`
	TotalReviews int64             `json:"total_reviews"`
	// Distance in km, only set on location queries.
	Distance  *float64  `json:"distance,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BranchDetailResponse struct {
	BranchResponse
	ActiveOffers []OfferResponse `json:"active_offers"`
}

func BranchToResponse(b *entity.Branch, now time.Time) BranchResponse {
	return BranchResponse{
		ID:           b.ID.String(),
		VendorID:     b.VendorID.String(),
		Name:         b.Name,
		Image:        b.Image,
		Lat:          b.Lat,
		Lng:          b.Lng,
		Address:      b.Address,
		City:         b.City,
		WorkTime:     b.WorkTime,
		DeliveryTime: b.DeliveryTime,
		MinOrder:     Money(b.MinOrder),
		DeliveryFee:  Money(b.DeliveryFee),
		FreeDelivery: b.FreeDelivery,
		IsActive:     b.IsActive,
		IsOpen:       b.WorkTime.IsOpen(now),
		Rating:       b.Rating,
		TotalReviews: b.TotalReviews,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
