package response

import (
	"time"

	"marketplace-api/internal/data/entity"
)

type CategoryResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Image        *string   `json:"image,omitempty"`
	HasOffer     string    `json:"has_offer"`
	FreeDelivery bool      `json:"free_delivery"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SubcategoryResponse struct {
	ID           string    `json:"id"`
	BranchID     string    `json:"branch_id"`
	CategoryID   string    `json:"category_id"`
	Name         string    `json:"name"`
	Image        *string   `json:"image,omitempty"`
	HasOffer     bool      `json:"has_offer"`
	FreeDelivery bool      `json:"free_delivery"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SubcategoryDetailResponse struct {
	SubcategoryResponse
	ActiveOffers []OfferResponse `json:"active_offers"`
}

func CategoryToResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Image:        c.Image,
		HasOffer:     c.HasOffer.StringFixed(4),
		FreeDelivery: c.FreeDelivery,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func SubcategoryToResponse(s *entity.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		ID:           s.ID.String(),
		BranchID:     s.BranchID.String(),
		CategoryID:   s.CategoryID.String(),
		Name:         s.Name,
		Image:        s.Image,
		HasOffer:     s.HasOffer,
		FreeDelivery: s.FreeDelivery,
		SortOrder:    s.SortOrder,
		IsActive:     s.IsActive,
		ProductCount: s.ProductCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
