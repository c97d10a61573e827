package request

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	SubcategoryID string                   `json:"subcategory_id" validate:"required,uuid"`
	Name          string                   `json:"name" validate:"required,min=2,max=255"`
	Description   *string                  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Image         *string                  `json:"image,omitempty" validate:"omitempty,url"`
	BasePrice     decimal.Decimal          `json:"base_price"`
	IsAvailable   *bool                    `json:"is_available,omitempty"`
	SortOrder     *int                     `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	Variations    []CreateVariationRequest `json:"variations,omitempty" validate:"omitempty,max=50,dive"`
}

type UpdateProductRequest struct {
	SubcategoryID *string          `json:"subcategory_id,omitempty" validate:"omitempty,uuid"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Image         *string          `json:"image,omitempty" validate:"omitempty,url"`
	BasePrice     *decimal.Decimal `json:"base_price,omitempty"`
	IsAvailable   *bool            `json:"is_available,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	SortOrder     *int             `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

// CreateVariationRequest leaves Price empty to inherit the product base price.
type CreateVariationRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=100"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
	SortOrder   *int             `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

type UpdateVariationRequest struct {
	Name  *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Price *decimal.Decimal `json:"price,omitempty"`
	// ClearPrice drops the override so the variation follows the base price again.
	ClearPrice  bool  `json:"clear_price,omitempty"`
	IsAvailable *bool `json:"is_available,omitempty"`
	SortOrder   *int  `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

type ProductFilterRequest struct {
	PaginatedRequest
	SubcategoryID *string
	Search        *string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	HasOffer      *bool
}
