package request

import "github.com/shopspring/decimal"

type CreateCategoryRequest struct {
	Name         string           `json:"name" validate:"required,min=2,max=100"`
	Image        *string          `json:"image,omitempty" validate:"omitempty,url"`
	HasOffer     *decimal.Decimal `json:"has_offer,omitempty"`
	FreeDelivery *bool            `json:"free_delivery,omitempty"`
}

type UpdateCategoryRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Image        *string          `json:"image,omitempty" validate:"omitempty,url"`
	HasOffer     *decimal.Decimal `json:"has_offer,omitempty"`
	FreeDelivery *bool            `json:"free_delivery,omitempty"`
}

type CreateSubcategoryRequest struct {
	CategoryID   string  `json:"category_id" validate:"required,uuid"`
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Image        *string `json:"image,omitempty" validate:"omitempty,url"`
	HasOffer     *bool   `json:"has_offer,omitempty"`
	FreeDelivery *bool   `json:"free_delivery,omitempty"`
	SortOrder    *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type UpdateSubcategoryRequest struct {
	CategoryID   *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Image        *string `json:"image,omitempty" validate:"omitempty,url"`
	HasOffer     *bool   `json:"has_offer,omitempty"`
	FreeDelivery *bool   `json:"free_delivery,omitempty"`
	SortOrder    *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type SubcategorySearchRequest struct {
	Search       *string
	CategoryID   *string
	BranchID     *string
	HasOffer     *bool
	FreeDelivery *bool
}
