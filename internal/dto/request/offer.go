package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOfferRequest struct {
	Type        string          `json:"type" validate:"required,oneof=percentage fixed buy_x_get_y"`
	Value       decimal.Decimal `json:"value"`
	Title       string          `json:"title" validate:"required,min=2,max=255"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

type UpdateOfferRequest struct {
	Type        *string          `json:"type,omitempty" validate:"omitempty,oneof=percentage fixed buy_x_get_y"`
	Value       *decimal.Decimal `json:"value,omitempty"`
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type OfferFilterRequest struct {
	PaginatedRequest
	EntityType *string `validate:"omitempty,oneof=branch subcategory product"`
	EntityID   *string `validate:"omitempty,uuid"`
}
