package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseNoDelete
	BranchID      uuid.UUID       `db:"branch_id"`
	SubcategoryID uuid.UUID       `db:"subcategory_id"`
	Name          string          `db:"name"`
	Description   *string         `db:"description"`
	Image         *string         `db:"image"`
	BasePrice     decimal.Decimal `db:"base_price"`
	IsAvailable   bool            `db:"is_available"`
	IsActive      bool            `db:"is_active"`
	SortOrder     int             `db:"sort_order"`

	Variations []*ProductVariation `db:"-"`
}

type ProductVariation struct {
	BaseNoDelete
	ProductID   uuid.UUID           `db:"product_id"`
	Name        string              `db:"name"`
	Price       decimal.NullDecimal `db:"price"` // NULL: inherits the product base price
	IsAvailable bool                `db:"is_available"`
	SortOrder   int                 `db:"sort_order"`
}

// EffectivePrice is the override price when set, else base.
func (v *ProductVariation) EffectivePrice(base decimal.Decimal) decimal.Decimal {
	if v.Price.Valid {
		return v.Price.Decimal
	}
	return base
}
