package entity

import "github.com/google/uuid"

type Category struct {
	BaseNoDelete
	Name         string   `db:"name"`
	Image        *string  `db:"image"`
	HasOffer     Fraction `db:"has_offer"`
	FreeDelivery bool     `db:"free_delivery"`
}

type Subcategory struct {
	BaseNoDelete
	BranchID     uuid.UUID `db:"branch_id"`
	CategoryID   uuid.UUID `db:"category_id"`
	Name         string    `db:"name"`
	Image        *string   `db:"image"`
	HasOffer     bool      `db:"has_offer"`
	FreeDelivery bool      `db:"free_delivery"`
	SortOrder    int       `db:"sort_order"`
	IsActive     bool      `db:"is_active"`

	ProductCount int64 `db:"-"`
}
