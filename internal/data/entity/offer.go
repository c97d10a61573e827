package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntityType string

const (
	EntityBranch      EntityType = "branch"
	EntitySubcategory EntityType = "subcategory"
	EntityProduct     EntityType = "product"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityBranch, EntitySubcategory, EntityProduct:
		return true
	}
	return false
}

// EntityRef points at exactly one branch, subcategory or product.
// Build it with BranchRef, SubcategoryRef, ProductRef or ParseEntityRef.
type EntityRef struct {
	kind EntityType
	id   uuid.UUID
}

func BranchRef(id uuid.UUID) EntityRef      { return EntityRef{kind: EntityBranch, id: id} }
func SubcategoryRef(id uuid.UUID) EntityRef { return EntityRef{kind: EntitySubcategory, id: id} }
func ProductRef(id uuid.UUID) EntityRef     { return EntityRef{kind: EntityProduct, id: id} }

// ParseEntityRef maps the two flat storage columns back to a reference.
func ParseEntityRef(kind string, id uuid.UUID) (EntityRef, error) {
	t := EntityType(kind)
	if !t.Valid() {
		return EntityRef{}, fmt.Errorf("unknown entity type %q", kind)
	}
	return EntityRef{kind: t, id: id}, nil
}

func (r EntityRef) Type() EntityType { return r.kind }
func (r EntityRef) ID() uuid.UUID    { return r.id }
func (r EntityRef) IsZero() bool     { return r.kind == "" }

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s", r.kind, r.id)
}

type OfferKind string

const (
	OfferPercentage OfferKind = "percentage"
	OfferFixed      OfferKind = "fixed"
	// OfferBuyXGetY is accepted and stored but has no pricing effect yet.
	OfferBuyXGetY OfferKind = "buy_x_get_y"
)

func (k OfferKind) Valid() bool {
	switch k {
	case OfferPercentage, OfferFixed, OfferBuyXGetY:
		return true
	}
	return false
}

type Offer struct {
	BaseNoDelete
	Target      EntityRef       `db:"-"` // entity_type + entity_id
	Kind        OfferKind       `db:"type"`
	Value       decimal.Decimal `db:"value"`
	Title       string          `db:"title"`
	Description *string         `db:"description"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     time.Time       `db:"end_date"`
	IsActive    bool            `db:"is_active"`
}

// IsValid: active and now within [start, end], both ends inclusive.
func (o *Offer) IsValid(now time.Time) bool {
	return o.IsActive && !now.Before(o.StartDate) && !now.After(o.EndDate)
}

func (o *Offer) IsExpired(now time.Time) bool {
	return o.EndDate.Before(now)
}

// Percent reads Value as percent points. Only meaningful for percentage offers.
func (o *Offer) Percent() PercentPoints {
	return NewPercentPoints(o.Value)
}
