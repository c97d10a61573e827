package response

import (
	"time"

	"marketplace-api/internal/data/entity"

	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID            string              `json:"id"`
	BranchID      string              `json:"branch_id"`
	SubcategoryID string              `json:"subcategory_id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	Image         *string             `json:"image,omitempty"`
	BasePrice     string              `json:"base_price"`
	FinalPrice    string              `json:"final_price"`
	HasDiscount   bool                `json:"has_discount"`
	ActiveOffers  []OfferResponse     `json:"active_offers"`
	IsAvailable   bool                `json:"is_available"`
	IsActive      bool                `json:"is_active"`
	SortOrder     int                 `json:"sort_order"`
	Variations    []VariationResponse `json:"variations"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type VariationResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     *string `json:"price"`
	// EffectivePrice is Price, or the product base price when Price is null.
	EffectivePrice string `json:"effective_price"`
	FinalPrice     string `json:"final_price"`
	HasDiscount    bool   `json:"has_discount"`
	IsAvailable    bool   `json:"is_available"`
	SortOrder      int    `json:"sort_order"`
}

// ProductToResponse fills the static fields; prices are set by the caller.
func ProductToResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID.String(),
		BranchID:      p.BranchID.String(),
		SubcategoryID: p.SubcategoryID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Image:         p.Image,
		BasePrice:     Money(p.BasePrice),
		FinalPrice:    Money(p.BasePrice),
		ActiveOffers:  []OfferResponse{},
		IsAvailable:   p.IsAvailable,
		IsActive:      p.IsActive,
		SortOrder:     p.SortOrder,
		Variations:    []VariationResponse{},
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func VariationToResponse(v *entity.ProductVariation, basePrice decimal.Decimal) VariationResponse {
	effective := v.EffectivePrice(basePrice)
	return VariationResponse{
		ID:             v.ID.String(),
		ProductID:      v.ProductID.String(),
		Name:           v.Name,
		Price:          moneyPtr(v.Price),
		EffectivePrice: Money(effective),
		FinalPrice:     Money(effective),
		IsAvailable:    v.IsAvailable,
		SortOrder:      v.SortOrder,
	}
}
