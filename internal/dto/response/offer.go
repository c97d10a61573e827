package response

import (
	"time"

	"marketplace-api/internal/data/entity"
)

type EntityDetails struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OfferResponse struct {
	ID            string         `json:"id"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Type          string         `json:"type"`
	Value         string         `json:"value"`
	Title         string         `json:"title"`
	Description   *string        `json:"description,omitempty"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	IsActive      bool           `json:"is_active"`
	IsValid       bool           `json:"is_valid"`
	EntityDetails *EntityDetails `json:"entity_details,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func OfferToResponse(o *entity.Offer, now time.Time) OfferResponse {
	return OfferResponse{
		ID:          o.ID.String(),
		EntityType:  string(o.Target.Type()),
		EntityID:    o.Target.ID().String(),
		Type:        string(o.Kind),
		Value:       Money(o.Value),
		Title:       o.Title,
		Description: o.Description,
		StartDate:   o.StartDate,
		EndDate:     o.EndDate,
		IsActive:    o.IsActive,
		IsValid:     o.IsValid(now),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func OffersToResponse(offers []*entity.Offer, now time.Time) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, OfferToResponse(o, now))
	}
	return out
}
