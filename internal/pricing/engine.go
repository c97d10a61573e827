// Package pricing resolves the offers attached to a priceable entity and
// folds them into a final price.
package pricing

import (
	"context"
	"fmt"
	"time"

	"marketplace-api/internal/data/entity"

	"github.com/shopspring/decimal"
)

// OfferFinder returns the offers valid for ref at now, in compounding order.
type OfferFinder interface {
	FindActiveByEntity(ctx context.Context, ref entity.EntityRef, now time.Time) ([]*entity.Offer, error)
}

type Engine struct {
	offers OfferFinder
}

func NewEngine(offers OfferFinder) *Engine {
	return &Engine{offers: offers}
}

// Quote is a priced entity together with the offers that priced it.
type Quote struct {
	BasePrice   decimal.Decimal
	FinalPrice  decimal.Decimal
	Offers      []*entity.Offer
	HasDiscount bool
}

// FindValidOffers drops anything not valid at now, even if the finder returned it,
// so an expired offer never reaches ComputeFinalPrice.
func (e *Engine) FindValidOffers(ctx context.Context, ref entity.EntityRef, now time.Time) ([]*entity.Offer, error) {
	offers, err := e.offers.FindActiveByEntity(ctx, ref, now)
	if err != nil {
		return nil, fmt.Errorf("find offers for %s: %w", ref, err)
	}

	valid := offers[:0:0]
	for _, o := range offers {
		if o.IsValid(now) && o.Target == ref {
			valid = append(valid, o)
		}
	}
	return valid, nil
}

// Quote prices base against the offers valid for ref at now.
func (e *Engine) Quote(ctx context.Context, ref entity.EntityRef, base decimal.Decimal, now time.Time) (*Quote, error) {
	offers, err := e.FindValidOffers(ctx, ref, now)
	if err != nil {
		return nil, err
	}
	return NewQuote(base, offers), nil
}

func NewQuote(base decimal.Decimal, offers []*entity.Offer) *Quote {
	final := ComputeFinalPrice(base, offers)
	return &Quote{
		BasePrice:   base,
		FinalPrice:  final,
		Offers:      offers,
		HasDiscount: final.LessThan(base.Round(2)),
	}
}

// ComputeFinalPrice applies every offer in order, each on the previous result.
// Rounding to cents happens once, after the last offer.
func ComputeFinalPrice(base decimal.Decimal, offers []*entity.Offer) decimal.Decimal {
	price := base
	for _, o := range offers {
		price = apply(price, o)
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Round(2)
}

func apply(price decimal.Decimal, o *entity.Offer) decimal.Decimal {
	switch o.Kind {
	case entity.OfferPercentage:
		return price.Mul(o.Percent().Multiplier())
	case entity.OfferFixed:
		return decimal.Max(decimal.Zero, price.Sub(o.Value))
	default:
		// buy_x_get_y has no pricing rule
		return price
	}
}
