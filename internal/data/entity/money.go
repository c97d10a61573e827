package entity

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// PercentPoints is a whole-number percentage: 15 means 15%.
// Offer.value for percentage offers is stored in this unit.
type PercentPoints struct {
	decimal.Decimal
}

func NewPercentPoints(d decimal.Decimal) PercentPoints {
	return PercentPoints{Decimal: d}
}

func (p PercentPoints) Valid() bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// Multiplier is the factor a price is scaled by: 15 -> 0.85.
func (p PercentPoints) Multiplier() decimal.Decimal {
	return one.Sub(p.Div(hundred))
}

// Fraction is a ratio in [0, 1]. Category.has_offer is stored in this unit.
// It is a different quantity from PercentPoints and is never converted into one.
type Fraction struct {
	decimal.Decimal
}

func NewFraction(d decimal.Decimal) Fraction {
	return Fraction{Decimal: d}
}

func (f Fraction) Valid() bool {
	return !f.IsNegative() && f.LessThanOrEqual(one)
}
