package response

import "github.com/shopspring/decimal"

// Money renders an amount with exactly two decimals, e.g. "17.00".
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := Money(d.Decimal)
	return &s
}
