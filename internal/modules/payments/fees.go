package payments

import "github.com/shopspring/decimal"

// PlatformFeeRate is the platform's cut of every sale.
var PlatformFeeRate = decimal.NewFromFloat(0.10)

var hundred = decimal.NewFromInt(100)

// PlatformFeeCents computes round(price * 0.10 * 100) in minor units.
func PlatformFeeCents(price decimal.Decimal) int64 {
	return price.Mul(PlatformFeeRate).Mul(hundred).Round(0).IntPart()
}

// AmountCents converts a major-unit price to minor units, round(price * 100).
func AmountCents(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// FromCents converts minor units back to a major-unit decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}
