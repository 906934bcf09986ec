package core

import "github.com/shopspring/decimal"

// MinorUnitPlaces is the number of decimal places of the currency's minor unit.
const MinorUnitPlaces int32 = 2

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// RoundMoney rounds an amount to the minor unit using round-half-up.
// Amounts in this engine are never negative, so decimal's half-away-from-zero
// rounding is half-up for every value it sees.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// FormatMoney renders an amount with exactly two decimals, e.g. "180.00".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MinorUnitPlaces)
}

// ClampPercent saturates a percentage to [0, 100].
func ClampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// PercentOf returns amount * pct / 100 at full precision.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// remainingFraction returns (1 - pct/100).
func remainingFraction(pct decimal.Decimal) decimal.Decimal {
	return one.Sub(pct.Div(hundred))
}
