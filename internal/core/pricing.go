package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Totals is the priced view of a cart.
// Values from ComputeTotals are full precision; call Rounded before display or storage.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals prices a cart:
//
//	subtotal       = Σ lineTotal (line discounts already applied)
//	discountAmount = subtotal * globalDiscountPct / 100
//	total          = subtotal - discountAmount
//
// It does not modify the cart and returns the same result for an unchanged cart.
func ComputeTotals(c *Cart) Totals {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	discount := PercentOf(subtotal, c.globalDiscountPct)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		panic(fmt.Sprintf("core: negative cart total %s", total))
	}
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
	}
}

// Rounded returns the totals rounded to the minor unit (round-half-up).
// Total is derived from the rounded parts so the printed figures always add up.
func (t Totals) Rounded() Totals {
	sub := RoundMoney(t.Subtotal)
	disc := RoundMoney(t.DiscountAmount)
	return Totals{
		Subtotal:       sub,
		DiscountAmount: disc,
		Total:          sub.Sub(disc),
	}
}
