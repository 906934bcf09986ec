package core

import "github.com/shopspring/decimal"

// LineID identifies a line within one cart. IDs are never reused inside a cart.
type LineID int

// Product is the catalog entry the POS adds to a cart.
type Product struct {
	Ref       string          `json:"ref"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineItem is one product entry in a cart, with its own quantity and discount.
// Quantity may be fractional for weight-based goods.
type LineItem struct {
	ID              LineID          `json:"line_id"`
	ProductRef      string          `json:"product_ref"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        decimal.Decimal `json:"quantity"`
	LineDiscountPct decimal.Decimal `json:"line_discount_pct"`
}

// LineTotal is unitPrice * quantity * (1 - lineDiscountPct/100) at full precision.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity).Mul(remainingFraction(l.LineDiscountPct))
}

// Cart is the in-progress collection of line items for one POS sale.
// A Cart is owned by exactly one terminal session and is not safe for concurrent use.
type Cart struct {
	items             []LineItem
	globalDiscountPct decimal.Decimal
	selected          *LineID
	nextID            LineID
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{nextID: 1}
}
