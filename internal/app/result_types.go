package app

import (
	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

// CartResult is the state of a terminal after an operation.
type CartResult struct {
	TerminalID        string                      `json:"terminal_id"`
	Lines             []core.LineItem             `json:"lines"`
	Selected          *core.LineID                `json:"selected,omitempty"`
	GlobalDiscountPct decimal.Decimal             `json:"global_discount_pct"`
	Totals            core.Totals                 `json:"totals"`
	EntryMode         core.EntryMode              `json:"entry_mode"`
	EntryDigits       string                      `json:"entry_digits"`
	Tendered          decimal.NullDecimal         `json:"tendered"`
	CustomerLabel     string                      `json:"customer_label,omitempty"`
	CanCharge         map[core.PaymentMethod]bool `json:"can_charge"`
	// Applied is set by CommitEntry when the buffer changed the cart or tendered amount.
	Applied bool `json:"applied"`
}

// ChargeResult is returned by a successful Charge.
type ChargeResult struct {
	Receipt core.Receipt `json:"receipt"`
	Cart    *CartResult  `json:"cart"`
}

// ReceiptListResult is returned by ListReceipts, oldest first.
type ReceiptListResult struct {
	TerminalID string         `json:"terminal_id"`
	Receipts   []core.Receipt `json:"receipts"`
}

// DocumentResult is a rendered file.
type DocumentResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// OrderResult is returned by order operations.
type OrderResult struct {
	Order *core.Order `json:"order"`
	// Allowed lists the estados the order may move to next.
	Allowed []core.OrderState `json:"allowed_transitions"`
	// Changed is false when SetPaymentStatus found the status already set.
	Changed bool `json:"changed"`
	// Applied is false when the view was closed before the store answered.
	Applied bool `json:"applied"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order `json:"orders"`
}
