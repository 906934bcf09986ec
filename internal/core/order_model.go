package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClienteRef points at the customer of an order: a persona or an organización, never both.
type ClienteRef struct {
	PersonaID      string `json:"persona_id,omitempty"`
	OrganizacionID string `json:"organizacion_id,omitempty"`
}

// Validate enforces persona XOR organización.
func (c ClienteRef) Validate() error {
	if (c.PersonaID == "") == (c.OrganizacionID == "") {
		return ErrInvalidCliente
	}
	return nil
}

// OrderLine is a line snapshot stored on an order.
type OrderLine struct {
	ProductRef      string          `json:"product_ref"`
	Descripcion     string          `json:"descripcion,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        decimal.Decimal `json:"quantity"`
	LineDiscountPct decimal.Decimal `json:"line_discount_pct"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// Order is the durable purchase record (pedido) kept by the external store.
// Estado and EstadoPago only change through the state machines in this package,
// and Total is always Subtotal - Descuento + Impuestos.
type Order struct {
	ID             string          `json:"id"`
	NumeroPedido   string          `json:"numero_pedido"`
	Estado         OrderState      `json:"estado"`
	EstadoPago     PaymentState    `json:"estado_pago"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Descuento      decimal.Decimal `json:"descuento"`
	Impuestos      decimal.Decimal `json:"impuestos"`
	Total          decimal.Decimal `json:"total"`
	Items          []OrderLine     `json:"items"`
	Cliente        ClienteRef      `json:"cliente"`
	MetodoPagoRef  string          `json:"metodo_pago_ref,omitempty"`
	MetodoEnvioRef string          `json:"metodo_envio_ref,omitempty"`
	DireccionEnvio string          `json:"direccion_envio,omitempty"`
	Notas          string          `json:"notas,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderAmounts is the money block of an order. Total is derived, never stored independently.
type OrderAmounts struct {
	Subtotal  decimal.Decimal
	Descuento decimal.Decimal
	Impuestos decimal.Decimal
}

// Total returns subtotal - descuento + impuestos.
func (a OrderAmounts) Total() decimal.Decimal {
	return a.Subtotal.Sub(a.Descuento).Add(a.Impuestos)
}

// Amounts returns the order's money block.
func (o *Order) Amounts() OrderAmounts {
	return OrderAmounts{Subtotal: o.Subtotal, Descuento: o.Descuento, Impuestos: o.Impuestos}
}

// TotalConsistent reports whether Total matches the recomputed amount.
func (o *Order) TotalConsistent() bool {
	return o.Total.Equal(o.Amounts().Total())
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderLine, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

// OrderLineInput is a line requested for a new order.
type OrderLineInput struct {
	ProductRef      string
	Descripcion     string
	UnitPrice       decimal.Decimal
	Quantity        decimal.Decimal
	LineDiscountPct decimal.Decimal
}

// PriceOrderLines turns inputs into priced order lines and returns their subtotal,
// using the same line-total rule as the POS cart. Amounts are rounded to the minor unit.
func PriceOrderLines(inputs []OrderLineInput) ([]OrderLine, decimal.Decimal, error) {
	lines := make([]OrderLine, 0, len(inputs))
	subtotal := decimal.Zero
	for _, in := range inputs {
		if !in.Quantity.IsPositive() {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: %s costs %s", ErrInvalidPrice, in.ProductRef, in.UnitPrice)
		}
		pct := ClampPercent(in.LineDiscountPct)
		li := LineItem{UnitPrice: in.UnitPrice, Quantity: in.Quantity, LineDiscountPct: pct}
		total := RoundMoney(li.LineTotal())
		subtotal = subtotal.Add(total)
		lines = append(lines, OrderLine{
			ProductRef:      in.ProductRef,
			Descripcion:     in.Descripcion,
			UnitPrice:       in.UnitPrice,
			Quantity:        in.Quantity,
			LineDiscountPct: pct,
			LineTotal:       total,
		})
	}
	return lines, subtotal, nil
}

// ShippingMethod and PaymentMethodOption are reference data shown to the user.
// The engine never computes with their fees.
type ShippingMethod struct {
	ID    string              `json:"id"`
	Label string              `json:"label"`
	Type  string              `json:"type"`
	Price decimal.NullDecimal `json:"price"`
}

type PaymentMethodOption struct {
	ID    string              `json:"id"`
	Label string              `json:"label"`
	Type  string              `json:"type"`
	Fee   decimal.NullDecimal `json:"fee"`
}
