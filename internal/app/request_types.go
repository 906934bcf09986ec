package app

import (
	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

// AddItemRequest adds Quantity of a product to a terminal's cart.
// A zero Quantity adds one unit.
type AddItemRequest struct {
	TerminalID string
	Product    core.Product
	Quantity   decimal.Decimal
}

// ChargeRequest is the payment offered at the till. For cash, a missing
// CashReceived means the amount already entered on the keypad.
type ChargeRequest struct {
	TerminalID   string
	Method       core.PaymentMethod
	CashReceived decimal.NullDecimal
	Reference    string
}

// ListOrdersRequest filters the order list. Empty fields match everything.
type ListOrdersRequest struct {
	Estado     string
	EstadoPago string
}

// TransitionRequest moves an order to Target.
type TransitionRequest struct {
	OrderID string
	Target  core.OrderState
	Actor   string
}

// PaymentStatusRequest records a payment status for an order.
type PaymentStatusRequest struct {
	OrderID string
	Status  core.PaymentState
	Actor   string
}

// CreateOrderRequest is the input for creating an order. Subtotal and total
// are derived from Items, Descuento and Impuestos.
type CreateOrderRequest struct {
	Cliente        core.ClienteRef
	Items          []core.OrderLineInput
	MetodoPagoRef  string
	MetodoEnvioRef string
	DireccionEnvio string
	Notas          string
	Descuento      decimal.Decimal
	Impuestos      decimal.Decimal
}
