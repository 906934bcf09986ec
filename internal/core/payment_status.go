package core

import (
	"fmt"
	"strings"
	"time"
)

// PaymentState is the payment status (estado_pago) of an order. It mirrors
// what the payment gateway reports, so every state may follow every other.
type PaymentState string

const (
	PagoPendiente   PaymentState = "pendiente"
	PagoPagado      PaymentState = "pagado"
	PagoParcial     PaymentState = "parcial"
	PagoFallido     PaymentState = "fallido"
	PagoReembolsado PaymentState = "reembolsado"
)

var paymentStates = []PaymentState{PagoPendiente, PagoPagado, PagoParcial, PagoFallido, PagoReembolsado}

// PaymentStates returns every payment state.
func PaymentStates() []PaymentState {
	out := make([]PaymentState, len(paymentStates))
	copy(out, paymentStates)
	return out
}

// ParsePaymentState validates a payment state name.
func ParsePaymentState(s string) (PaymentState, error) {
	st := PaymentState(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: estado_pago %q", ErrUnknownState, s)
	}
	return st, nil
}

func (s PaymentState) Valid() bool {
	for _, st := range paymentStates {
		if st == s {
			return true
		}
	}
	return false
}

func (s PaymentState) String() string { return string(s) }

// PaymentStatusChange is one recorded payment-status fact, attributable to an actor.
type PaymentStatusChange struct {
	OrderID string       `json:"order_id"`
	From    PaymentState `json:"from"`
	To      PaymentState `json:"to"`
	Actor   string       `json:"actor"`
	At      time.Time    `json:"at"`
}

// SetPaymentStatus records that order's payment status is now status.
// Setting the status the order already has is not a change: changed is false
// and no PaymentStatusChange is produced. The order is not mutated.
func SetPaymentStatus(order *Order, status PaymentState, actor string, at time.Time) (change PaymentStatusChange, changed bool, err error) {
	if !status.Valid() {
		return PaymentStatusChange{}, false, fmt.Errorf("%w: estado_pago %q", ErrUnknownState, status)
	}
	if order.EstadoPago == status {
		return PaymentStatusChange{}, false, nil
	}
	return PaymentStatusChange{
		OrderID: order.ID,
		From:    order.EstadoPago,
		To:      status,
		Actor:   actor,
		At:      at,
	}, true, nil
}
