// Package store is the boundary to the durable order store (pedidos).
// The engine never computes on reference data it reads here; it only displays it.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict means the order moved on since it was read; the caller should reload.
	ErrConflict = errors.New("order was modified concurrently")
)

// OrderStore reads and writes orders. Every write returns the persisted order,
// which is the only value callers may display as confirmed.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*core.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]core.Order, error)
	// UpdateEstado persists from → to. Implementations refuse the write when the
	// stored state is no longer from or the edge is not in the lifecycle graph.
	UpdateEstado(ctx context.Context, id string, from, to core.OrderState) (*core.Order, error)
	UpdateEstadoPago(ctx context.Context, id string, to core.PaymentState) (*core.Order, error)
	CreateOrder(ctx context.Context, req NewOrder) (*core.Order, error)
	ListPaymentMethods(ctx context.Context) ([]core.PaymentMethodOption, error)
	ListShippingMethods(ctx context.Context) ([]core.ShippingMethod, error)
}

// ListFilter narrows ListOrders. Empty fields match everything.
type ListFilter struct {
	Estado     core.OrderState
	EstadoPago core.PaymentState
}

func (f ListFilter) matches(o *core.Order) bool {
	if f.Estado != "" && o.Estado != f.Estado {
		return false
	}
	if f.EstadoPago != "" && o.EstadoPago != f.EstadoPago {
		return false
	}
	return true
}

// NewOrder is the create-order request. Amounts are already priced by the caller;
// the store checks Total against Subtotal - Descuento + Impuestos.
type NewOrder struct {
	Cliente        core.ClienteRef  `json:"cliente"`
	Items          []core.OrderLine `json:"items"`
	MetodoPagoRef  string           `json:"metodo_pago_ref,omitempty"`
	MetodoEnvioRef string           `json:"metodo_envio_ref,omitempty"`
	DireccionEnvio string           `json:"direccion_envio,omitempty"`
	Notas          string           `json:"notas,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Descuento      decimal.Decimal  `json:"descuento"`
	Impuestos      decimal.Decimal  `json:"impuestos"`
	Total          decimal.Decimal  `json:"total"`
}

// Validate checks the request before anything is written.
func (n NewOrder) Validate() error {
	if err := n.Cliente.Validate(); err != nil {
		return err
	}
	if len(n.Items) == 0 {
		return core.ErrEmptyCart
	}
	amounts := core.OrderAmounts{Subtotal: n.Subtotal, Descuento: n.Descuento, Impuestos: n.Impuestos}
	if !n.Total.Equal(amounts.Total()) {
		return fmt.Errorf("total %s does not equal subtotal - descuento + impuestos (%s)",
			core.FormatMoney(n.Total), core.FormatMoney(amounts.Total()))
	}
	return nil
}

// StoreError is a failed store call. Status is the HTTP status for the HTTP
// store and zero when the request never got a response.
type StoreError struct {
	Op     string
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("store %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same call may succeed.
// Transport failures, 429 and 5xx are; rejections of the request are not.
func (e *StoreError) Retryable() bool {
	switch {
	case e.Status == 0:
		return !errors.Is(e.Err, context.Canceled)
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return true
	}
	return false
}

// IsRetryable reports whether err came from a store call that may be retried.
func IsRetryable(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

// checkTransition re-validates the lifecycle edge at the store boundary.
func checkTransition(current, from, to core.OrderState) error {
	if current != from {
		return fmt.Errorf("%w: estado is %s, expected %s", ErrConflict, current, from)
	}
	if !core.CanTransition(from, to) {
		return &core.TransitionError{From: from, To: to}
	}
	return nil
}
