package core

import (
	"fmt"
	"time"
)

// OrderUpdate is a change to exactly one mutable order field. Only estado and
// estado_pago change after creation; money fields have no variant.
type OrderUpdate interface {
	Field() string
	apply(o *Order) error
}

// EstadoUpdate moves the order along the fulfillment lifecycle.
type EstadoUpdate struct {
	Estado OrderState
}

func (EstadoUpdate) Field() string { return "estado" }

func (u EstadoUpdate) apply(o *Order) error {
	next, err := RequestTransition(o, u.Estado)
	if err != nil {
		return err
	}
	o.Estado = next
	return nil
}

// EstadoPagoUpdate records a payment status reported by the gateway.
type EstadoPagoUpdate struct {
	EstadoPago PaymentState
}

func (EstadoPagoUpdate) Field() string { return "estado_pago" }

func (u EstadoPagoUpdate) apply(o *Order) error {
	if !u.EstadoPago.Valid() {
		return fmt.Errorf("%w: estado_pago %q", ErrUnknownState, u.EstadoPago)
	}
	o.EstadoPago = u.EstadoPago
	return nil
}

// ApplyUpdate returns a copy of o with u applied and UpdatedAt set to at.
// o itself is left untouched, so a rejected update changes nothing.
func ApplyUpdate(o *Order, u OrderUpdate, at time.Time) (*Order, error) {
	next := o.Clone()
	if err := u.apply(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = at
	return next, nil
}
