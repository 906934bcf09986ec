package core

import (
	"errors"
	"fmt"
)

// Validation errors. Callers treat these as a no-op: the prior valid state is kept.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrMalformedEntry  = errors.New("malformed numeric entry")
)

// Business-rule rejections. Reported to the user; no partial state change happens.
var (
	ErrIllegalTransition = errors.New("illegal order state transition")
	ErrInsufficientCash  = errors.New("cash received is less than the total")
	ErrEmptyCart         = errors.New("cart has no items")
	ErrUnknownState      = errors.New("unknown state")
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrInvalidCliente    = errors.New("order must reference exactly one of persona or organizacion")
)

// TransitionError describes a rejected lifecycle transition.
// It matches ErrIllegalTransition with errors.Is.
type TransitionError struct {
	From OrderState
	To   OrderState
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("order in terminal state %s cannot transition to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// InsufficientCashError carries the amount still owed by the customer.
// It matches ErrInsufficientCash with errors.Is.
type InsufficientCashError struct {
	Total     string
	Received  string
	Shortfall string
}

func (e *InsufficientCashError) Error() string {
	return fmt.Sprintf("insufficient cash: received %s of %s (missing %s)", e.Received, e.Total, e.Shortfall)
}

func (e *InsufficientCashError) Is(target error) bool {
	return target == ErrInsufficientCash
}
