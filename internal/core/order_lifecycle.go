package core

import (
	"fmt"
	"strings"
)

// OrderState is the fulfillment status (estado) of an order.
//
//	pendiente → confirmado → en_preparacion → enviado → entregado → devuelto
//	any of the first four → cancelado
type OrderState string

const (
	EstadoPendiente     OrderState = "pendiente"
	EstadoConfirmado    OrderState = "confirmado"
	EstadoEnPreparacion OrderState = "en_preparacion"
	EstadoEnviado       OrderState = "enviado"
	EstadoEntregado     OrderState = "entregado"
	EstadoCancelado     OrderState = "cancelado"
	EstadoDevuelto      OrderState = "devuelto"
)

// InitialOrderState is the state of every new order.
const InitialOrderState = EstadoPendiente

// allowedTransitions lists, per state, the states it may move to.
// States absent from the map are terminal.
var allowedTransitions = map[OrderState][]OrderState{
	EstadoPendiente:     {EstadoConfirmado, EstadoCancelado},
	EstadoConfirmado:    {EstadoEnPreparacion, EstadoCancelado},
	EstadoEnPreparacion: {EstadoEnviado, EstadoCancelado},
	EstadoEnviado:       {EstadoEntregado, EstadoCancelado},
	EstadoEntregado:     {EstadoDevuelto},
}

var orderStates = []OrderState{
	EstadoPendiente, EstadoConfirmado, EstadoEnPreparacion, EstadoEnviado,
	EstadoEntregado, EstadoCancelado, EstadoDevuelto,
}

// OrderStates returns every fulfillment state in lifecycle order.
func OrderStates() []OrderState {
	out := make([]OrderState, len(orderStates))
	copy(out, orderStates)
	return out
}

// ParseOrderState validates a state name.
func ParseOrderState(s string) (OrderState, error) {
	st := OrderState(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: estado %q", ErrUnknownState, s)
	}
	return st, nil
}

// Valid reports whether s is a known state.
func (s OrderState) Valid() bool {
	for _, st := range orderStates {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderState) IsTerminal() bool {
	return s == EstadoCancelado || s == EstadoDevuelto
}

func (s OrderState) String() string { return string(s) }

// AllowedTransitions returns the states reachable from s in one step.
// The UI must offer exactly these targets and nothing else.
func AllowedTransitions(s OrderState) []OrderState {
	next := allowedTransitions[s]
	out := make([]OrderState, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from → to is an edge of the lifecycle graph.
func CanTransition(from, to OrderState) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RequestTransition decides whether order may move to target and returns the
// new state for the caller to persist. It never mutates the order.
func RequestTransition(order *Order, target OrderState) (OrderState, error) {
	if !target.Valid() {
		return "", fmt.Errorf("%w: estado %q", ErrUnknownState, target)
	}
	if !CanTransition(order.Estado, target) {
		return "", &TransitionError{From: order.Estado, To: target}
	}
	return target, nil
}
