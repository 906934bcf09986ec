package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"commerce-engine/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps orders in a map. Used for demos and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   map[string]*core.Order
	seq      int64
	payments []core.PaymentMethodOption
	shipping []core.ShippingMethod
	now      func() time.Time
}

// NewMemoryStore returns an empty store preloaded with the default reference data.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*core.Order),
		payments: []core.PaymentMethodOption{
			{ID: "efectivo", Label: "Efectivo", Type: "cash"},
			{ID: "tarjeta", Label: "Tarjeta de débito/crédito", Type: "card", Fee: decimal.NewNullDecimal(decimal.RequireFromString("3.5"))},
			{ID: "transferencia", Label: "Transferencia bancaria", Type: "transfer"},
		},
		shipping: []core.ShippingMethod{
			{ID: "retiro", Label: "Retiro en local", Type: "pickup", Price: decimal.NewNullDecimal(decimal.Zero)},
			{ID: "moto", Label: "Envío en moto", Type: "courier", Price: decimal.NewNullDecimal(decimal.NewFromInt(1500))},
		},
		now: time.Now,
	}
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (*core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o.Clone(), nil
}

// ListOrders returns matching orders, newest number first.
func (s *MemoryStore) ListOrders(_ context.Context, filter ListFilter) ([]core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.matches(o) {
			out = append(out, *o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroPedido > out[j].NumeroPedido })
	return out, nil
}

func (s *MemoryStore) UpdateEstado(_ context.Context, id string, from, to core.OrderState) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := checkTransition(o.Estado, from, to); err != nil {
		return nil, err
	}
	next, err := core.ApplyUpdate(o, core.EstadoUpdate{Estado: to}, s.now())
	if err != nil {
		return nil, err
	}
	s.orders[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) UpdateEstadoPago(_ context.Context, id string, to core.PaymentState) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := core.ApplyUpdate(o, core.EstadoPagoUpdate{EstadoPago: to}, s.now())
	if err != nil {
		return nil, err
	}
	s.orders[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, req NewOrder) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := s.now()
	o := &core.Order{
		ID:             uuid.NewString(),
		NumeroPedido:   formatNumeroPedido(now.Year(), s.seq),
		Estado:         core.InitialOrderState,
		EstadoPago:     core.PagoPendiente,
		Subtotal:       req.Subtotal,
		Descuento:      req.Descuento,
		Impuestos:      req.Impuestos,
		Total:          req.Total,
		Items:          append([]core.OrderLine(nil), req.Items...),
		Cliente:        req.Cliente,
		MetodoPagoRef:  req.MetodoPagoRef,
		MetodoEnvioRef: req.MetodoEnvioRef,
		DireccionEnvio: req.DireccionEnvio,
		Notas:          req.Notas,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.orders[o.ID] = o
	return o.Clone(), nil
}

func (s *MemoryStore) ListPaymentMethods(context.Context) ([]core.PaymentMethodOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.PaymentMethodOption(nil), s.payments...), nil
}

func (s *MemoryStore) ListShippingMethods(context.Context) ([]core.ShippingMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ShippingMethod(nil), s.shipping...), nil
}

// formatNumeroPedido renders the human order number, e.g. PED-2026-00042.
func formatNumeroPedido(year int, n int64) string {
	return fmt.Sprintf("PED-%d-%05d", year, n)
}
