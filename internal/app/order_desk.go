package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"commerce-engine/internal/core"
	"commerce-engine/internal/store"
)

// defaultViewTTL is how long an untouched order view is kept.
const defaultViewTTL = 30 * time.Minute

// orderView is an order as last confirmed by the store.
type orderView struct {
	order    *core.Order
	lastUsed time.Time
}

// orderDesk keeps the open order views. Legality is checked synchronously
// against the view; the view changes only when the store confirms a write.
// busy is keyed by order id, not by view, so closing or evicting a view
// never releases an outstanding write.
type orderDesk struct {
	mu       sync.Mutex
	views    map[string]*orderView
	busy     map[string]bool
	orders   store.OrderStore
	audit    AuditLog
	now      func() time.Time
	viewTTL  time.Duration
	lastScan time.Time
}

func newOrderDesk(orders store.OrderStore, audit AuditLog) *orderDesk {
	return &orderDesk{
		views:   make(map[string]*orderView),
		busy:    make(map[string]bool),
		orders:  orders,
		audit:   audit,
		now:     time.Now,
		viewTTL: defaultViewTTL,
	}
}

// sweepLocked drops views nobody has touched within viewTTL. Views with a
// write in flight stay. Callers hold d.mu.
func (d *orderDesk) sweepLocked(now time.Time) {
	if now.Sub(d.lastScan) < d.viewTTL/2 {
		return
	}
	d.lastScan = now
	for id, v := range d.views {
		if !d.busy[id] && now.Sub(v.lastUsed) > d.viewTTL {
			delete(d.views, id)
		}
	}
}

func (d *orderDesk) result(v *orderView) *OrderResult {
	return &OrderResult{
		Order:   v.order.Clone(),
		Allowed: core.AllowedTransitions(v.order.Estado),
		Applied: true,
	}
}

func (d *orderDesk) list(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error) {
	var filter store.ListFilter
	if s := strings.TrimSpace(req.Estado); s != "" {
		st, err := core.ParseOrderState(s)
		if err != nil {
			return nil, err
		}
		filter.Estado = st
	}
	if s := strings.TrimSpace(req.EstadoPago); s != "" {
		st, err := core.ParsePaymentState(s)
		if err != nil {
			return nil, err
		}
		filter.EstadoPago = st
	}
	orders, err := d.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderListResult{Orders: orders}, nil
}

// open (re)loads the order from the store into its view.
func (d *orderDesk) open(ctx context.Context, id string) (*OrderResult, error) {
	o, err := d.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	d.sweepLocked(now)
	v, ok := d.views[id]
	if !ok {
		v = &orderView{}
		d.views[id] = v
	}
	v.order = o
	v.lastUsed = now
	return d.result(v), nil
}

func (d *orderDesk) close(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.views, id)
}

func (d *orderDesk) get(ctx context.Context, id string) (*OrderResult, error) {
	d.mu.Lock()
	if v, ok := d.views[id]; ok {
		v.lastUsed = d.now()
		res := d.result(v)
		d.mu.Unlock()
		return res, nil
	}
	d.mu.Unlock()
	return d.open(ctx, id)
}

// begin marks the order busy and returns its view with a snapshot of the
// confirmed order. Every successful begin must be paired with finish.
func (d *orderDesk) begin(ctx context.Context, id string) (*orderView, *core.Order, error) {
	d.mu.Lock()
	_, ok := d.views[id]
	d.mu.Unlock()
	if !ok {
		if _, err := d.open(ctx, id); err != nil {
			return nil, nil, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.views[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if d.busy[id] {
		return nil, nil, fmt.Errorf("%w: %s", ErrTransitionInFlight, id)
	}
	d.busy[id] = true
	v.lastUsed = d.now()
	return v, v.order.Clone(), nil
}

// finish releases the order and, when the write succeeded and the same view is
// still open, replaces its confirmed order. It reports whether the view was updated.
func (d *orderDesk) finish(id string, v *orderView, persisted *core.Order) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.busy, id)
	if d.views[id] != v {
		return false
	}
	if persisted != nil {
		v.order = persisted.Clone()
	}
	return true
}

func (d *orderDesk) transition(ctx context.Context, req TransitionRequest) (*OrderResult, error) {
	v, current, err := d.begin(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	proposed, err := core.ApplyUpdate(current, core.EstadoUpdate{Estado: req.Target}, d.now())
	if err != nil {
		d.finish(req.OrderID, v, nil)
		return nil, err
	}
	target := proposed.Estado

	persisted, err := d.orders.UpdateEstado(ctx, req.OrderID, current.Estado, target)
	if err != nil {
		d.finish(req.OrderID, v, nil)
		return nil, fmt.Errorf("failed to move order %s to %s: %w", req.OrderID, target, err)
	}
	applied := d.finish(req.OrderID, v, persisted)

	rec := TransitionRecord{OrderID: req.OrderID, From: current.Estado, To: persisted.Estado, Actor: req.Actor, At: d.now()}
	if err := d.audit.RecordTransition(ctx, rec); err != nil {
		log.Printf("audit: failed to record transition for %s: %v", req.OrderID, err)
	}
	return &OrderResult{
		Order:   persisted,
		Allowed: core.AllowedTransitions(persisted.Estado),
		Changed: true,
		Applied: applied,
	}, nil
}

func (d *orderDesk) setPaymentStatus(ctx context.Context, req PaymentStatusRequest) (*OrderResult, error) {
	v, current, err := d.begin(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	change, changed, err := core.SetPaymentStatus(current, req.Status, req.Actor, d.now())
	if err != nil || !changed {
		d.finish(req.OrderID, v, nil)
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		return &OrderResult{
			Order:   current,
			Allowed: core.AllowedTransitions(current.Estado),
			Applied: true,
		}, nil
	}

	persisted, err := d.orders.UpdateEstadoPago(ctx, req.OrderID, change.To)
	if err != nil {
		d.finish(req.OrderID, v, nil)
		return nil, fmt.Errorf("failed to set payment status of %s to %s: %w", req.OrderID, change.To, err)
	}
	applied := d.finish(req.OrderID, v, persisted)

	if err := d.audit.RecordPaymentStatus(ctx, change); err != nil {
		log.Printf("audit: failed to record payment status for %s: %v", req.OrderID, err)
	}
	return &OrderResult{
		Order:   persisted,
		Allowed: core.AllowedTransitions(persisted.Estado),
		Changed: true,
		Applied: applied,
	}, nil
}

func (d *orderDesk) create(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if err := req.Cliente.Validate(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, core.ErrEmptyCart
	}
	if req.Descuento.IsNegative() || req.Impuestos.IsNegative() {
		return nil, fmt.Errorf("descuento and impuestos must not be negative")
	}
	lines, subtotal, err := core.PriceOrderLines(req.Items)
	if err != nil {
		return nil, err
	}
	amounts := core.OrderAmounts{
		Subtotal:  subtotal,
		Descuento: core.RoundMoney(req.Descuento),
		Impuestos: core.RoundMoney(req.Impuestos),
	}
	total := amounts.Total()
	if total.IsNegative() {
		return nil, fmt.Errorf("descuento %s exceeds subtotal %s", core.FormatMoney(amounts.Descuento), core.FormatMoney(subtotal))
	}

	o, err := d.orders.CreateOrder(ctx, store.NewOrder{
		Cliente:        req.Cliente,
		Items:          lines,
		MetodoPagoRef:  strings.TrimSpace(req.MetodoPagoRef),
		MetodoEnvioRef: strings.TrimSpace(req.MetodoEnvioRef),
		DireccionEnvio: strings.TrimSpace(req.DireccionEnvio),
		Notas:          strings.TrimSpace(req.Notas),
		Subtotal:       amounts.Subtotal,
		Descuento:      amounts.Descuento,
		Impuestos:      amounts.Impuestos,
		Total:          total,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	d.mu.Lock()
	now := d.now()
	d.sweepLocked(now)
	v := &orderView{order: o.Clone(), lastUsed: now}
	d.views[o.ID] = v
	res := d.result(v)
	d.mu.Unlock()
	res.Changed = true
	return res, nil
}
