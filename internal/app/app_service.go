package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"commerce-engine/internal/core"
	"commerce-engine/internal/export"
	"commerce-engine/internal/store"

	"github.com/shopspring/decimal"
)

// CounterFactory returns the ticket counter for a newly opened terminal.
type CounterFactory func(ctx context.Context, terminalID string) (core.TicketCounter, error)

// MemoryCounters gives every terminal its own session-local counter starting at seed.
func MemoryCounters(seed int64) CounterFactory {
	return func(context.Context, string) (core.TicketCounter, error) {
		return core.NewMemoryCounter(seed), nil
	}
}

// terminal serialises events for one session: one event runs to completion
// before the next starts.
type terminal struct {
	mu      sync.Mutex
	session *core.Session
}

type appService struct {
	mu        sync.RWMutex
	terminals map[string]*terminal

	counters CounterFactory
	sink     export.Sink
	head     export.Letterhead

	desk *orderDesk
}

// NewAppService constructs an appService that satisfies ApplicationService.
// sink and audit may be nil.
func NewAppService(
	orders store.OrderStore,
	counters CounterFactory,
	sink export.Sink,
	head export.Letterhead,
	audit AuditLog,
) ApplicationService {
	if audit == nil {
		audit = LogAudit{}
	}
	return &appService{
		terminals: make(map[string]*terminal),
		counters:  counters,
		sink:      sink,
		head:      head,
		desk:      newOrderDesk(orders, audit),
	}
}

// ── Terminals ────────────────────────────────────────────────────────────────

func (s *appService) OpenTerminal(ctx context.Context, terminalID string) (*CartResult, error) {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" {
		return nil, fmt.Errorf("terminal id is required")
	}

	s.mu.Lock()
	t, ok := s.terminals[terminalID]
	if !ok {
		counter, err := s.counters(ctx, terminalID)
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("failed to open terminal %s: %w", terminalID, err)
		}
		t = &terminal{session: core.NewSession(terminalID, core.NewSequencer(counter))}
		s.terminals[terminalID] = t
	}
	s.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	return cartResult(t.session), nil
}

func (s *appService) CloseTerminal(_ context.Context, terminalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.terminals[terminalID]; !ok {
		return fmt.Errorf("%w: %s", ErrTerminalNotOpen, terminalID)
	}
	delete(s.terminals, terminalID)
	return nil
}

func (s *appService) terminal(terminalID string) (*terminal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.terminals[terminalID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTerminalNotOpen, terminalID)
	}
	return t, nil
}

// withSession runs fn under the terminal's lock and returns the resulting cart.
func (s *appService) withSession(terminalID string, fn func(*core.Session) error) (*CartResult, error) {
	t, err := s.terminal(terminalID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := fn(t.session); err != nil {
		return nil, err
	}
	return cartResult(t.session), nil
}

func (s *appService) GetCart(_ context.Context, terminalID string) (*CartResult, error) {
	return s.withSession(terminalID, func(*core.Session) error { return nil })
}

func (s *appService) AddItem(_ context.Context, req AddItemRequest) (*CartResult, error) {
	if strings.TrimSpace(req.Product.Ref) == "" {
		return nil, fmt.Errorf("product ref is required")
	}
	if req.Product.UnitPrice.IsNegative() {
		return nil, core.ErrInvalidPrice
	}
	return s.withSession(req.TerminalID, func(sess *core.Session) error {
		sess.Cart().AddItem(req.Product, req.Quantity)
		return nil
	})
}

func (s *appService) SelectLine(_ context.Context, terminalID string, line core.LineID) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		return sess.Cart().Select(line)
	})
}

func (s *appService) RemoveLine(_ context.Context, terminalID string, line core.LineID) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		return sess.Cart().RemoveItem(line)
	})
}

func (s *appService) SetGlobalDiscount(_ context.Context, terminalID string, pct decimal.Decimal) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		sess.Cart().SetGlobalDiscount(pct)
		return nil
	})
}

func (s *appService) SetCustomerLabel(_ context.Context, terminalID, label string) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		sess.SetCustomerLabel(strings.TrimSpace(label))
		return nil
	})
}

func (s *appService) NewSale(_ context.Context, terminalID string) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		sess.NewSale()
		return nil
	})
}

func (s *appService) SetEntryMode(_ context.Context, terminalID string, mode core.EntryMode) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		sess.Entry().SetMode(mode)
		return nil
	})
}

func (s *appService) PressKeys(_ context.Context, terminalID, keys string) (*CartResult, error) {
	return s.withSession(terminalID, func(sess *core.Session) error {
		for _, k := range keys {
			switch k {
			case KeyBackspace:
				sess.Entry().PressBackspace()
			case KeyClear:
				sess.Entry().PressClear()
			default:
				sess.Entry().PressDigit(k)
			}
		}
		return nil
	})
}

func (s *appService) CommitEntry(_ context.Context, terminalID string) (*CartResult, error) {
	applied := false
	res, err := s.withSession(terminalID, func(sess *core.Session) error {
		applied = sess.CommitEntry()
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Applied = applied
	return res, nil
}

func (s *appService) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	var receipt core.Receipt
	res, err := s.withSession(req.TerminalID, func(sess *core.Session) error {
		r, err := sess.Charge(core.Payment{
			Method:       req.Method,
			CashReceived: req.CashReceived,
			Reference:    strings.TrimSpace(req.Reference),
		})
		if err != nil {
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.sink != nil {
		if err := s.sink.Export(ctx, receipt); err != nil {
			log.Printf("export: receipt %s/%d: %v", receipt.TerminalID, receipt.TicketNumber, err)
		}
	}
	return &ChargeResult{Receipt: receipt, Cart: res}, nil
}

func (s *appService) ListReceipts(_ context.Context, terminalID string) (*ReceiptListResult, error) {
	out := &ReceiptListResult{TerminalID: terminalID}
	_, err := s.withSession(terminalID, func(sess *core.Session) error {
		out.Receipts = sess.Receipts()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *appService) GetReceipt(_ context.Context, terminalID string, ticket int64) (*core.Receipt, error) {
	var found core.Receipt
	_, err := s.withSession(terminalID, func(sess *core.Session) error {
		r, ok := sess.Receipt(ticket)
		if !ok {
			return fmt.Errorf("%w: ticket %d on %s", ErrReceiptNotFound, ticket, terminalID)
		}
		found = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (s *appService) ReceiptPDF(ctx context.Context, terminalID string, ticket int64) (*DocumentResult, error) {
	r, err := s.GetReceipt(ctx, terminalID, ticket)
	if err != nil {
		return nil, err
	}
	b, err := export.RenderPDF(*r, s.head)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{FileName: export.PDFFileName(*r), ContentType: "application/pdf", Data: b}, nil
}

var chargeMethods = []core.PaymentMethod{core.MethodEfectivo, core.MethodTarjeta, core.MethodQR, core.MethodCuenta}

func cartResult(sess *core.Session) *CartResult {
	c := sess.Cart()
	res := &CartResult{
		TerminalID:        sess.TerminalID(),
		Lines:             c.Items(),
		GlobalDiscountPct: c.GlobalDiscountPct(),
		Totals:            sess.Preview(),
		EntryMode:         sess.Entry().Mode(),
		EntryDigits:       sess.Entry().Digits(),
		Tendered:          sess.Tendered(),
		CustomerLabel:     sess.CustomerLabel(),
		CanCharge:         make(map[core.PaymentMethod]bool, len(chargeMethods)),
	}
	if id, ok := c.Selected(); ok {
		res.Selected = &id
	}
	for _, m := range chargeMethods {
		res.CanCharge[m] = sess.CanCharge(m)
	}
	return res
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error) {
	return s.desk.list(ctx, req)
}

func (s *appService) OpenOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	return s.desk.open(ctx, orderID)
}

func (s *appService) CloseOrder(_ context.Context, orderID string) error {
	s.desk.close(orderID)
	return nil
}

func (s *appService) GetOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	return s.desk.get(ctx, orderID)
}

func (s *appService) RequestTransition(ctx context.Context, req TransitionRequest) (*OrderResult, error) {
	return s.desk.transition(ctx, req)
}

func (s *appService) SetPaymentStatus(ctx context.Context, req PaymentStatusRequest) (*OrderResult, error) {
	return s.desk.setPaymentStatus(ctx, req)
}

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	return s.desk.create(ctx, req)
}

func (s *appService) ListPaymentMethods(ctx context.Context) ([]core.PaymentMethodOption, error) {
	return s.desk.orders.ListPaymentMethods(ctx)
}

func (s *appService) ListShippingMethods(ctx context.Context) ([]core.ShippingMethod, error) {
	return s.desk.orders.ListShippingMethods(ctx)
}
