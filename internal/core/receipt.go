package core

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLine is a frozen cart line with its rounded line total.
type ReceiptLine struct {
	ProductRef      string          `json:"product_ref"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        decimal.Decimal `json:"quantity"`
	LineDiscountPct decimal.Decimal `json:"line_discount_pct"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// Receipt is the immutable record of a completed POS sale.
// Receipts are passed by value and the line snapshot is only reachable through
// Lines, which returns a copy, so an issued receipt cannot be altered.
type Receipt struct {
	ID                uuid.UUID
	TerminalID        string
	TicketNumber      int64
	Subtotal          decimal.Decimal
	DiscountAmount    decimal.Decimal
	GlobalDiscountPct decimal.Decimal
	Total             decimal.Decimal
	Method            PaymentMethod
	CashTendered      decimal.NullDecimal
	Change            decimal.NullDecimal
	Reference         string
	CustomerLabel     string
	IssuedAt          time.Time

	lines []ReceiptLine
}

// Lines returns a copy of the frozen line snapshot.
func (r Receipt) Lines() []ReceiptLine {
	out := make([]ReceiptLine, len(r.lines))
	copy(out, r.lines)
	return out
}

// MarshalJSON renders the receipt with money fixed to the minor unit.
func (r Receipt) MarshalJSON() ([]byte, error) {
	type line struct {
		ProductRef      string `json:"product_ref"`
		Name            string `json:"name"`
		UnitPrice       string `json:"unit_price"`
		Quantity        string `json:"quantity"`
		LineDiscountPct string `json:"line_discount_pct"`
		LineTotal       string `json:"line_total"`
	}
	lines := make([]line, len(r.lines))
	for i, l := range r.lines {
		lines[i] = line{
			ProductRef:      l.ProductRef,
			Name:            l.Name,
			UnitPrice:       FormatMoney(l.UnitPrice),
			Quantity:        l.Quantity.String(),
			LineDiscountPct: l.LineDiscountPct.String(),
			LineTotal:       FormatMoney(l.LineTotal),
		}
	}
	var cash, change *string
	if r.CashTendered.Valid {
		s := FormatMoney(r.CashTendered.Decimal)
		cash = &s
	}
	if r.Change.Valid {
		s := FormatMoney(r.Change.Decimal)
		change = &s
	}
	return json.Marshal(struct {
		ID                string  `json:"id"`
		TerminalID        string  `json:"terminal_id"`
		TicketNumber      int64   `json:"ticket_number"`
		Lines             []line  `json:"lines"`
		Subtotal          string  `json:"subtotal"`
		DiscountAmount    string  `json:"discount_amount"`
		GlobalDiscountPct string  `json:"global_discount_pct"`
		Total             string  `json:"total"`
		Method            string  `json:"payment_method"`
		CashTendered      *string `json:"cash_tendered,omitempty"`
		Change            *string `json:"change,omitempty"`
		Reference         string  `json:"reference,omitempty"`
		CustomerLabel     string  `json:"customer_label,omitempty"`
		IssuedAt          string  `json:"issued_at"`
	}{
		ID:                r.ID.String(),
		TerminalID:        r.TerminalID,
		TicketNumber:      r.TicketNumber,
		Lines:             lines,
		Subtotal:          FormatMoney(r.Subtotal),
		DiscountAmount:    FormatMoney(r.DiscountAmount),
		GlobalDiscountPct: r.GlobalDiscountPct.String(),
		Total:             FormatMoney(r.Total),
		Method:            string(r.Method),
		CashTendered:      cash,
		Change:            change,
		Reference:         r.Reference,
		CustomerLabel:     r.CustomerLabel,
		IssuedAt:          r.IssuedAt.UTC().Format(time.RFC3339),
	})
}

// ── Ticket numbering ─────────────────────────────────────────────────────────

// TicketCounter hands out ticket numbers. Implementations must never return
// the same number twice; gaps are tolerated.
type TicketCounter interface {
	Next() (int64, error)
}

// MemoryCounter is a session-local counter that starts at a seed.
type MemoryCounter struct {
	mu   sync.Mutex
	next int64
}

// NewMemoryCounter returns a counter whose first number is seed.
func NewMemoryCounter(seed int64) *MemoryCounter {
	return &MemoryCounter{next: seed}
}

func (c *MemoryCounter) Next() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next
	c.next++
	return n, nil
}

// Sequencer freezes carts into receipts with strictly increasing ticket numbers.
// It does not reset the cart; that is the session's job.
type Sequencer struct {
	counter TicketCounter
	last    int64
	now     func() time.Time
}

// NewSequencer builds a sequencer on top of counter.
func NewSequencer(counter TicketCounter) *Sequencer {
	return &Sequencer{counter: counter, now: time.Now}
}

// IssueReceipt allocates the next ticket number and snapshots the cart, its
// totals and the accepted payment. Totals are rounded to the minor unit here.
func (s *Sequencer) IssueReceipt(terminalID string, cart *Cart, totals Totals, p Payment, res TenderResult, customerLabel string) (Receipt, error) {
	if !res.Accepted {
		return Receipt{}, fmt.Errorf("cannot issue receipt for a payment that was not accepted")
	}
	n, err := s.counter.Next()
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to allocate ticket number: %w", err)
	}
	if s.last != 0 && n <= s.last {
		return Receipt{}, fmt.Errorf("ticket counter returned %d after %d", n, s.last)
	}
	s.last = n

	lines := make([]ReceiptLine, 0, cart.Len())
	for _, item := range cart.items {
		lines = append(lines, ReceiptLine{
			ProductRef:      item.ProductRef,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			LineDiscountPct: item.LineDiscountPct,
			LineTotal:       RoundMoney(item.LineTotal()),
		})
	}

	rounded := totals.Rounded()
	r := Receipt{
		ID:                uuid.New(),
		TerminalID:        terminalID,
		TicketNumber:      n,
		Subtotal:          rounded.Subtotal,
		DiscountAmount:    rounded.DiscountAmount,
		GlobalDiscountPct: cart.GlobalDiscountPct(),
		Total:             rounded.Total,
		Method:            p.Method,
		CustomerLabel:     customerLabel,
		IssuedAt:          s.now(),
		lines:             lines,
	}
	if p.Method.IsCash() {
		r.CashTendered = p.CashReceived
		r.Change = res.Change
	} else {
		r.Reference = p.Reference
	}
	return r, nil
}
