package core

import (
	"github.com/shopspring/decimal"
)

// Session is the state of one POS terminal: its single live cart, its keypad
// buffer, the cash tendered so far and the receipts issued since it opened.
// Every POS operation goes through a Session rather than shared globals.
// A Session is not safe for concurrent use; callers serialise events.
type Session struct {
	terminalID    string
	cart          *Cart
	entry         *EntryBuffer
	tendered      decimal.NullDecimal
	customerLabel string
	seq           *Sequencer
	receipts      []Receipt
}

// NewSession opens a terminal session with an empty cart.
func NewSession(terminalID string, seq *Sequencer) *Session {
	return &Session{
		terminalID: terminalID,
		cart:       NewCart(),
		entry:      NewEntryBuffer(),
		seq:        seq,
	}
}

func (s *Session) TerminalID() string            { return s.terminalID }
func (s *Session) Cart() *Cart                   { return s.cart }
func (s *Session) Entry() *EntryBuffer           { return s.entry }
func (s *Session) Tendered() decimal.NullDecimal { return s.tendered }
func (s *Session) CustomerLabel() string         { return s.customerLabel }
func (s *Session) SetCustomerLabel(label string) { s.customerLabel = label }

// CommitEntry applies the keypad buffer to the cart or the tendered cash.
func (s *Session) CommitEntry() bool {
	return s.entry.Commit(s.cart, &s.tendered)
}

// Preview returns the rounded totals of the live cart.
func (s *Session) Preview() Totals {
	return ComputeTotals(s.cart).Rounded()
}

// CanCharge reports whether the charge control should be enabled for method.
// Non-cash methods only need a non-empty cart; cash also needs enough tendered.
func (s *Session) CanCharge(method PaymentMethod) bool {
	if s.cart.Len() == 0 {
		return false
	}
	if !method.IsCash() {
		return true
	}
	res, err := Tender(Payment{Method: method, CashReceived: s.tendered}, s.Preview().Total)
	return err == nil && res.Accepted
}

// Charge tenders p against the cart total and, when accepted, issues a receipt
// and starts a new sale. A cash payment without CashReceived uses the amount
// entered on the keypad. On any error the cart and buffer are left as they were.
func (s *Session) Charge(p Payment) (Receipt, error) {
	if s.cart.Len() == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if p.Method.IsCash() && !p.CashReceived.Valid {
		p.CashReceived = s.tendered
	}
	totals := ComputeTotals(s.cart)
	res, err := Tender(p, totals.Rounded().Total)
	if err != nil {
		return Receipt{}, err
	}
	r, err := s.seq.IssueReceipt(s.terminalID, s.cart, totals, p, res, s.customerLabel)
	if err != nil {
		return Receipt{}, err
	}
	s.receipts = append(s.receipts, r)
	s.NewSale()
	return r, nil
}

// NewSale discards the live cart, keypad buffer, tendered cash and customer label.
func (s *Session) NewSale() {
	s.cart.Clear()
	s.entry.Reset()
	s.tendered = decimal.NullDecimal{}
	s.customerLabel = ""
}

// Receipts returns the receipts issued in this session, oldest first.
func (s *Session) Receipts() []Receipt {
	out := make([]Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// Receipt looks up an issued receipt by ticket number.
func (s *Session) Receipt(ticket int64) (Receipt, bool) {
	for _, r := range s.receipts {
		if r.TicketNumber == ticket {
			return r, true
		}
	}
	return Receipt{}, false
}
