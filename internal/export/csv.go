package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"commerce-engine/internal/core"
)

var csvHeader = []string{
	"terminal_id", "ticket_number", "issued_at", "payment_method",
	"product_ref", "name", "unit_price", "quantity", "line_discount_pct", "line_total",
	"receipt_total",
}

// CSVSink appends one row per receipt line, for end-of-day reconciliation.
type CSVSink struct {
	mu          sync.Mutex
	w           *csv.Writer
	wroteHeader bool
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

// SkipHeader marks the header as written, for appending to an existing file.
func (s *CSVSink) SkipHeader() *CSVSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wroteHeader = true
	return s
}

func (s *CSVSink) Export(_ context.Context, r core.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.wroteHeader {
		if err := s.w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		s.wroteHeader = true
	}
	ticket := strconv.FormatInt(r.TicketNumber, 10)
	issued := r.IssuedAt.UTC().Format(time.RFC3339)
	for _, l := range r.Lines() {
		rec := []string{
			r.TerminalID, ticket, issued, string(r.Method),
			l.ProductRef, l.Name, core.FormatMoney(l.UnitPrice), l.Quantity.String(),
			l.LineDiscountPct.String(), core.FormatMoney(l.LineTotal),
			core.FormatMoney(r.Total),
		}
		if err := s.w.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row for ticket %s: %w", ticket, err)
		}
	}
	s.w.Flush()
	return s.w.Error()
}
