// Package export renders issued receipts to paper, PDF and CSV.
// A sale is complete once its receipt is issued; nothing here can undo it.
package export

import (
	"context"
	"fmt"
	"log"
	"strings"

	"commerce-engine/internal/core"
)

// Sink accepts an issued receipt.
type Sink interface {
	Export(ctx context.Context, r core.Receipt) error
}

// Letterhead is the shop information printed above every receipt.
type Letterhead struct {
	StoreName string
	Currency  string
}

// Fanout hands every receipt to each sink in turn. Failures are logged and
// never returned, so a jammed printer cannot fail a sale.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Export(ctx context.Context, r core.Receipt) error {
	for _, s := range f.sinks {
		if err := s.Export(ctx, r); err != nil {
			log.Printf("export: receipt %s/%d to %T failed: %v", r.TerminalID, r.TicketNumber, s, err)
		}
	}
	return nil
}

var methodLabels = map[core.PaymentMethod]string{
	core.MethodEfectivo: "Efectivo",
	core.MethodTarjeta:  "Tarjeta",
	core.MethodQR:       "QR",
	core.MethodCuenta:   "Cuenta corriente",
}

func methodLabel(m core.PaymentMethod) string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

// QRPayload is the text encoded in a receipt's QR code: terminal|ticket|total.
func QRPayload(r core.Receipt) string {
	return fmt.Sprintf("%s|%d|%s", r.TerminalID, r.TicketNumber, core.FormatMoney(r.Total))
}

// quantityLabel renders 2 as "2" and 0.750 as "0.75".
func quantityLabel(r core.ReceiptLine) string {
	s := r.Quantity.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
