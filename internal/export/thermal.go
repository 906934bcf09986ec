package export

import (
	"context"
	"fmt"

	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

// ThermalSink prints receipts on an ESC/POS printer.
type ThermalSink struct {
	printer Printer
	head    Letterhead
	width   int
}

// NewThermalSink prints on 58mm paper (32 characters per line).
func NewThermalSink(p Printer, head Letterhead) *ThermalSink {
	return &ThermalSink{printer: p, head: head, width: 32}
}

func (s *ThermalSink) Export(_ context.Context, r core.Receipt) error {
	if err := s.printer.Print(FormatThermal(r, s.head, s.width)); err != nil {
		return fmt.Errorf("failed to print ticket %d: %w", r.TicketNumber, err)
	}
	return nil
}

// FormatThermal renders r as an ESC/POS byte stream.
func FormatThermal(r core.Receipt, head Letterhead, width int) []byte {
	doc := newESCPOSDoc(width)
	money := func(v string) string { return head.Currency + " " + v }

	doc.align(alignCenter).
		bold(true).
		fontSize(fontDouble).
		text(head.StoreName).
		fontSize(fontNormal).
		bold(false).
		align(alignLeft).
		separator()

	doc.keyValue("Ticket:", fmt.Sprintf("%d", r.TicketNumber)).
		keyValue("Caja:", r.TerminalID).
		keyValue("Fecha:", r.IssuedAt.Format("02/01/2006 15:04"))
	if r.CustomerLabel != "" {
		doc.keyValue("Cliente:", r.CustomerLabel)
	}
	doc.separator()

	for _, l := range r.Lines() {
		doc.keyValue(quantityLabel(l)+"x "+l.Name, core.FormatMoney(l.LineTotal))
		if !l.Quantity.Equal(decimal.NewFromInt(1)) {
			doc.text("  @ " + core.FormatMoney(l.UnitPrice))
		}
		if l.LineDiscountPct.IsPositive() {
			doc.text("  desc. " + l.LineDiscountPct.String() + "%")
		}
	}
	doc.separator()

	doc.keyValue("Subtotal:", money(core.FormatMoney(r.Subtotal)))
	if r.DiscountAmount.IsPositive() {
		doc.keyValue("Descuento "+r.GlobalDiscountPct.String()+"%:", "-"+money(core.FormatMoney(r.DiscountAmount)))
	}
	doc.bold(true).
		keyValue("TOTAL:", money(core.FormatMoney(r.Total))).
		bold(false)

	doc.keyValue("Pago:", methodLabel(r.Method))
	if r.CashTendered.Valid {
		doc.keyValue("Efectivo:", money(core.FormatMoney(r.CashTendered.Decimal)))
	}
	if r.Change.Valid {
		doc.keyValue("Vuelto:", money(core.FormatMoney(r.Change.Decimal)))
	}
	if r.Reference != "" {
		doc.keyValue("Ref:", r.Reference)
	}

	doc.separator().
		align(alignCenter).
		text("Gracias por su compra").
		align(alignLeft).
		feed(3).
		partialCut()

	return doc.bytes()
}
