package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"commerce-engine/internal/core"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// RenderPDF lays out r on an 80mm-wide page with a QR code of QRPayload.
func RenderPDF(r core.Receipt, head Letterhead) ([]byte, error) {
	qrPNG, err := qrcode.Encode(QRPayload(r), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	lines := r.Lines()
	height := 120.0 + 10*float64(len(lines))
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(v string) string { return tr(head.Currency + " " + v) }
	row := func(key, value string) {
		pdf.CellFormat(40, 5, tr(key), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, value, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(head.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Ticket %d - Caja %s", r.TicketNumber, tr(r.TerminalID)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, r.IssuedAt.Format("02/01/2006 15:04"), "B", 1, "C", false, 0, "")
	if r.CustomerLabel != "" {
		pdf.CellFormat(0, 5, tr("Cliente: "+r.CustomerLabel), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	for _, l := range lines {
		pdf.CellFormat(50, 5, tr(truncate(quantityLabel(l)+"x "+l.Name, 32)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 5, core.FormatMoney(l.LineTotal), "", 1, "R", false, 0, "")
		if l.LineDiscountPct.IsPositive() {
			pdf.CellFormat(0, 4, tr("   desc. "+l.LineDiscountPct.String()+"%"), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(2)

	row("Subtotal", money(core.FormatMoney(r.Subtotal)))
	if r.DiscountAmount.IsPositive() {
		row("Descuento "+r.GlobalDiscountPct.String()+"%", "-"+money(core.FormatMoney(r.DiscountAmount)))
	}
	pdf.SetFont("Arial", "B", 11)
	row("TOTAL", money(core.FormatMoney(r.Total)))
	pdf.SetFont("Arial", "", 9)
	row("Pago", tr(methodLabel(r.Method)))
	if r.CashTendered.Valid {
		row("Efectivo", money(core.FormatMoney(r.CashTendered.Decimal)))
	}
	if r.Change.Valid {
		row("Vuelto", money(core.FormatMoney(r.Change.Decimal)))
	}
	if r.Reference != "" {
		row("Ref.", tr(r.Reference))
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 22, pdf.GetY()+4, 36, 36, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFSink writes one PDF per receipt into a directory.
type PDFSink struct {
	dir  string
	head Letterhead
}

func NewPDFSink(dir string, head Letterhead) (*PDFSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt dir %s: %w", dir, err)
	}
	return &PDFSink{dir: dir, head: head}, nil
}

// PDFFileName is the file name used for r, e.g. ticket-caja1-1001.pdf.
func PDFFileName(r core.Receipt) string {
	return fmt.Sprintf("ticket-%s-%d.pdf", r.TerminalID, r.TicketNumber)
}

func (s *PDFSink) Export(_ context.Context, r core.Receipt) error {
	b, err := RenderPDF(r, s.head)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, PDFFileName(r))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
