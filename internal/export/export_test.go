package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"commerce-engine/internal/core"
	"commerce-engine/internal/export"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var head = export.Letterhead{StoreName: "Almacén Don Pepe", Currency: "ARS"}

func cashReceipt(t *testing.T) core.Receipt {
	t.Helper()
	s := core.NewSession("caja1", core.NewSequencer(core.NewMemoryCounter(1001)))
	s.Cart().AddItem(core.Product{Ref: "P001", Name: "Yerba 1kg", UnitPrice: decimal.NewFromInt(100)}, decimal.NewFromInt(2))
	s.Cart().AddItem(core.Product{Ref: "P002", Name: "Queso x kg", UnitPrice: decimal.RequireFromString("12.50")}, decimal.RequireFromString("0.750"))
	s.Cart().SetGlobalDiscount(decimal.NewFromInt(10))
	s.SetCustomerLabel("Consumidor final")
	r, err := s.Charge(core.Payment{Method: core.MethodEfectivo, CashReceived: decimal.NewNullDecimal(decimal.NewFromInt(500))})
	require.NoError(t, err)
	return r
}

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(data []byte) error {
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return p.err
}

func (p *recordingPrinter) IsConnected() bool { return true }

func TestFormatThermal(t *testing.T) {
	r := cashReceipt(t)
	out := export.FormatThermal(r, head, 32)

	assert.True(t, bytes.HasPrefix(out, []byte{0x1B, '@'}), "must start with printer init")
	assert.True(t, bytes.HasSuffix(out, []byte{0x1D, 'V', 0x01}), "must end with a partial cut")
	for _, want := range []string{"Ticket:", "1001", "TOTAL:", "Vuelto:", "0.75x Queso x kg", "Consumidor final"} {
		assert.Contains(t, string(out), want)
	}
	for _, line := range bytes.Split(out, []byte{0x0A}) {
		text := bytes.TrimLeft(line, "\x1b\x1d@aE!\x00\x01\x11")
		assert.LessOrEqual(t, len([]rune(string(text))), 32+2, "line too wide: %q", text)
	}
}

func TestThermalSink(t *testing.T) {
	p := &recordingPrinter{}
	sink := export.NewThermalSink(p, head)
	require.NoError(t, sink.Export(context.Background(), cashReceipt(t)))
	require.Len(t, p.jobs, 1)

	p.err = errors.New("paper out")
	assert.Error(t, sink.Export(context.Background(), cashReceipt(t)))
}

func TestRenderPDF(t *testing.T) {
	b, err := export.RenderPDF(cashReceipt(t), head)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestPDFSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := export.NewPDFSink(filepath.Join(dir, "tickets"), head)
	require.NoError(t, err)

	r := cashReceipt(t)
	require.NoError(t, sink.Export(context.Background(), r))
	info, err := os.Stat(filepath.Join(dir, "tickets", export.PDFFileName(r)))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestQRPayload(t *testing.T) {
	r := cashReceipt(t)
	assert.Equal(t, "caja1|1001|"+core.FormatMoney(r.Total), export.QRPayload(r))
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	sink := export.NewCSVSink(&buf)
	r := cashReceipt(t)
	require.NoError(t, sink.Export(context.Background(), r))
	require.NoError(t, sink.Export(context.Background(), r))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+2*len(r.Lines()), "one header then one row per line")
	assert.Equal(t, "terminal_id", rows[0][0])
	assert.Equal(t, "1001", rows[1][1])
	assert.Equal(t, "P001", rows[1][4])
}

type failingSink struct{ calls int }

func (f *failingSink) Export(context.Context, core.Receipt) error {
	f.calls++
	return errors.New("disk full")
}

func TestFanout_NeverFails(t *testing.T) {
	bad := &failingSink{}
	p := &recordingPrinter{}
	f := export.NewFanout(bad, export.NewThermalSink(p, head))

	assert.NoError(t, f.Export(context.Background(), cashReceipt(t)))
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, p.jobs, 1, "a failing sink must not stop the others")
}

func TestNewPrinter(t *testing.T) {
	p, err := export.NewPrinter("none", "", "")
	require.NoError(t, err)
	assert.NoError(t, p.Print([]byte("x")))
	assert.False(t, p.IsConnected())

	_, err = export.NewPrinter("network", "", "")
	assert.Error(t, err)
	_, err = export.NewPrinter("bluetooth", "", "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	usb, err := export.NewPrinter("usb", path, "")
	require.NoError(t, err)
	require.NoError(t, usb.Print([]byte("hola")))
	got, _ := os.ReadFile(path)
	assert.Equal(t, "hola", string(got))
}
