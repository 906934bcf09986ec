package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"
	"commerce-engine/internal/export"
	"commerce-engine/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	yerba = core.Product{Ref: "P001", Name: "Yerba 1kg", UnitPrice: d("100")}
	queso = core.Product{Ref: "P002", Name: "Queso x kg", UnitPrice: d("12.50")}
)

type recordingSink struct {
	mu       sync.Mutex
	receipts []core.Receipt
	err      error
}

func (s *recordingSink) Export(_ context.Context, r core.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return s.err
}

func newService(t *testing.T, sink export.Sink) app.ApplicationService {
	t.Helper()
	svc := app.NewAppService(store.NewMemoryStore(), app.MemoryCounters(1001), sink, export.Letterhead{StoreName: "Almacén", Currency: "ARS"}, nil)
	_, err := svc.OpenTerminal(context.Background(), "caja1")
	require.NoError(t, err)
	return svc
}

func TestTerminal_NotOpen(t *testing.T) {
	svc := app.NewAppService(store.NewMemoryStore(), app.MemoryCounters(1), nil, export.Letterhead{}, nil)
	_, err := svc.GetCart(context.Background(), "caja9")
	assert.ErrorIs(t, err, app.ErrTerminalNotOpen)

	_, err = svc.OpenTerminal(context.Background(), "  ")
	assert.Error(t, err)
}

func TestTerminal_OpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	_, err := svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: yerba, Quantity: d("1")})
	require.NoError(t, err)

	cart, err := svc.OpenTerminal(ctx, "caja1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1, "reopening must keep the live cart")

	require.NoError(t, svc.CloseTerminal(ctx, "caja1"))
	assert.ErrorIs(t, svc.CloseTerminal(ctx, "caja1"), app.ErrTerminalNotOpen)
}

func TestTerminal_CartFlow(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	cart, err := svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: yerba, Quantity: d("2")})
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: queso})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	require.NotNil(t, cart.Selected)
	assert.Equal(t, cart.Lines[1].ID, *cart.Selected)

	cart, err = svc.SetEntryMode(ctx, "caja1", core.EntryQuantity)
	require.NoError(t, err)
	cart, err = svc.PressKeys(ctx, "caja1", "0.7x5<50")
	require.NoError(t, err)
	assert.Equal(t, "0.750", cart.EntryDigits)

	cart, err = svc.CommitEntry(ctx, "caja1")
	require.NoError(t, err)
	assert.True(t, cart.Applied)
	assert.True(t, cart.Lines[1].Quantity.Equal(d("0.75")))
	assert.Empty(t, cart.EntryDigits)

	cart, err = svc.SetGlobalDiscount(ctx, "caja1", d("10"))
	require.NoError(t, err)
	assert.True(t, cart.Totals.Subtotal.Equal(d("209.38")), "got %s", cart.Totals.Subtotal)
	assert.True(t, cart.Totals.DiscountAmount.Equal(d("20.94")), "got %s", cart.Totals.DiscountAmount)
	assert.True(t, cart.Totals.Total.Equal(d("188.44")), "got %s", cart.Totals.Total)
	assert.True(t, cart.CanCharge[core.MethodTarjeta])
	assert.False(t, cart.CanCharge[core.MethodEfectivo], "cash needs a tendered amount")

	_, err = svc.RemoveLine(ctx, "caja1", core.LineID(999))
	assert.ErrorIs(t, err, core.ErrLineNotFound)

	cart, err = svc.NewSale(ctx, "caja1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCharge_CashExportsReceipt(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	svc := newService(t, sink)

	_, err := svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: yerba, Quantity: d("2")})
	require.NoError(t, err)

	_, err = svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodEfectivo, CashReceived: decimal.NewNullDecimal(d("150"))})
	assert.ErrorIs(t, err, core.ErrInsufficientCash)
	cart, _ := svc.GetCart(ctx, "caja1")
	assert.Len(t, cart.Lines, 1, "a rejected charge leaves the cart alone")

	res, err := svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodEfectivo, CashReceived: decimal.NewNullDecimal(d("500"))})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), res.Receipt.TicketNumber)
	assert.True(t, res.Receipt.Change.Decimal.Equal(d("300")))
	assert.Empty(t, res.Cart.Lines, "a new sale begins after charging")
	require.Len(t, sink.receipts, 1)
	assert.Equal(t, res.Receipt.ID, sink.receipts[0].ID)

	got, err := svc.GetReceipt(ctx, "caja1", 1001)
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.ID, got.ID)

	_, err = svc.GetReceipt(ctx, "caja1", 42)
	assert.ErrorIs(t, err, app.ErrReceiptNotFound)
}

func TestCharge_ExportFailureDoesNotFailSale(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{err: errors.New("printer offline")}
	svc := newService(t, sink)

	_, err := svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: queso, Quantity: d("1")})
	require.NoError(t, err)
	res, err := svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodTarjeta, Reference: " op-77 "})
	require.NoError(t, err)
	assert.Equal(t, "op-77", res.Receipt.Reference)

	list, err := svc.ListReceipts(ctx, "caja1")
	require.NoError(t, err)
	assert.Len(t, list.Receipts, 1)
}

func TestCharge_TicketsIncreasePerTerminal(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	_, err := svc.OpenTerminal(ctx, "caja2")
	require.NoError(t, err)

	var last int64
	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: yerba})
		require.NoError(t, err)
		res, err := svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodQR})
		require.NoError(t, err)
		assert.Greater(t, res.Receipt.TicketNumber, last)
		last = res.Receipt.TicketNumber
	}

	_, err = svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja2", Product: yerba})
	require.NoError(t, err)
	res, err := svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja2", Method: core.MethodQR})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), res.Receipt.TicketNumber)
}

func TestCharge_ConcurrentOnOneTerminal(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: yerba})
			_, _ = svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodTarjeta})
		}()
	}
	wg.Wait()

	list, err := svc.ListReceipts(ctx, "caja1")
	require.NoError(t, err)
	seen := make(map[int64]bool)
	for _, r := range list.Receipts {
		assert.False(t, seen[r.TicketNumber], "duplicate ticket %d", r.TicketNumber)
		seen[r.TicketNumber] = true
	}
}

func TestReceiptPDF(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	_, err := svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: yerba})
	require.NoError(t, err)
	res, err := svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodCuenta})
	require.NoError(t, err)

	doc, err := svc.ReceiptPDF(ctx, "caja1", res.Receipt.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, export.PDFFileName(res.Receipt), doc.FileName)
	assert.NotEmpty(t, doc.Data)
}
