package repl_test

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"commerce-engine/internal/adapters/repl"
	"commerce-engine/internal/app"
	"commerce-engine/internal/export"
	"commerce-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, svc app.ApplicationService, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, repl.Run(context.Background(), svc, in, &out, "caja1"))
	return out.String()
}

func newService() app.ApplicationService {
	return app.NewAppService(store.NewMemoryStore(), app.MemoryCounters(1001), nil, export.Letterhead{}, nil)
}

func TestRun_CashSale(t *testing.T) {
	out := runScript(t, newService(),
		"/add P001 100 2 Yerba 1kg",
		"/add P002 12.50 Queso",
		"0.75",
		"=",
		"/gdisc 10",
		"/cash",
		"500",
		"/commit",
		"/charge efectivo",
		"/receipts",
		"/exit",
	)
	assert.Contains(t, out, "Yerba 1kg")
	assert.Contains(t, out, "188.44")
	assert.Contains(t, out, "TICKET 1001")
	assert.Contains(t, out, "Vuelto: 311.56")
	assert.Contains(t, out, "Goodbye!")
}

func TestRun_Errors(t *testing.T) {
	out := runScript(t, newService(),
		"/charge tarjeta",
		"/charge bitcoin",
		"/remove 9",
		"/bogus",
		"/exit",
	)
	assert.Contains(t, out, "Error: cart has no items")
	assert.Contains(t, out, "Error: unknown payment method")
	assert.Contains(t, out, "Error: cart line not found")
	assert.Contains(t, out, "Unknown command: /bogus")
}

func TestRun_OrderDesk(t *testing.T) {
	svc := newService()
	out := runScript(t, svc,
		"/new-order persona per-17",
		"P001 2 100 Yerba",
		"done",
		"20",
		"37.80",
		"tarjeta",
		"",
		"",
		"/exit",
	)
	require.Contains(t, out, "created.")

	list, err := svc.ListOrders(context.Background(), app.ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	id := list.Orders[0].ID
	assert.Equal(t, "217.8", list.Orders[0].Total.String())

	out = runScript(t, svc,
		"/transition "+id+" entregado",
		"/transition "+id+" confirmado",
		"/pay-status "+id+" pendiente",
		"/pay-status "+id+" pagado",
		"/orders confirmado",
		"/exit",
	)
	assert.Contains(t, out, "cannot transition order from pendiente to entregado")
	assert.Contains(t, out, "Estado: confirmado")
	assert.Contains(t, out, "already pendiente")
	assert.Contains(t, out, "Pago: pagado")
	assert.Contains(t, out, list.Orders[0].NumeroPedido)
}

func TestRun_EOFEndsSession(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("/add P001"))
	require.NoError(t, repl.Run(context.Background(), newService(), in, &out, "caja1"))
	assert.Contains(t, out.String(), "Usage: /add")
}
