package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"commerce-engine/internal/app"
	"commerce-engine/internal/bootstrap"
	"commerce-engine/internal/config"
	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MemoryWithReceiptDir(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "tickets")
	cfg := &config.Config{
		StoreBackend:  "memory",
		TicketCounter: "memory",
		TicketSeed:    500,
		PrinterType:   "none",
		ReceiptDir:    dir,
		StoreName:     "Almacén",
		Currency:      "ARS",
	}

	rt, err := bootstrap.Build(ctx, cfg)
	require.NoError(t, err)
	defer rt.Close()

	svc := rt.Service
	_, err = svc.OpenTerminal(ctx, "caja1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, app.AddItemRequest{TerminalID: "caja1", Product: core.Product{Ref: "P001", Name: "Yerba", UnitPrice: decimal.NewFromInt(100)}})
	require.NoError(t, err)
	res, err := svc.Charge(ctx, app.ChargeRequest{TerminalID: "caja1", Method: core.MethodTarjeta})
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.Receipt.TicketNumber)

	csv, err := os.ReadFile(filepath.Join(dir, "receipts.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(csv), "\n"), "header plus one line")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "csv and one pdf")
}

func TestBuild_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		StoreBackend:  "postgres",
		DatabaseURL:   "not a url ::",
		TicketCounter: "memory",
		TicketSeed:    1,
		PrinterType:   "none",
	}
	_, err := bootstrap.Build(context.Background(), cfg)
	assert.Error(t, err)
}
