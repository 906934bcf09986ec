package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"commerce-engine/internal/adapters/cli"
	"commerce-engine/internal/app"
	"commerce-engine/internal/core"
	"commerce-engine/internal/export"
	"commerce-engine/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) (app.ApplicationService, *core.Order) {
	t.Helper()
	svc := app.NewAppService(store.NewMemoryStore(), app.MemoryCounters(1), nil, export.Letterhead{}, nil)
	res, err := svc.CreateOrder(context.Background(), app.CreateOrderRequest{
		Cliente: core.ClienteRef{OrganizacionID: "org-3"},
		Items:   []core.OrderLineInput{{ProductRef: "P001", UnitPrice: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	return svc, res.Order
}

func TestRun_OrderCommands(t *testing.T) {
	ctx := context.Background()
	svc, o := seeded(t)

	var out bytes.Buffer
	require.NoError(t, cli.Run(ctx, svc, &out, []string{"orders"}))
	assert.Contains(t, out.String(), o.NumeroPedido)

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, &out, []string{"order", o.ID}))
	var shown struct {
		Order   core.Order        `json:"order"`
		Allowed []core.OrderState `json:"allowed_transitions"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, o.ID, shown.Order.ID)
	assert.Len(t, shown.Allowed, 2)

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, &out, []string{"transition", o.ID, "confirmado"}))
	assert.Contains(t, out.String(), "is now confirmado")

	err := cli.Run(ctx, svc, &out, []string{"transition", o.ID, "devuelto"})
	assert.ErrorIs(t, err, core.ErrIllegalTransition)

	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, &out, []string{"pay-status", o.ID, "parcial"}))
	assert.Contains(t, out.String(), "set to parcial")
	out.Reset()
	require.NoError(t, cli.Run(ctx, svc, &out, []string{"pay-status", o.ID, "parcial"}))
	assert.Contains(t, out.String(), "already parcial")
}

func TestRun_BadInput(t *testing.T) {
	svc, _ := seeded(t)
	var out bytes.Buffer
	assert.Error(t, cli.Run(context.Background(), svc, &out, nil))
	assert.Error(t, cli.Run(context.Background(), svc, &out, []string{"frobnicate"}))
	assert.Error(t, cli.Run(context.Background(), svc, &out, []string{"transition", "x"}))
	assert.ErrorIs(t, cli.Run(context.Background(), svc, &out, []string{"order", "missing"}), store.ErrNotFound)
}
