package store_test

import (
	"context"
	"testing"

	"commerce-engine/internal/core"
	"commerce-engine/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleOrder() store.NewOrder {
	return store.NewOrder{
		Cliente: core.ClienteRef{PersonaID: "per-17"},
		Items: []core.OrderLine{
			{ProductRef: "P001", Descripcion: "Yerba 1kg", UnitPrice: d("100"), Quantity: d("2"), LineDiscountPct: d("0"), LineTotal: d("200")},
		},
		MetodoPagoRef:  "tarjeta",
		MetodoEnvioRef: "moto",
		DireccionEnvio: "Av. Siempreviva 742",
		Subtotal:       d("200"),
		Descuento:      d("20"),
		Impuestos:      d("37.80"),
		Total:          d("217.80"),
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	created, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^PED-\d{4}-00001$`, created.NumeroPedido)
	assert.Equal(t, core.EstadoPendiente, created.Estado)
	assert.Equal(t, core.PagoPendiente, created.EstadoPago)
	assert.True(t, created.TotalConsistent())

	got, err := s.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.NumeroPedido, got.NumeroPedido)
	require.Len(t, got.Items, 1)

	got.Items[0].ProductRef = "changed"
	again, _ := s.GetOrder(ctx, created.ID)
	assert.Equal(t, "P001", again.Items[0].ProductRef, "store must hand out copies")

	second, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	assert.Regexp(t, `-00002$`, second.NumeroPedido)
}

func TestMemoryStore_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	bad := sampleOrder()
	bad.Total = d("200")
	_, err := s.CreateOrder(ctx, bad)
	assert.Error(t, err)

	bad = sampleOrder()
	bad.Cliente = core.ClienteRef{PersonaID: "p", OrganizacionID: "o"}
	_, err = s.CreateOrder(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidCliente)

	bad = sampleOrder()
	bad.Items = nil
	_, err = s.CreateOrder(ctx, bad)
	assert.ErrorIs(t, err, core.ErrEmptyCart)
}

func TestMemoryStore_UpdateEstado(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	o, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	updated, err := s.UpdateEstado(ctx, o.ID, core.EstadoPendiente, core.EstadoConfirmado)
	require.NoError(t, err)
	assert.Equal(t, core.EstadoConfirmado, updated.Estado)

	_, err = s.UpdateEstado(ctx, o.ID, core.EstadoPendiente, core.EstadoCancelado)
	assert.ErrorIs(t, err, store.ErrConflict, "stale from state must be refused")

	_, err = s.UpdateEstado(ctx, o.ID, core.EstadoConfirmado, core.EstadoEntregado)
	assert.ErrorIs(t, err, core.ErrIllegalTransition)
	stored, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, core.EstadoConfirmado, stored.Estado, "a rejected update leaves the order as it was")
	assert.False(t, stored.UpdatedAt.Before(o.UpdatedAt))

	updated.Estado = core.EstadoCancelado
	stored, err = s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, core.EstadoConfirmado, stored.Estado, "callers get a copy")

	_, err = s.UpdateEstado(ctx, "missing", core.EstadoPendiente, core.EstadoConfirmado)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStore_UpdateEstadoPago(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	o, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)

	updated, err := s.UpdateEstadoPago(ctx, o.ID, core.PagoReembolsado)
	require.NoError(t, err)
	assert.Equal(t, core.PagoReembolsado, updated.EstadoPago)

	_, err = s.UpdateEstadoPago(ctx, o.ID, "desconocido")
	assert.ErrorIs(t, err, core.ErrUnknownState)
	stored, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PagoReembolsado, stored.EstadoPago)
	assert.Equal(t, core.EstadoPendiente, stored.Estado)
}

func TestMemoryStore_ListFilter(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	a, _ := s.CreateOrder(ctx, sampleOrder())
	b, _ := s.CreateOrder(ctx, sampleOrder())
	_, err := s.UpdateEstado(ctx, a.ID, core.EstadoPendiente, core.EstadoConfirmado)
	require.NoError(t, err)
	_, err = s.UpdateEstadoPago(ctx, b.ID, core.PagoPagado)
	require.NoError(t, err)

	all, err := s.ListOrders(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest first")

	confirmed, _ := s.ListOrders(ctx, store.ListFilter{Estado: core.EstadoConfirmado})
	require.Len(t, confirmed, 1)
	assert.Equal(t, a.ID, confirmed[0].ID)

	paid, _ := s.ListOrders(ctx, store.ListFilter{EstadoPago: core.PagoPagado})
	require.Len(t, paid, 1)
	assert.Equal(t, b.ID, paid[0].ID)
}

func TestMemoryStore_ReferenceData(t *testing.T) {
	s := store.NewMemoryStore()
	pm, err := s.ListPaymentMethods(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, pm)
	sm, err := s.ListShippingMethods(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sm)
}
