package store_test

import (
	"context"
	"os"
	"testing"

	"commerce-engine/internal/core"
	"commerce-engine/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)

	schema, err := os.ReadFile("../../migrations/001_pedidos.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "TRUNCATE TABLE pedido_items, pedidos, pedido_sequences CASCADE")
	require.NoError(t, err)

	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	o, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	assert.Regexp(t, `^PED-\d{4}-00001$`, o.NumeroPedido)
	require.Len(t, o.Items, 1)
	assert.True(t, o.TotalConsistent())

	o, err = s.UpdateEstado(ctx, o.ID, core.EstadoPendiente, core.EstadoConfirmado)
	require.NoError(t, err)
	assert.Equal(t, core.EstadoConfirmado, o.Estado)

	_, err = s.UpdateEstado(ctx, o.ID, core.EstadoPendiente, core.EstadoCancelado)
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.UpdateEstado(ctx, "missing", core.EstadoPendiente, core.EstadoConfirmado)
	assert.ErrorIs(t, err, store.ErrNotFound)

	o, err = s.UpdateEstadoPago(ctx, o.ID, core.PagoPagado)
	require.NoError(t, err)
	assert.Equal(t, core.PagoPagado, o.EstadoPago)

	list, err := s.ListOrders(ctx, store.ListFilter{EstadoPago: core.PagoPagado})
	require.NoError(t, err)
	require.Len(t, list, 1)

	pm, err := s.ListPaymentMethods(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, pm)
}

func TestPostgresStore_NumeroPedidoIsGapless(t *testing.T) {
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	bad := sampleOrder()
	bad.Cliente = core.ClienteRef{}
	_, err := s.CreateOrder(ctx, bad)
	require.Error(t, err)

	first, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	second, err := s.CreateOrder(ctx, sampleOrder())
	require.NoError(t, err)
	assert.Regexp(t, `-00001$`, first.NumeroPedido)
	assert.Regexp(t, `-00002$`, second.NumeroPedido)
}
