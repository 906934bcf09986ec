package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce-engine/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists orders in the pedidos tables (migrations/001_pedidos.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectPedido = `
	SELECT id, numero_pedido, estado, estado_pago,
	       subtotal, descuento, impuestos, total,
	       COALESCE(persona_id, ''), COALESCE(organizacion_id, ''),
	       COALESCE(metodo_pago_ref, ''), COALESCE(metodo_envio_ref, ''),
	       direccion_envio, notas, created_at, updated_at
	FROM pedidos
`

func scanPedido(row pgx.Row, o *core.Order) error {
	return row.Scan(
		&o.ID, &o.NumeroPedido, &o.Estado, &o.EstadoPago,
		&o.Subtotal, &o.Descuento, &o.Impuestos, &o.Total,
		&o.Cliente.PersonaID, &o.Cliente.OrganizacionID,
		&o.MetodoPagoRef, &o.MetodoEnvioRef,
		&o.DireccionEnvio, &o.Notas, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	return getPedido(ctx, s.pool, id)
}

func getPedido(ctx context.Context, q pgxQuerier, id string) (*core.Order, error) {
	var o core.Order
	if err := scanPedido(q.QueryRow(ctx, selectPedido+" WHERE id = $1", id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch pedido %s: %w", id, err)
	}
	items, err := fetchItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func fetchItems(ctx context.Context, q pgxQuerier, pedidoID string) ([]core.OrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT product_ref, descripcion, unit_price, quantity, line_discount_pct, line_total
		FROM pedido_items
		WHERE pedido_id = $1
		ORDER BY line_number
	`, pedidoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pedido items: %w", err)
	}
	defer rows.Close()

	items := []core.OrderLine{}
	for rows.Next() {
		var l core.OrderLine
		if err := rows.Scan(&l.ProductRef, &l.Descripcion, &l.UnitPrice, &l.Quantity, &l.LineDiscountPct, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan pedido item: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// ListOrders returns order headers without items, newest first.
func (s *PostgresStore) ListOrders(ctx context.Context, filter ListFilter) ([]core.Order, error) {
	query := selectPedido + " WHERE 1=1"
	var args []any
	if filter.Estado != "" {
		args = append(args, string(filter.Estado))
		query += fmt.Sprintf(" AND estado = $%d", len(args))
	}
	if filter.EstadoPago != "" {
		args = append(args, string(filter.EstadoPago))
		query += fmt.Sprintf(" AND estado_pago = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, numero_pedido DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pedidos: %w", err)
	}
	defer rows.Close()

	orders := []core.Order{}
	for rows.Next() {
		var o core.Order
		if err := scanPedido(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan pedido: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateEstado writes the new state only if the row is still in from.
func (s *PostgresStore) UpdateEstado(ctx context.Context, id string, from, to core.OrderState) (*core.Order, error) {
	if !core.CanTransition(from, to) {
		return nil, &core.TransitionError{From: from, To: to}
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE pedidos SET estado = $1, updated_at = NOW() WHERE id = $2 AND estado = $3",
		string(to), id, string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update estado of pedido %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		var current core.OrderState
		err := tx.QueryRow(ctx, "SELECT estado FROM pedidos WHERE id = $1", id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read estado of pedido %s: %w", id, err)
		}
		return nil, checkTransition(current, from, to)
	}

	o, err := getPedido(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit estado update: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) UpdateEstadoPago(ctx context.Context, id string, to core.PaymentState) (*core.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: estado_pago %q", core.ErrUnknownState, to)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE pedidos SET estado_pago = $1, updated_at = NOW() WHERE id = $2",
		string(to), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update estado_pago of pedido %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.GetOrder(ctx, id)
}

// CreateOrder inserts the order and its items and assigns the next numero_pedido
// for the current year from pedido_sequences, all in one transaction.
func (s *PostgresStore) CreateOrder(ctx context.Context, req NewOrder) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	year := time.Now().Year()
	var n int64
	err = tx.QueryRow(ctx, `
		INSERT INTO pedido_sequences (anio, last_number)
		VALUES ($1, 1)
		ON CONFLICT (anio) DO UPDATE SET last_number = pedido_sequences.last_number + 1
		RETURNING last_number
	`, year).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("failed to generate numero_pedido: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO pedidos (id, numero_pedido, estado, estado_pago,
		                     subtotal, descuento, impuestos, total,
		                     persona_id, organizacion_id, metodo_pago_ref, metodo_envio_ref,
		                     direccion_envio, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		        NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $14)
	`, id, formatNumeroPedido(year, n), string(core.InitialOrderState), string(core.PagoPendiente),
		req.Subtotal, req.Descuento, req.Impuestos, req.Total,
		req.Cliente.PersonaID, req.Cliente.OrganizacionID, req.MetodoPagoRef, req.MetodoEnvioRef,
		req.DireccionEnvio, req.Notas,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert pedido: %w", err)
	}

	for i, l := range req.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO pedido_items (pedido_id, line_number, product_ref, descripcion,
			                          unit_price, quantity, line_discount_pct, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, i+1, l.ProductRef, l.Descripcion, l.UnitPrice, l.Quantity, l.LineDiscountPct, l.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert pedido item %d: %w", i+1, err)
		}
	}

	o, err := getPedido(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit pedido: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) ListPaymentMethods(ctx context.Context) ([]core.PaymentMethodOption, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, label, type, fee FROM metodos_pago ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query metodos_pago: %w", err)
	}
	defer rows.Close()

	var out []core.PaymentMethodOption
	for rows.Next() {
		var m core.PaymentMethodOption
		if err := rows.Scan(&m.ID, &m.Label, &m.Type, &m.Fee); err != nil {
			return nil, fmt.Errorf("failed to scan metodo_pago: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListShippingMethods(ctx context.Context) ([]core.ShippingMethod, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, label, type, price FROM metodos_envio ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query metodos_envio: %w", err)
	}
	defer rows.Close()

	var out []core.ShippingMethod
	for rows.Next() {
		var m core.ShippingMethod
		if err := rows.Scan(&m.ID, &m.Label, &m.Type, &m.Price); err != nil {
			return nil, fmt.Errorf("failed to scan metodo_envio: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
