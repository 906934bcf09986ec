package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"commerce-engine/internal/core"
)

// HTTPStore talks to the remote order service over its JSON API.
// Calls are never retried here; the caller decides whether to offer a retry.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore returns a client for baseURL, e.g. https://orders.internal/api.
func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type estadoRequest struct {
	NuevoEstado core.OrderState `json:"nuevo_estado"`
}

type estadoPagoRequest struct {
	EstadoPago core.PaymentState `json:"estado_pago"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *HTTPStore) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	var o core.Order
	if err := s.do(ctx, "get order", http.MethodGet, "/pedidos/"+url.PathEscape(id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *HTTPStore) ListOrders(ctx context.Context, filter ListFilter) ([]core.Order, error) {
	q := url.Values{}
	if filter.Estado != "" {
		q.Set("estado", string(filter.Estado))
	}
	if filter.EstadoPago != "" {
		q.Set("estado_pago", string(filter.EstadoPago))
	}
	path := "/pedidos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var orders []core.Order
	if err := s.do(ctx, "list orders", http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateEstado sends the target state only; the remote service enforces the
// current state itself. from is checked locally so an illegal edge never leaves the process.
func (s *HTTPStore) UpdateEstado(ctx context.Context, id string, from, to core.OrderState) (*core.Order, error) {
	if !core.CanTransition(from, to) {
		return nil, &core.TransitionError{From: from, To: to}
	}
	var o core.Order
	err := s.do(ctx, "update estado", http.MethodPut, "/pedidos/"+url.PathEscape(id)+"/estado", estadoRequest{NuevoEstado: to}, &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *HTTPStore) UpdateEstadoPago(ctx context.Context, id string, to core.PaymentState) (*core.Order, error) {
	var o core.Order
	err := s.do(ctx, "update estado_pago", http.MethodPut, "/pedidos/"+url.PathEscape(id)+"/estado-pago", estadoPagoRequest{EstadoPago: to}, &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *HTTPStore) CreateOrder(ctx context.Context, req NewOrder) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var o core.Order
	if err := s.do(ctx, "create order", http.MethodPost, "/pedidos", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *HTTPStore) ListPaymentMethods(ctx context.Context) ([]core.PaymentMethodOption, error) {
	var out []core.PaymentMethodOption
	if err := s.do(ctx, "list payment methods", http.MethodGet, "/metodos-pago", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPStore) ListShippingMethods(ctx context.Context) ([]core.ShippingMethod, error) {
	var out []core.ShippingMethod
	if err := s.do(ctx, "list shipping methods", http.MethodGet, "/metodos-envio", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPStore) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StoreError{Op: op, Status: resp.StatusCode, Err: decodeRemoteError(resp)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &StoreError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// decodeRemoteError maps a non-2xx body to an error, keeping the sentinel
// errors callers branch on.
func decodeRemoteError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case eb.Code == "ILLEGAL_TRANSITION":
		return fmt.Errorf("%w: %s", core.ErrIllegalTransition, msg)
	}
	return errors.New(msg)
}
