package web

import (
	"fmt"
	"net/http"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func orderID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// writeOrder writes an OrderResult or maps the error.
func writeOrder(w http.ResponseWriter, r *http.Request, res *app.OrderResult, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiListOrders handles GET /api/pedidos?estado=&estado_pago=.
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ListOrders(r.Context(), app.ListOrdersRequest{
		Estado:     q.Get("estado"),
		EstadoPago: q.Get("estado_pago"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Orders)
}

// apiGetOrder handles GET /api/pedidos/{id}. It opens a view when none exists.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetOrder(r.Context(), orderID(r))
	writeOrder(w, r, res, err)
}

// apiCloseOrder handles DELETE /api/pedidos/{id}/vista.
func (h *Handler) apiCloseOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseOrder(r.Context(), orderID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiAllowedTransitions handles GET /api/pedidos/{id}/transiciones.
func (h *Handler) apiAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetOrder(r.Context(), orderID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Estado  core.OrderState   `json:"estado"`
		Allowed []core.OrderState `json:"allowed_transitions"`
	}
	allowed := res.Allowed
	if allowed == nil {
		allowed = []core.OrderState{}
	}
	writeJSON(w, response{Estado: res.Order.Estado, Allowed: allowed})
}

// apiTransition handles PUT /api/pedidos/{id}/estado.
// Body: { nuevo_estado, actor? }
func (h *Handler) apiTransition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NuevoEstado string `json:"nuevo_estado"`
		Actor       string `json:"actor"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	target, err := core.ParseOrderState(body.NuevoEstado)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.RequestTransition(r.Context(), app.TransitionRequest{
		OrderID: orderID(r),
		Target:  target,
		Actor:   body.Actor,
	})
	writeOrder(w, r, res, err)
}

// apiPaymentStatus handles PUT /api/pedidos/{id}/estado-pago.
// Body: { estado_pago, actor? }
func (h *Handler) apiPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EstadoPago string `json:"estado_pago"`
		Actor      string `json:"actor"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	status, err := core.ParsePaymentState(body.EstadoPago)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.SetPaymentStatus(r.Context(), app.PaymentStatusRequest{
		OrderID: orderID(r),
		Status:  status,
		Actor:   body.Actor,
	})
	writeOrder(w, r, res, err)
}

// apiCreateOrder handles POST /api/pedidos.
// Body: { cliente: {persona_id | organizacion_id}, items: [{product_ref, descripcion?, unit_price, quantity,
// line_discount_pct?}], metodo_pago_ref?, metodo_envio_ref?, direccion_envio?, notas?, descuento?, impuestos? }
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cliente core.ClienteRef `json:"cliente"`
		Items   []struct {
			ProductRef      string `json:"product_ref"`
			Descripcion     string `json:"descripcion"`
			UnitPrice       string `json:"unit_price"`
			Quantity        string `json:"quantity"`
			LineDiscountPct string `json:"line_discount_pct"`
		} `json:"items"`
		MetodoPagoRef  string `json:"metodo_pago_ref"`
		MetodoEnvioRef string `json:"metodo_envio_ref"`
		DireccionEnvio string `json:"direccion_envio"`
		Notas          string `json:"notas"`
		Descuento      string `json:"descuento"`
		Impuestos      string `json:"impuestos"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	req := app.CreateOrderRequest{
		Cliente:        body.Cliente,
		MetodoPagoRef:  body.MetodoPagoRef,
		MetodoEnvioRef: body.MetodoEnvioRef,
		DireccionEnvio: body.DireccionEnvio,
		Notas:          body.Notas,
	}
	for i, l := range body.Items {
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			writeError(w, r, fmt.Sprintf("item %d: invalid unit_price", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			writeError(w, r, fmt.Sprintf("item %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		pct, err := parseOptionalDecimal(l.LineDiscountPct)
		if err != nil {
			writeError(w, r, fmt.Sprintf("item %d: invalid line_discount_pct", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Items = append(req.Items, core.OrderLineInput{
			ProductRef:      l.ProductRef,
			Descripcion:     l.Descripcion,
			UnitPrice:       price,
			Quantity:        qty,
			LineDiscountPct: pct.Decimal,
		})
	}
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{{"descuento", body.Descuento, &req.Descuento}, {"impuestos", body.Impuestos, &req.Impuestos}} {
		v, err := parseOptionalDecimal(f.raw)
		if err != nil {
			writeError(w, r, "invalid "+f.name, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		*f.dst = v.Decimal
	}

	res, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// apiPaymentMethods handles GET /api/metodos-pago.
func (h *Handler) apiPaymentMethods(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListPaymentMethods(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiShippingMethods handles GET /api/metodos-envio.
func (h *Handler) apiShippingMethods(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListShippingMethods(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
