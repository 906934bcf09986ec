package web

import (
	"fmt"
	"net/http"
	"strconv"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func terminalID(r *http.Request) string {
	return chi.URLParam(r, "tid")
}

// parseOptionalDecimal parses s, treating an empty string as absent.
func parseOptionalDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func lineParam(w http.ResponseWriter, r *http.Request) (core.LineID, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || n <= 0 {
		writeError(w, r, "invalid line id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return core.LineID(n), true
}

func ticketParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "n"), 10, 64)
	if err != nil || n <= 0 {
		writeError(w, r, "invalid ticket number", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// writeCart writes a CartResult or maps the error.
func writeCart(w http.ResponseWriter, r *http.Request, res *app.CartResult, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiOpenTerminal handles POST /api/terminals/{tid}.
func (h *Handler) apiOpenTerminal(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.OpenTerminal(r.Context(), terminalID(r))
	writeCart(w, r, res, err)
}

// apiCloseTerminal handles DELETE /api/terminals/{tid}.
func (h *Handler) apiCloseTerminal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseTerminal(r.Context(), terminalID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiGetCart handles GET /api/terminals/{tid}/cart.
func (h *Handler) apiGetCart(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetCart(r.Context(), terminalID(r))
	writeCart(w, r, res, err)
}

// apiAddItem handles POST /api/terminals/{tid}/cart/items.
// Body: { product_ref, name, unit_price, quantity? }
func (h *Handler) apiAddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductRef string `json:"product_ref"`
		Name       string `json:"name"`
		UnitPrice  string `json:"unit_price"`
		Quantity   string `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ProductRef == "" {
		writeError(w, r, "product_ref is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	price, err := decimal.NewFromString(body.UnitPrice)
	if err != nil {
		writeError(w, r, "invalid unit_price", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	qty, err := parseOptionalDecimal(body.Quantity)
	if err != nil {
		writeError(w, r, "invalid quantity", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.AddItem(r.Context(), app.AddItemRequest{
		TerminalID: terminalID(r),
		Product:    core.Product{Ref: body.ProductRef, Name: body.Name, UnitPrice: price},
		Quantity:   qty.Decimal,
	})
	writeCart(w, r, res, err)
}

// apiSelectLine handles PUT /api/terminals/{tid}/cart/items/{line}/select.
func (h *Handler) apiSelectLine(w http.ResponseWriter, r *http.Request) {
	line, ok := lineParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.SelectLine(r.Context(), terminalID(r), line)
	writeCart(w, r, res, err)
}

// apiRemoveLine handles DELETE /api/terminals/{tid}/cart/items/{line}.
func (h *Handler) apiRemoveLine(w http.ResponseWriter, r *http.Request) {
	line, ok := lineParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.RemoveLine(r.Context(), terminalID(r), line)
	writeCart(w, r, res, err)
}

// apiSetDiscount handles PUT /api/terminals/{tid}/cart/discount.
// Body: { pct }. Values outside 0..100 are clamped.
func (h *Handler) apiSetDiscount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pct string `json:"pct"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	pct, err := decimal.NewFromString(body.Pct)
	if err != nil {
		writeError(w, r, "invalid pct", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.SetGlobalDiscount(r.Context(), terminalID(r), pct)
	writeCart(w, r, res, err)
}

// apiSetCustomer handles PUT /api/terminals/{tid}/cart/customer.
func (h *Handler) apiSetCustomer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Label string `json:"label"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.svc.SetCustomerLabel(r.Context(), terminalID(r), body.Label)
	writeCart(w, r, res, err)
}

// apiNewSale handles POST /api/terminals/{tid}/cart/clear.
func (h *Handler) apiNewSale(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.NewSale(r.Context(), terminalID(r))
	writeCart(w, r, res, err)
}

// apiEntryMode handles POST /api/terminals/{tid}/entry/mode. Body: { mode }.
func (h *Handler) apiEntryMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	mode, err := core.ParseEntryMode(body.Mode)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.SetEntryMode(r.Context(), terminalID(r), mode)
	writeCart(w, r, res, err)
}

// apiEntryKeys handles POST /api/terminals/{tid}/entry/keys. Body: { keys }.
func (h *Handler) apiEntryKeys(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keys string `json:"keys"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.svc.PressKeys(r.Context(), terminalID(r), body.Keys)
	writeCart(w, r, res, err)
}

// apiEntryCommit handles POST /api/terminals/{tid}/entry/commit.
func (h *Handler) apiEntryCommit(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CommitEntry(r.Context(), terminalID(r))
	writeCart(w, r, res, err)
}

// apiCharge handles POST /api/terminals/{tid}/charge.
// Body: { method, cash_received?, reference? }
func (h *Handler) apiCharge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method       string `json:"method"`
		CashReceived string `json:"cash_received"`
		Reference    string `json:"reference"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	method, err := core.ParsePaymentMethod(body.Method)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	cash, err := parseOptionalDecimal(body.CashReceived)
	if err != nil {
		writeError(w, r, "invalid cash_received", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Charge(r.Context(), app.ChargeRequest{
		TerminalID:   terminalID(r),
		Method:       method,
		CashReceived: cash,
		Reference:    body.Reference,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// apiListReceipts handles GET /api/terminals/{tid}/receipts.
func (h *Handler) apiListReceipts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListReceipts(r.Context(), terminalID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiGetReceipt handles GET /api/terminals/{tid}/receipts/{n}.
func (h *Handler) apiGetReceipt(w http.ResponseWriter, r *http.Request) {
	n, ok := ticketParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetReceipt(r.Context(), terminalID(r), n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiReceiptPDF handles GET /api/terminals/{tid}/receipts/{n}/pdf.
func (h *Handler) apiReceiptPDF(w http.ResponseWriter, r *http.Request) {
	n, ok := ticketParam(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.ReceiptPDF(r.Context(), terminalID(r), n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.FileName))
	_, _ = w.Write(doc.Data)
}
