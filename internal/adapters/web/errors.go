package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"
	"commerce-engine/internal/store"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, r, status, errorResponse{Error: message, Code: code})
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with the given status.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorMapping maps domain and store errors to HTTP status and code, checked in order.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{app.ErrTerminalNotOpen, http.StatusNotFound, "TERMINAL_NOT_OPEN"},
	{app.ErrReceiptNotFound, http.StatusNotFound, "RECEIPT_NOT_FOUND"},
	{app.ErrTransitionInFlight, http.StatusConflict, "TRANSITION_IN_FLIGHT"},
	{store.ErrNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
	{store.ErrConflict, http.StatusConflict, "ORDER_CONFLICT"},
	{core.ErrIllegalTransition, http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION"},
	{core.ErrInsufficientCash, http.StatusUnprocessableEntity, "INSUFFICIENT_CASH"},
	{core.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
	{core.ErrInvalidCliente, http.StatusBadRequest, "INVALID_CLIENTE"},
	{core.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
	{core.ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE"},
	{core.ErrLineNotFound, http.StatusNotFound, "LINE_NOT_FOUND"},
	{core.ErrMalformedEntry, http.StatusBadRequest, "MALFORMED_ENTRY"},
	{core.ErrUnknownState, http.StatusBadRequest, "UNKNOWN_STATE"},
	{core.ErrUnknownMethod, http.StatusBadRequest, "UNKNOWN_METHOD"},
}

// writeServiceError maps an ApplicationService error onto the JSON envelope.
// Store failures that are worth retrying are reported as 502 with retryable set.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			writeError(w, r, err.Error(), m.code, m.status)
			return
		}
	}
	var se *store.StoreError
	if errors.As(err, &se) {
		log.Printf("store error [%s]: %v", requestIDFromContext(r.Context()), err)
		writeErrorBody(w, r, http.StatusBadGateway, errorResponse{
			Error:     err.Error(),
			Code:      "STORE_UNAVAILABLE",
			Retryable: se.Retryable(),
		})
		return
	}
	writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
}
