package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"commerce-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	// MaxBodyBytes caps JSON request bodies; zero means 1 MB.
	MaxBodyBytes int64
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc     app.ApplicationService
	router  chi.Router
	limiter *rateLimiter
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	h := &Handler{
		svc:     svc,
		limiter: newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RequestBodyLimit(opts.MaxBodyBytes))

	r.Get("/api/health", h.health)

	// ── POS terminals ─────────────────────────────────────────────────────────
	r.Route("/api/terminals/{tid}", func(r chi.Router) {
		r.Use(h.limiter.Limit)

		r.Post("/", h.apiOpenTerminal)
		r.Delete("/", h.apiCloseTerminal)

		r.Get("/cart", h.apiGetCart)
		r.Post("/cart/items", h.apiAddItem)
		r.Put("/cart/items/{line}/select", h.apiSelectLine)
		r.Delete("/cart/items/{line}", h.apiRemoveLine)
		r.Put("/cart/discount", h.apiSetDiscount)
		r.Put("/cart/customer", h.apiSetCustomer)
		r.Post("/cart/clear", h.apiNewSale)

		r.Post("/entry/mode", h.apiEntryMode)
		r.Post("/entry/keys", h.apiEntryKeys)
		r.Post("/entry/commit", h.apiEntryCommit)

		r.Post("/charge", h.apiCharge)
		r.Get("/receipts", h.apiListReceipts)
		r.Get("/receipts/{n}", h.apiGetReceipt)
		r.Get("/receipts/{n}/pdf", h.apiReceiptPDF)
	})

	// ── Orders ────────────────────────────────────────────────────────────────
	r.Route("/api/pedidos", func(r chi.Router) {
		r.Use(h.limiter.Limit)

		r.Get("/", h.apiListOrders)
		r.Post("/", h.apiCreateOrder)
		r.Get("/{id}", h.apiGetOrder)
		r.Delete("/{id}/vista", h.apiCloseOrder)
		r.Get("/{id}/transiciones", h.apiAllowedTransitions)
		r.Put("/{id}/estado", h.apiTransition)
		r.Put("/{id}/estado-pago", h.apiPaymentStatus)
	})

	r.Get("/api/metodos-pago", h.apiPaymentMethods)
	r.Get("/api/metodos-envio", h.apiShippingMethods)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
