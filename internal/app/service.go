package app

import (
	"context"
	"errors"

	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

var (
	ErrTerminalNotOpen = errors.New("terminal is not open")
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrTransitionInFlight rejects a second write for an order whose previous
	// write has not come back yet.
	ErrTransitionInFlight = errors.New("a change for this order is already in progress")
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// OpenTerminal starts a POS session for terminalID, or returns the open one.
	OpenTerminal(ctx context.Context, terminalID string) (*CartResult, error)

	// CloseTerminal discards the session, its live cart and its receipt history.
	CloseTerminal(ctx context.Context, terminalID string) error

	GetCart(ctx context.Context, terminalID string) (*CartResult, error)

	// AddItem adds a product to the live cart, merging into an existing line for
	// the same product, and selects that line.
	AddItem(ctx context.Context, req AddItemRequest) (*CartResult, error)

	SelectLine(ctx context.Context, terminalID string, line core.LineID) (*CartResult, error)
	RemoveLine(ctx context.Context, terminalID string, line core.LineID) (*CartResult, error)
	SetGlobalDiscount(ctx context.Context, terminalID string, pct decimal.Decimal) (*CartResult, error)
	SetCustomerLabel(ctx context.Context, terminalID, label string) (*CartResult, error)

	// NewSale abandons the live sale without issuing a receipt.
	NewSale(ctx context.Context, terminalID string) (*CartResult, error)

	// SetEntryMode switches the keypad target and clears pending digits.
	SetEntryMode(ctx context.Context, terminalID string, mode core.EntryMode) (*CartResult, error)

	// PressKeys feeds keypad input. Digits and '.' append, KeyBackspace deletes,
	// KeyClear empties the buffer. Other characters are ignored.
	PressKeys(ctx context.Context, terminalID, keys string) (*CartResult, error)

	// CommitEntry applies the keypad buffer. CartResult.Applied reports whether anything changed.
	CommitEntry(ctx context.Context, terminalID string) (*CartResult, error)

	// Charge tenders the live cart. On success the receipt is issued, exported
	// and a new sale begins; on failure nothing changes.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	ListReceipts(ctx context.Context, terminalID string) (*ReceiptListResult, error)
	GetReceipt(ctx context.Context, terminalID string, ticket int64) (*core.Receipt, error)

	// ReceiptPDF renders an issued receipt as PDF with a QR code.
	ReceiptPDF(ctx context.Context, terminalID string, ticket int64) (*DocumentResult, error)

	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error)

	// OpenOrder loads an order into a view. Later actions act on the view's last
	// confirmed state.
	OpenOrder(ctx context.Context, orderID string) (*OrderResult, error)

	// CloseOrder drops the view; a write still in flight for it will not update any view.
	CloseOrder(ctx context.Context, orderID string) error

	// GetOrder returns the view's confirmed state, opening it if needed.
	GetOrder(ctx context.Context, orderID string) (*OrderResult, error)

	// RequestTransition checks the lifecycle graph, persists the new estado and
	// updates the view only once the store confirms it.
	RequestTransition(ctx context.Context, req TransitionRequest) (*OrderResult, error)

	// SetPaymentStatus records estado_pago. Setting the current value is a no-op
	// with no store write and no audit entry.
	SetPaymentStatus(ctx context.Context, req PaymentStatusRequest) (*OrderResult, error)

	// CreateOrder prices the lines, derives the total and stores a new pendiente order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	ListPaymentMethods(ctx context.Context) ([]core.PaymentMethodOption, error)
	ListShippingMethods(ctx context.Context) ([]core.ShippingMethod, error)
}

// Keypad control characters understood by PressKeys.
const (
	KeyBackspace = '<'
	KeyClear     = 'C'
)
