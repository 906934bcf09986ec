package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the way a POS sale is paid.
type PaymentMethod string

const (
	MethodEfectivo PaymentMethod = "efectivo"
	MethodTarjeta  PaymentMethod = "tarjeta"
	MethodQR       PaymentMethod = "qr"
	MethodCuenta   PaymentMethod = "cuenta"
)

// ParsePaymentMethod validates a method name.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodEfectivo, MethodTarjeta, MethodQR, MethodCuenta:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// IsCash reports whether the method takes physical cash and gives change.
func (m PaymentMethod) IsCash() bool { return m == MethodEfectivo }

// Payment is what the cashier offers at charge time.
// CashReceived is only read for cash; Reference only for the other methods.
type Payment struct {
	Method       PaymentMethod       `json:"method"`
	CashReceived decimal.NullDecimal `json:"cash_received"`
	Reference    string              `json:"reference,omitempty"`
}

// TenderResult is the outcome of offering a payment against a total.
// Change is set only for accepted cash payments.
type TenderResult struct {
	Accepted bool                `json:"accepted"`
	Change   decimal.NullDecimal `json:"change"`
}

// Tender checks a payment against total.
//
// Cash is accepted iff the cash received covers the total, with change equal to
// the difference. A short payment returns Accepted=false and an
// *InsufficientCashError; the caller keeps collecting input. Card, QR and
// account payments are accepted as-is and never produce change.
func Tender(p Payment, total decimal.Decimal) (TenderResult, error) {
	switch p.Method {
	case MethodEfectivo:
		received := decimal.Zero
		if p.CashReceived.Valid {
			received = p.CashReceived.Decimal
		}
		if received.LessThan(total) {
			return TenderResult{}, &InsufficientCashError{
				Total:     FormatMoney(total),
				Received:  FormatMoney(received),
				Shortfall: FormatMoney(total.Sub(received)),
			}
		}
		return TenderResult{
			Accepted: true,
			Change:   decimal.NewNullDecimal(received.Sub(total)),
		}, nil
	case MethodTarjeta, MethodQR, MethodCuenta:
		return TenderResult{Accepted: true}, nil
	}
	return TenderResult{}, fmt.Errorf("%w: %q", ErrUnknownMethod, p.Method)
}
