package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EntryMode selects what a committed keypad entry is applied to.
type EntryMode string

const (
	EntryQuantity EntryMode = "quantity"
	EntryDiscount EntryMode = "discount"
	EntryCash     EntryMode = "cash"
)

// ParseEntryMode accepts the mode names plus the short forms used on the keypad.
func ParseEntryMode(s string) (EntryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quantity", "qty", "cantidad":
		return EntryQuantity, nil
	case "discount", "disc", "descuento":
		return EntryDiscount, nil
	case "cash", "efectivo":
		return EntryCash, nil
	}
	return "", fmt.Errorf("unknown entry mode %q", s)
}

// EntryBuffer captures keypad input for the terminal.
// Switching modes always drops pending digits so they are never applied to the wrong target.
type EntryBuffer struct {
	mode   EntryMode
	digits string
}

// NewEntryBuffer returns a buffer in quantity mode.
func NewEntryBuffer() *EntryBuffer {
	return &EntryBuffer{mode: EntryQuantity}
}

func (b *EntryBuffer) Mode() EntryMode { return b.mode }
func (b *EntryBuffer) Digits() string  { return b.digits }

// SetMode switches the mode and clears the buffer.
func (b *EntryBuffer) SetMode(m EntryMode) {
	b.mode = m
	b.digits = ""
}

// PressDigit appends 0-9 or a single decimal point. Anything else, or a second
// point, is ignored. It reports whether the key was accepted.
func (b *EntryBuffer) PressDigit(d rune) bool {
	switch {
	case d >= '0' && d <= '9':
	case d == '.':
		if strings.ContainsRune(b.digits, '.') {
			return false
		}
	default:
		return false
	}
	b.digits += string(d)
	return true
}

// PressBackspace removes the last character.
func (b *EntryBuffer) PressBackspace() {
	if b.digits != "" {
		b.digits = b.digits[:len(b.digits)-1]
	}
}

// PressClear empties the buffer.
func (b *EntryBuffer) PressClear() {
	b.digits = ""
}

// Reset clears the buffer and returns to quantity mode, as at the start of a sale.
func (b *EntryBuffer) Reset() {
	b.SetMode(EntryQuantity)
}

// Value parses the buffer as a decimal.
func (b *EntryBuffer) Value() (decimal.Decimal, error) {
	if b.digits == "" {
		return decimal.Zero, ErrMalformedEntry
	}
	v, err := decimal.NewFromString(b.digits)
	if err != nil {
		return decimal.Zero, ErrMalformedEntry
	}
	return v, nil
}

// Commit applies the buffer to its target and reports whether anything changed.
//
// In quantity and discount mode the target is the cart's selected line; the
// commit is a no-op without a selection, with an empty or malformed buffer, or
// (quantity mode) with a value of zero. In cash mode the value replaces
// *tendered. The buffer is cleared only when the entry was applied.
func (b *EntryBuffer) Commit(cart *Cart, tendered *decimal.NullDecimal) bool {
	v, err := b.Value()
	if err != nil {
		return false
	}
	switch b.mode {
	case EntryQuantity, EntryDiscount:
		id, ok := cart.Selected()
		if !ok {
			return false
		}
		if b.mode == EntryQuantity {
			if cart.SetLineQuantity(id, v) != nil {
				return false
			}
		} else if cart.SetLineDiscount(id, v) != nil {
			return false
		}
	case EntryCash:
		if tendered == nil {
			return false
		}
		*tendered = decimal.NewNullDecimal(v)
	default:
		return false
	}
	b.digits = ""
	return true
}
