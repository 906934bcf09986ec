package core_test

import (
	"errors"
	"testing"

	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	yerba  = core.Product{Ref: "P001", Name: "Yerba 1kg", UnitPrice: dec("100")}
	queso  = core.Product{Ref: "P002", Name: "Queso x kg", UnitPrice: dec("12.50")}
	galles = core.Product{Ref: "P003", Name: "Galletitas", UnitPrice: dec("3.33")}
)

func TestCart_AddItemMergesByProduct(t *testing.T) {
	c := core.NewCart()
	first := c.AddItem(yerba, dec("1"))
	c.AddItem(queso, dec("0.750"))
	again := c.AddItem(yerba, dec("2"))

	if first != again {
		t.Fatalf("expected re-add to reuse line %d, got %d", first, again)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", c.Len())
	}
	line, _ := c.Line(first)
	if !line.Quantity.Equal(dec("3")) {
		t.Errorf("expected quantity 3, got %s", line.Quantity)
	}
	if sel, ok := c.Selected(); !ok || sel != first {
		t.Errorf("expected merged line %d to be selected, got %d (ok=%v)", first, sel, ok)
	}
}

func TestCart_AddItemDefaultsQuantity(t *testing.T) {
	c := core.NewCart()
	id := c.AddItem(yerba, decimal.Zero)
	line, _ := c.Line(id)
	if !line.Quantity.Equal(dec("1")) {
		t.Errorf("expected default quantity 1, got %s", line.Quantity)
	}
	if !line.LineDiscountPct.IsZero() {
		t.Errorf("new line must start without discount, got %s", line.LineDiscountPct)
	}
}

func TestCart_SetLineQuantity(t *testing.T) {
	c := core.NewCart()
	id := c.AddItem(queso, dec("1"))

	for _, bad := range []string{"0", "-1"} {
		if err := c.SetLineQuantity(id, dec(bad)); !errors.Is(err, core.ErrInvalidQuantity) {
			t.Errorf("qty %s: expected ErrInvalidQuantity, got %v", bad, err)
		}
	}
	line, _ := c.Line(id)
	if !line.Quantity.Equal(dec("1")) {
		t.Errorf("rejected update must keep quantity 1, got %s", line.Quantity)
	}

	if err := c.SetLineQuantity(id, dec("0.345")); err != nil {
		t.Fatalf("SetLineQuantity failed: %v", err)
	}
	line, _ = c.Line(id)
	if !line.Quantity.Equal(dec("0.345")) {
		t.Errorf("expected 0.345, got %s", line.Quantity)
	}

	if err := c.SetLineQuantity(99, dec("1")); !errors.Is(err, core.ErrLineNotFound) {
		t.Errorf("expected ErrLineNotFound, got %v", err)
	}
}

func TestCart_DiscountsAreClamped(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"-5", "0"},
		{"0", "0"},
		{"12.5", "12.5"},
		{"100", "100"},
		{"150", "100"},
	}
	for _, tt := range tests {
		c := core.NewCart()
		id := c.AddItem(yerba, dec("1"))
		if err := c.SetLineDiscount(id, dec(tt.in)); err != nil {
			t.Fatalf("SetLineDiscount(%s) failed: %v", tt.in, err)
		}
		line, _ := c.Line(id)
		if !line.LineDiscountPct.Equal(dec(tt.want)) {
			t.Errorf("line discount %s: expected %s, got %s", tt.in, tt.want, line.LineDiscountPct)
		}
		c.SetGlobalDiscount(dec(tt.in))
		if !c.GlobalDiscountPct().Equal(dec(tt.want)) {
			t.Errorf("global discount %s: expected %s, got %s", tt.in, tt.want, c.GlobalDiscountPct())
		}
	}
}

func TestCart_RemoveSelectedClearsSelection(t *testing.T) {
	c := core.NewCart()
	a := c.AddItem(yerba, dec("1"))
	b := c.AddItem(queso, dec("1"))

	if err := c.RemoveItem(a); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if sel, _ := c.Selected(); sel != b {
		t.Errorf("removing an unselected line must keep selection %d, got %d", b, sel)
	}
	if err := c.RemoveItem(b); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok := c.Selected(); ok {
		t.Error("expected selection to be unset after removing the selected line")
	}
	if err := c.RemoveItem(b); !errors.Is(err, core.ErrLineNotFound) {
		t.Errorf("expected ErrLineNotFound on second removal, got %v", err)
	}
}

func TestCart_Clear(t *testing.T) {
	c := core.NewCart()
	c.AddItem(yerba, dec("2"))
	c.SetGlobalDiscount(dec("10"))
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cart, got %d lines", c.Len())
	}
	if _, ok := c.Selected(); ok {
		t.Error("expected no selection after Clear")
	}
	if !c.GlobalDiscountPct().IsZero() {
		t.Errorf("expected global discount reset, got %s", c.GlobalDiscountPct())
	}
}

func TestCart_ItemsIsACopy(t *testing.T) {
	c := core.NewCart()
	id := c.AddItem(yerba, dec("1"))
	items := c.Items()
	items[0].Quantity = dec("50")

	line, _ := c.Line(id)
	if !line.Quantity.Equal(dec("1")) {
		t.Errorf("mutating Items() leaked into the cart: quantity %s", line.Quantity)
	}
}
