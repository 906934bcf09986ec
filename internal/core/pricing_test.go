package core_test

import (
	"testing"

	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

func TestComputeTotals_ScenarioA(t *testing.T) {
	c := core.NewCart()
	c.AddItem(yerba, dec("2"))
	c.SetGlobalDiscount(dec("10"))

	got := core.ComputeTotals(c)
	if !got.Subtotal.Equal(dec("200")) {
		t.Errorf("expected subtotal 200, got %s", got.Subtotal)
	}
	if !got.DiscountAmount.Equal(dec("20")) {
		t.Errorf("expected discount 20, got %s", got.DiscountAmount)
	}
	if !got.Total.Equal(dec("180")) {
		t.Errorf("expected total 180, got %s", got.Total)
	}
}

func TestComputeTotals_MatchesClosedForm(t *testing.T) {
	tests := []struct {
		name      string
		lines     []core.LineItem
		globalPct string
	}{
		{"empty cart", nil, "15"},
		{"no discounts", []core.LineItem{
			{ProductRef: "a", UnitPrice: dec("3.33"), Quantity: dec("3")},
		}, "0"},
		{"line and global discount", []core.LineItem{
			{ProductRef: "a", UnitPrice: dec("100"), Quantity: dec("2"), LineDiscountPct: dec("25")},
			{ProductRef: "b", UnitPrice: dec("12.50"), Quantity: dec("0.750"), LineDiscountPct: dec("5")},
		}, "7.5"},
		{"full discount", []core.LineItem{
			{ProductRef: "a", UnitPrice: dec("19.99"), Quantity: dec("4"), LineDiscountPct: dec("100")},
		}, "50"},
		{"many small lines", manyLines(40), "33.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := core.NewCart()
			for _, l := range tt.lines {
				id := c.AddItem(core.Product{Ref: l.ProductRef, UnitPrice: l.UnitPrice}, l.Quantity)
				if err := c.SetLineDiscount(id, l.LineDiscountPct); err != nil {
					t.Fatalf("SetLineDiscount failed: %v", err)
				}
			}
			c.SetGlobalDiscount(dec(tt.globalPct))

			want := decimal.Zero
			for _, l := range tt.lines {
				want = want.Add(l.UnitPrice.Mul(l.Quantity).Mul(decimal.NewFromInt(1).Sub(l.LineDiscountPct.Div(dec("100")))))
			}
			want = want.Mul(decimal.NewFromInt(1).Sub(dec(tt.globalPct).Div(dec("100"))))

			got := core.ComputeTotals(c)
			if !got.Total.Sub(want).Abs().LessThanOrEqual(dec("0.0000001")) {
				t.Errorf("expected total %s, got %s", want, got.Total)
			}
			rounded := got.Rounded()
			if !rounded.Total.Sub(want).Abs().LessThanOrEqual(dec("0.01")) {
				t.Errorf("rounded total %s is not within a cent of %s", rounded.Total, want)
			}
			if got.Total.IsNegative() {
				t.Errorf("total must never be negative, got %s", got.Total)
			}
		})
	}
}

func manyLines(n int) []core.LineItem {
	out := make([]core.LineItem, n)
	for i := range out {
		out[i] = core.LineItem{
			ProductRef:      string(rune('A'+i%26)) + decimal.NewFromInt(int64(i)).String(),
			UnitPrice:       dec("0.37"),
			Quantity:        dec("1.125"),
			LineDiscountPct: dec("3"),
		}
	}
	return out
}

func TestComputeTotals_Idempotent(t *testing.T) {
	c := core.NewCart()
	c.AddItem(galles, dec("7"))
	c.AddItem(queso, dec("1.234"))
	c.SetGlobalDiscount(dec("12.5"))

	first := core.ComputeTotals(c)
	second := core.ComputeTotals(c)
	if !first.Subtotal.Equal(second.Subtotal) || !first.DiscountAmount.Equal(second.DiscountAmount) || !first.Total.Equal(second.Total) {
		t.Errorf("ComputeTotals is not idempotent: %+v vs %+v", first, second)
	}
	if c.Len() != 2 || !c.GlobalDiscountPct().Equal(dec("12.5")) {
		t.Error("ComputeTotals must not modify the cart")
	}
}

func TestTotals_RoundedHalfUp(t *testing.T) {
	tt := core.Totals{Subtotal: dec("10.005"), DiscountAmount: dec("1.0049"), Total: dec("9.0001")}
	r := tt.Rounded()
	if !r.Subtotal.Equal(dec("10.01")) {
		t.Errorf("expected 10.01, got %s", r.Subtotal)
	}
	if !r.DiscountAmount.Equal(dec("1.00")) {
		t.Errorf("expected 1.00, got %s", r.DiscountAmount)
	}
	if !r.Total.Equal(dec("9.01")) {
		t.Errorf("expected rounded total 9.01, got %s", r.Total)
	}
}

// The printed total is rounded subtotal minus rounded discount, so the three
// printed figures always add up even when that differs by a cent from
// rounding the exact total.
func TestTotals_RoundedTotalFollowsPrintedParts(t *testing.T) {
	c := core.NewCart()
	c.AddItem(core.Product{Ref: "P010", Name: "Queso", UnitPrice: dec("10.005")}, dec("1"))
	c.SetGlobalDiscount(dec("5"))

	exact := core.ComputeTotals(c)
	if !exact.Total.Equal(dec("9.50475")) {
		t.Fatalf("expected exact total 9.50475, got %s", exact.Total)
	}

	r := exact.Rounded()
	if !r.Subtotal.Equal(dec("10.01")) || !r.DiscountAmount.Equal(dec("0.50")) {
		t.Errorf("expected 10.01 - 0.50, got %s - %s", r.Subtotal, r.DiscountAmount)
	}
	if !r.Total.Equal(dec("9.51")) {
		t.Errorf("expected printed total 9.51, got %s", r.Total)
	}
	if core.RoundMoney(exact.Total).Equal(r.Total) {
		t.Errorf("expected the printed total to differ from the rounded exact total here")
	}
	if !r.Subtotal.Sub(r.DiscountAmount).Equal(r.Total) {
		t.Errorf("printed figures do not add up: %s - %s != %s", r.Subtotal, r.DiscountAmount, r.Total)
	}
}
