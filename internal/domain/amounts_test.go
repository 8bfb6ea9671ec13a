package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeLineAmountsWorkedExample(t *testing.T) {
	got := ComputeLineAmounts(decimal.RequireFromString("75.00"), 10, 18, 5)

	cases := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"subtotal": {got.Subtotal, "750.00"},
		"discount": {got.Discount, "37.50"},
		"tax":      {got.Tax, "128.25"},
		"total":    {got.Total, "840.75"},
	}
	for name, tc := range cases {
		if !tc.got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%s: expected %s, got %s", name, tc.want, tc.got)
		}
	}
}

func TestComputeLineAmountsRoundsEachPart(t *testing.T) {
	got := ComputeLineAmounts(decimal.RequireFromString("0.333"), 3, 7.5, 3.3)
	if !got.Total.Equal(got.Subtotal.Sub(got.Discount).Add(got.Tax)) {
		t.Fatalf("total %s does not match rounded parts", got.Total)
	}
	for _, part := range []decimal.Decimal{got.Subtotal, got.Discount, got.Tax, got.Total} {
		if !part.Equal(part.Round(2)) {
			t.Fatalf("expected cent precision, got %s", part)
		}
	}
}

func TestGrandTotal(t *testing.T) {
	got := GrandTotal(decimal.RequireFromString("750.00"), decimal.RequireFromString("128.25"), decimal.RequireFromString("37.50"))
	if !got.Equal(decimal.RequireFromString("840.75")) {
		t.Fatalf("expected 840.75, got %s", got)
	}
}

func TestComputeMargin(t *testing.T) {
	margin := ComputeMargin(decimal.NewFromInt(100), decimal.NewFromInt(150))
	if margin == nil || *margin != 50.0 {
		t.Fatalf("expected margin 50.0, got %v", margin)
	}
	if m := ComputeMargin(decimal.Zero, decimal.NewFromInt(10)); m != nil {
		t.Fatalf("expected nil margin for zero cost, got %v", *m)
	}
}

func TestStockStatus(t *testing.T) {
	tests := []struct {
		stock, min int
		want       string
	}{
		{0, 10, "Out of Stock"},
		{5, 10, "Low Stock"},
		{10, 10, "Low Stock"},
		{20, 10, "Adequate"},
		{21, 10, "Over Stock"},
	}
	for _, tc := range tests {
		if got := StockStatus(tc.stock, tc.min); got != tc.want {
			t.Fatalf("StockStatus(%d, %d): expected %q, got %q", tc.stock, tc.min, tc.want, got)
		}
	}
}
