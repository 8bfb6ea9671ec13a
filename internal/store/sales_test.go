package store

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
)

func TestNextSaleNumber(t *testing.T) {
	prefix := SaleNumberPrefix(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	if prefix != "SAL-20240115-" {
		t.Fatalf("unexpected prefix %q", prefix)
	}

	if got := NextSaleNumber(prefix, nil); got != "SAL-20240115-001" {
		t.Fatalf("expected first number 001, got %s", got)
	}

	existing := []string{"SAL-20240115-001", "SAL-20240115-002", "SAL-20240114-007"}
	if got := NextSaleNumber(prefix, existing); got != "SAL-20240115-003" {
		t.Fatalf("expected 003, got %s", got)
	}

	// Sequences past 999 keep ordering numerically.
	existing = []string{"SAL-20240115-999", "SAL-20240115-1000"}
	if got := NextSaleNumber(prefix, existing); got != "SAL-20240115-1001" {
		t.Fatalf("expected 1001, got %s", got)
	}
}

func TestPriceSaleComputesTotals(t *testing.T) {
	products := map[int64]domain.Product{
		1: {ID: 1, SKU: "WID-1", Name: "Widget", Barcode: "899", CurrentStock: 50},
	}
	draft := domain.Sale{
		PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.SaleStatusCompleted,
		Items: []domain.SaleItem{
			{ProductID: 1, Quantity: 10, UnitPrice: decimal.RequireFromString("75.00"), TaxRate: 18, DiscountPercent: 5},
		},
	}

	if err := PriceSale(&draft, products); err != nil {
		t.Fatalf("price sale: %v", err)
	}
	if !draft.TotalAmount.Equal(decimal.RequireFromString("750")) {
		t.Fatalf("expected total 750, got %s", draft.TotalAmount)
	}
	if !draft.GrandTotal.Equal(draft.TotalAmount.Add(draft.TaxAmount).Sub(draft.DiscountAmount)) {
		t.Fatalf("grand total invariant broken: %s", draft.GrandTotal)
	}
	if draft.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected cash sale to be paid, got %s", draft.PaymentStatus)
	}
	if draft.Items[0].ProductSKU != "WID-1" || draft.Items[0].ProductBarcode != "899" {
		t.Fatalf("expected product snapshot on item, got %+v", draft.Items[0])
	}
}

func TestPriceSaleChecksCumulativeStock(t *testing.T) {
	products := map[int64]domain.Product{1: {ID: 1, Name: "Widget", CurrentStock: 5}}
	draft := domain.Sale{Items: []domain.SaleItem{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.NewFromInt(1)},
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.NewFromInt(1)},
	}}

	err := PriceSale(&draft, products)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if err.Error() != "insufficient stock for Widget. Available: 5" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPriceSaleMissingProduct(t *testing.T) {
	draft := domain.Sale{Items: []domain.SaleItem{{ProductID: 42, Quantity: 1}}}
	if err := PriceSale(&draft, map[int64]domain.Product{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelledPaymentStatus(t *testing.T) {
	if got := CancelledPaymentStatus(domain.PaymentStatusPaid); got != domain.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", got)
	}
	if got := CancelledPaymentStatus(domain.PaymentStatusPartial); got != domain.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", got)
	}
}
