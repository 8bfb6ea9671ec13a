package main

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/service"
	"stockpos/backend/internal/store/memory"
)

func init() {
	logger.Discard()
}

func TestSeedCatalogLoadsDemoData(t *testing.T) {
	ctx := context.Background()
	svc := service.New(memory.New(), nil, time.UTC, time.Minute)

	result, err := seedCatalog(ctx, svc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if result.Categories != 3 || result.Suppliers != 1 || result.Products != len(demoProducts) || result.Skipped != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	cable, err := svc.GetProductBySKU(ctx, "ELEC-USB-01")
	if err != nil {
		t.Fatalf("lookup cable: %v", err)
	}
	if cable.CategoryID == nil || cable.SupplierID == nil {
		t.Fatalf("expected category and supplier links, got %+v", cable)
	}
	if !cable.SellingPrice.Equal(decimal.RequireFromString("75")) || cable.CurrentStock != 50 {
		t.Fatalf("unexpected cable %+v", cable)
	}
	if cable.Margin == nil || *cable.Margin != 87.5 {
		t.Fatalf("expected margin 87.5, got %v", cable.Margin)
	}
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := service.New(memory.New(), nil, time.UTC, time.Minute)

	if _, err := seedCatalog(ctx, svc); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	again, err := seedCatalog(ctx, svc)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if again.Categories != 0 || again.Suppliers != 0 || again.Products != 0 {
		t.Fatalf("expected nothing new on reseed, got %+v", again)
	}
	if want := len(demoCategories) + 1 + len(demoProducts); again.Skipped != want {
		t.Fatalf("expected %d skipped rows, got %d", want, again.Skipped)
	}
}
