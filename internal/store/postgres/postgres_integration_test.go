package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("STOCKPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set STOCKPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL, 4)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func seedProduct(t *testing.T, s *Store, stock int) *domain.Product {
	t.Helper()
	ctx := context.Background()
	sku := fmt.Sprintf("SKU-IT-%d", time.Now().UnixNano())
	p, err := s.CreateProduct(ctx, domain.Product{
		SKU:           sku,
		Name:          "Integration Widget",
		CostPrice:     decimal.RequireFromString("40"),
		SellingPrice:  decimal.RequireFromString("75"),
		CurrentStock:  stock,
		MinStockLevel: domain.DefaultMinStockLevel,
		MaxStockLevel: domain.DefaultMaxStockLevel,
		UnitOfMeasure: domain.DefaultUnitOfMeasure,
		IsActive:      true,
		IsTaxable:     true,
		TaxRate:       domain.DefaultTaxRate,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE product_id = $1`, p.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id NOT IN (SELECT sale_id FROM sale_items)`)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, p.ID)
	})
	return p
}

func oneItemSale(productID int64, qty int) domain.Sale {
	return domain.Sale{
		CustomerName:  "Integration Customer",
		PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.SaleStatusCompleted,
		Items: []domain.SaleItem{{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: decimal.RequireFromString("75"),
			TaxRate:   domain.DefaultTaxRate,
		}},
	}
}

func TestCreateAndCancelSaleRoundTripsStock(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, 10)

	sale, err := s.CreateSale(ctx, oneItemSale(p.ID, 4), time.Now().UTC())
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected cash sale to be paid, got %s", sale.PaymentStatus)
	}
	if len(sale.Items) != 1 || sale.Items[0].ProductSKU != p.SKU {
		t.Fatalf("expected item snapshot of %s, got %+v", p.SKU, sale.Items)
	}

	after, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.CurrentStock != 6 {
		t.Fatalf("expected stock 6 after sale, got %d", after.CurrentStock)
	}

	cancelled, err := s.CancelSale(ctx, sale.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("cancel sale: %v", err)
	}
	if cancelled.Status != domain.SaleStatusCancelled || cancelled.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("unexpected cancelled state %s/%s", cancelled.Status, cancelled.PaymentStatus)
	}

	restored, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if restored.CurrentStock != 10 {
		t.Fatalf("expected stock 10 after cancel, got %d", restored.CurrentStock)
	}

	if _, err := s.CancelSale(ctx, sale.ID, time.Now().UTC()); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected invalid state on second cancel, got %v", err)
	}
}

func TestCreateSaleRejectsInsufficientStock(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, 2)

	_, err := s.CreateSale(ctx, oneItemSale(p.ID, 3), time.Now().UTC())
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	after, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.CurrentStock != 2 {
		t.Fatalf("expected stock untouched, got %d", after.CurrentStock)
	}
}

func TestConcurrentSalesGetDistinctNumbers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, 5)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		okCount int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := s.CreateSale(ctx, oneItemSale(p.ID, 1), time.Now().UTC())
			if err != nil {
				if !errors.Is(err, store.ErrInsufficientStock) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			mu.Lock()
			defer mu.Unlock()
			okCount++
			if numbers[sale.SaleNumber] {
				t.Errorf("duplicate sale number %s", sale.SaleNumber)
			}
			numbers[sale.SaleNumber] = true
		}()
	}
	wg.Wait()

	if okCount != 5 {
		t.Fatalf("expected exactly 5 successful sales, got %d", okCount)
	}
	after, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.CurrentStock != 0 {
		t.Fatalf("expected stock 0, got %d", after.CurrentStock)
	}
}

func TestUpdateProductDoesNotOverwriteConcurrentSales(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, 30)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.CreateSale(ctx, oneItemSale(p.ID, 2), time.Now().UTC()); err != nil {
				t.Errorf("sale: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := s.UpdateProduct(ctx, p.ID, time.Now().UTC(), func(edit *domain.Product) error {
				edit.Brand = "edited"
				return nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	after, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.CurrentStock != 10 || after.Brand != "edited" {
		t.Fatalf("expected stock 10 with edits kept, got stock %d brand %q", after.CurrentStock, after.Brand)
	}
}

func TestDeleteDraftSaleRestoresStock(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, 8)

	draft := oneItemSale(p.ID, 3)
	draft.Status = domain.SaleStatusDraft
	sale, err := s.CreateSale(ctx, draft, time.Now().UTC())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if err := s.DeleteDraftSale(ctx, sale.ID, time.Now().UTC()); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	after, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.CurrentStock != 8 {
		t.Fatalf("expected stock 8 after deleting the draft, got %d", after.CurrentStock)
	}
	if _, err := s.GetSale(ctx, sale.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected draft gone, got %v", err)
	}
}
