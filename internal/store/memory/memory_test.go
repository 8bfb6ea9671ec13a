package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func newProduct(t *testing.T, s *Store, sku string, stock int) domain.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), domain.Product{
		SKU: sku, Name: "Product " + sku, CostPrice: decimal.NewFromInt(50), SellingPrice: decimal.NewFromInt(75),
		CurrentStock: stock, MinStockLevel: 10, MaxStockLevel: 100, IsActive: true, TaxRate: 18,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", sku, err)
	}
	return *p
}

func saleDraft(items ...domain.SaleItem) domain.Sale {
	return domain.Sale{
		PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.SaleStatusCompleted,
		Items:         items,
	}
}

func TestCreateSaleDeductsStockAndCancelRestores(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "WID-1", 50)
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	sale, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{
		ProductID: p.ID, Quantity: 10, UnitPrice: decimal.RequireFromString("75.00"), TaxRate: 18, DiscountPercent: 5,
	}), at)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.SaleNumber != "SAL-20240115-001" {
		t.Fatalf("unexpected sale number %s", sale.SaleNumber)
	}
	item := sale.Items[0]
	if !item.Total.Equal(decimal.RequireFromString("840.75")) || !item.TaxAmount.Equal(decimal.RequireFromString("128.25")) {
		t.Fatalf("unexpected item amounts: %+v", item)
	}
	if sale.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", sale.PaymentStatus)
	}

	after, _ := s.GetProduct(ctx, p.ID)
	if after.CurrentStock != 40 {
		t.Fatalf("expected stock 40 after sale, got %d", after.CurrentStock)
	}

	cancelled, err := s.CancelSale(ctx, sale.ID, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("cancel sale: %v", err)
	}
	if cancelled.Status != domain.SaleStatusCancelled || cancelled.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("unexpected cancelled state: %s/%s", cancelled.Status, cancelled.PaymentStatus)
	}
	if !cancelled.GrandTotal.Equal(sale.GrandTotal) {
		t.Fatalf("cancel must not touch totals")
	}
	restored, _ := s.GetProduct(ctx, p.ID)
	if restored.CurrentStock != 50 {
		t.Fatalf("expected stock 50 after cancel, got %d", restored.CurrentStock)
	}

	if _, err := s.CancelSale(ctx, sale.ID, at); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected second cancel to fail with invalid state, got %v", err)
	}
	again, _ := s.GetProduct(ctx, p.ID)
	if again.CurrentStock != 50 {
		t.Fatalf("second cancel must not restore stock twice, got %d", again.CurrentStock)
	}
}

func TestCreateSaleInsufficientStockLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newProduct(t, s, "A", 20)
	b := newProduct(t, s, "B", 2)

	_, err := s.CreateSale(ctx, saleDraft(
		domain.SaleItem{ProductID: a.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
		domain.SaleItem{ProductID: b.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
	), time.Now().UTC())
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	pa, _ := s.GetProduct(ctx, a.ID)
	pb, _ := s.GetProduct(ctx, b.ID)
	if pa.CurrentStock != 20 || pb.CurrentStock != 2 {
		t.Fatalf("stock changed after failed sale: a=%d b=%d", pa.CurrentStock, pb.CurrentStock)
	}
	sales, _ := s.ListSales(ctx, domain.SaleFilter{})
	if len(sales) != 0 {
		t.Fatalf("expected no sale persisted, got %d", len(sales))
	}

	// The failed attempt must not consume a number.
	ok, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{ProductID: a.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if ok.SaleNumber != "SAL-20240301-001" {
		t.Fatalf("expected first number of the day, got %s", ok.SaleNumber)
	}
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	s := New()
	_, err := s.CreateSale(context.Background(), saleDraft(domain.SaleItem{ProductID: 99, Quantity: 1}), time.Now())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaleNumbersAreSequentialPerDay(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "SEQ", 100)
	day1 := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	var numbers []string
	for _, at := range []time.Time{day1, day1, day1, day2} {
		sale, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}), at)
		if err != nil {
			t.Fatalf("create sale: %v", err)
		}
		numbers = append(numbers, sale.SaleNumber)
	}
	want := []string{"SAL-20240115-001", "SAL-20240115-002", "SAL-20240115-003", "SAL-20240116-001"}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("number %d: expected %s, got %s", i, want[i], numbers[i])
		}
	}
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "HOT", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}), time.Now().UTC())
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	final, _ := s.GetProduct(ctx, p.ID)
	if succeeded != 10 || final.CurrentStock != 0 {
		t.Fatalf("expected 10 sales and zero stock, got %d sales and stock %d", succeeded, final.CurrentStock)
	}
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "ADJ", 5)
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	updated, err := s.AdjustStock(ctx, p.ID, 10, at)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.CurrentStock != 15 || updated.LastRestocked == nil || !updated.LastRestocked.Equal(at) {
		t.Fatalf("unexpected product after restock: %+v", updated)
	}

	if _, err := s.AdjustStock(ctx, p.ID, -16, at); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	unchanged, _ := s.GetProduct(ctx, p.ID)
	if unchanged.CurrentStock != 15 {
		t.Fatalf("rejected adjustment changed stock to %d", unchanged.CurrentStock)
	}
}

func TestBulkAdjustStockPartialSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	p1 := newProduct(t, s, "P1", 0)
	p2 := newProduct(t, s, "P2", 5)

	results, err := s.BulkAdjustStock(ctx, map[int64]int{p1.ID: 10, p2.ID: -1000, 999: 1}, time.Now().UTC())
	if err != nil {
		t.Fatalf("bulk adjust: %v", err)
	}
	if !results[p1.ID] || results[p2.ID] || results[999] {
		t.Fatalf("unexpected results %v", results)
	}
	a, _ := s.GetProduct(ctx, p1.ID)
	b, _ := s.GetProduct(ctx, p2.ID)
	if a.CurrentStock != 10 || b.CurrentStock != 5 {
		t.Fatalf("unexpected stock p1=%d p2=%d", a.CurrentStock, b.CurrentStock)
	}
}

func TestDraftOnlyUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "DRAFT", 10)

	draft := saleDraft(domain.SaleItem{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(5)})
	draft.Status = domain.SaleStatusDraft
	created, err := s.CreateSale(ctx, draft, time.Now().UTC())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if created.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("draft cash sale should stay pending, got %s", created.PaymentStatus)
	}

	created.CustomerName = "Dana"
	updated, err := s.UpdateDraftSale(ctx, *created, time.Now().UTC())
	if err != nil || updated.CustomerName != "Dana" {
		t.Fatalf("update draft: %v %+v", err, updated)
	}

	completed, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}), time.Now().UTC())
	if err != nil {
		t.Fatalf("create completed: %v", err)
	}
	if _, err := s.UpdateDraftSale(ctx, *completed, time.Now().UTC()); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected invalid state updating completed sale, got %v", err)
	}
	if err := s.DeleteDraftSale(ctx, completed.ID, time.Now().UTC()); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected invalid state deleting completed sale, got %v", err)
	}
	if err := s.DeleteDraftSale(ctx, created.ID, time.Now().UTC()); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if after, _ := s.GetProduct(ctx, p.ID); after.CurrentStock != 9 {
		t.Fatalf("expected the draft's unit back in stock (9), got %d", after.CurrentStock)
	}
	if _, err := s.GetSale(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted draft to be gone, got %v", err)
	}
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()
	newProduct(t, s, "DUP", 1)
	if _, err := s.CreateProduct(ctx, domain.Product{SKU: "DUP", Name: "again"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on duplicate sku, got %v", err)
	}
	if _, err := s.CreateUser(ctx, domain.User{Email: "a@x.io", Username: "alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, domain.User{Email: "A@x.io", Username: "other"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, _ := s.CreateCategory(ctx, domain.Category{Name: "Gadgets"})
	p, err := s.CreateProduct(ctx, domain.Product{SKU: "G1", Name: "Gizmo", CategoryID: &c.ID})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.CategoryName != "Gadgets" {
		t.Fatalf("expected joined category name, got %q", p.CategoryName)
	}
	if err := s.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	after, _ := s.GetProduct(ctx, p.ID)
	if after.CategoryID != nil {
		t.Fatalf("expected category cleared, got %v", *after.CategoryID)
	}
}

func TestUpdateProductAppliesUnderLock(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "EDIT", 40)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 15; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{ProductID: p.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(75)}), at); err != nil {
				t.Errorf("sale: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := s.UpdateProduct(ctx, p.ID, at, func(edit *domain.Product) error {
				edit.Description = "edited"
				return nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	final, _ := s.GetProduct(ctx, p.ID)
	if final.CurrentStock != 10 || final.Description != "edited" {
		t.Fatalf("expected stock 10 with edits kept, got stock %d description %q", final.CurrentStock, final.Description)
	}
	if final.UpdatedAt == nil || !final.UpdatedAt.Equal(at) {
		t.Fatalf("expected updated_at from caller, got %v", final.UpdatedAt)
	}
}

func TestUpdateProductApplyErrorKeepsProduct(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "KEEP", 3)
	newProduct(t, s, "TAKEN", 1)

	_, err := s.UpdateProduct(ctx, p.ID, time.Now().UTC(), func(edit *domain.Product) error {
		edit.Name = "changed"
		return store.ErrValidation
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected apply error to surface, got %v", err)
	}
	_, err = s.UpdateProduct(ctx, p.ID, time.Now().UTC(), func(edit *domain.Product) error {
		edit.SKU = "TAKEN"
		return nil
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected sku conflict, got %v", err)
	}
	got, _ := s.GetProduct(ctx, p.ID)
	if got.Name != p.Name || got.SKU != "KEEP" {
		t.Fatalf("failed updates leaked into the store: %+v", got)
	}
	if _, err := s.UpdateProduct(ctx, 404, time.Now().UTC(), func(*domain.Product) error { return nil }); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelRestoresInactiveProduct(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProduct(t, s, "RETIRED", 12)
	at := time.Date(2024, 4, 2, 15, 0, 0, 0, time.UTC)

	sale, err := s.CreateSale(ctx, saleDraft(domain.SaleItem{ProductID: p.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(75)}), at)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := s.UpdateProduct(ctx, p.ID, at, func(edit *domain.Product) error {
		edit.IsActive = false
		return nil
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.CancelSale(ctx, sale.ID, at.Add(time.Hour)); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, _ := s.GetProduct(ctx, p.ID)
	if got.CurrentStock != 12 || got.IsActive {
		t.Fatalf("expected stock 12 on an inactive product, got stock %d active %v", got.CurrentStock, got.IsActive)
	}
}
