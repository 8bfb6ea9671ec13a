package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/service"
	"stockpos/backend/internal/store"
)

type seedResult struct {
	Categories int
	Suppliers  int
	Products   int
	Skipped    int
}

type seedProduct struct {
	sku      string
	name     string
	category string
	cost     string
	price    string
	stock    int
	barcode  string
}

var demoCategories = []domain.CategoryCreateRequest{
	{Name: "Electronics", Description: "Cables, peripherals and small devices"},
	{Name: "Stationery", Description: "Office and school supplies"},
	{Name: "Beverages", Description: "Bottled drinks"},
}

var demoSupplier = domain.SupplierCreateRequest{
	Name:          "Acme Distribution",
	ContactPerson: "Dana Reyes",
	Email:         "orders@acme.example",
	Phone:         "+1-555-0100",
	City:          "Springfield",
	Country:       "US",
	PaymentTerms:  "NET30",
}

var demoProducts = []seedProduct{
	{sku: "ELEC-USB-01", name: "USB-C Cable", category: "Electronics", cost: "40", price: "75", stock: 50, barcode: "8990001000011"},
	{sku: "ELEC-MOU-01", name: "Wireless Mouse", category: "Electronics", cost: "85", price: "129.90", stock: 25, barcode: "8990001000028"},
	{sku: "STAT-PEN-01", name: "Ballpoint Pen", category: "Stationery", cost: "1.20", price: "2.50", stock: 200},
	{sku: "STAT-NBK-01", name: "A5 Notebook", category: "Stationery", cost: "3.10", price: "5.75", stock: 8},
	{sku: "BEV-WAT-01", name: "Mineral Water 600ml", category: "Beverages", cost: "0.35", price: "0.90", stock: 0},
}

// seedCatalog loads the demo catalog. Rows that already exist, matched by
// category name, supplier name or SKU, are left untouched.
func seedCatalog(ctx context.Context, svc *service.Service) (seedResult, error) {
	var result seedResult

	existing, err := svc.ListCategories(ctx, 0, 1000)
	if err != nil {
		return result, fmt.Errorf("list categories: %w", err)
	}
	categoryIDs := make(map[string]int64, len(existing))
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}
	for _, req := range demoCategories {
		if _, ok := categoryIDs[req.Name]; ok {
			result.Skipped++
			continue
		}
		created, err := svc.CreateCategory(ctx, req)
		if err != nil {
			return result, fmt.Errorf("create category %s: %w", req.Name, err)
		}
		categoryIDs[created.Name] = created.ID
		result.Categories++
	}

	supplierID, created, err := ensureSupplier(ctx, svc, demoSupplier)
	if err != nil {
		return result, err
	}
	if created {
		result.Suppliers++
	} else {
		result.Skipped++
	}

	for _, p := range demoProducts {
		if _, err := svc.GetProductBySKU(ctx, p.sku); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return result, fmt.Errorf("lookup %s: %w", p.sku, err)
		}

		categoryID := categoryIDs[p.category]
		_, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
			SKU:          p.sku,
			Name:         p.name,
			CategoryID:   &categoryID,
			SupplierID:   &supplierID,
			CostPrice:    decimal.RequireFromString(p.cost),
			SellingPrice: decimal.RequireFromString(p.price),
			CurrentStock: p.stock,
			Barcode:      p.barcode,
		})
		if err != nil {
			return result, fmt.Errorf("create product %s: %w", p.sku, err)
		}
		logger.Log.Debug().Str("sku", p.sku).Msg("seeded product")
		result.Products++
	}
	return result, nil
}

func ensureSupplier(ctx context.Context, svc *service.Service, req domain.SupplierCreateRequest) (int64, bool, error) {
	found, err := svc.ListSuppliers(ctx, domain.SupplierFilter{Search: req.Name, Limit: 50})
	if err != nil {
		return 0, false, fmt.Errorf("list suppliers: %w", err)
	}
	for _, sup := range found {
		if sup.Name == req.Name {
			return sup.ID, false, nil
		}
	}
	created, err := svc.CreateSupplier(ctx, req)
	if err != nil {
		return 0, false, fmt.Errorf("create supplier %s: %w", req.Name, err)
	}
	return created.ID, true, nil
}
