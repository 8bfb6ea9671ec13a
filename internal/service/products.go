package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
)

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Skip, filter.Limit = NormalizePage(filter.Skip, filter.Limit)
	return s.repo.ListProducts(ctx, filter)
}

// SearchProducts matches q against name, SKU, barcode, brand and
// description, regardless of the active flag.
func (s *Service) SearchProducts(ctx context.Context, q string, skip, limit int) ([]domain.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("search term is required")
	}
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListProducts(ctx, domain.ProductFilter{Search: q, Skip: skip, Limit: limit})
}

func (s *Service) LowStockProducts(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true, LowStock: true, Skip: skip, Limit: limit})
}

func (s *Service) OutOfStockProducts(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true, OutOfStock: true, Skip: skip, Limit: limit})
}

func (s *Service) ProductsByCategoryName(ctx context.Context, name string, skip, limit int) ([]domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("category name is required")
	}
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true, CategoryName: name, Skip: skip, Limit: limit})
}

func (s *Service) ProductsBySupplierName(ctx context.Context, name string, skip, limit int) ([]domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("supplier name is required")
	}
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true, SupplierName: name, Skip: skip, Limit: limit})
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) GetProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	p, err := s.repo.GetProductBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, invalid("barcode is required")
	}
	p, err := s.repo.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	now := s.clock()
	product := domain.Product{
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		CurrentStock:  req.CurrentStock,
		MinStockLevel: domain.DefaultMinStockLevel,
		MaxStockLevel: domain.DefaultMaxStockLevel,
		UnitOfMeasure: defaultString(req.UnitOfMeasure, domain.DefaultUnitOfMeasure),
		Brand:         strings.TrimSpace(req.Brand),
		Model:         strings.TrimSpace(req.Model),
		Weight:        req.Weight,
		Dimensions:    strings.TrimSpace(req.Dimensions),
		Barcode:       strings.TrimSpace(req.Barcode),
		IsActive:      true,
		IsTaxable:     true,
		TaxRate:       domain.DefaultTaxRate,
		CreatedAt:     now,
	}
	var err error
	if product.SKU, err = requireText("sku", req.SKU, 1, 50); err != nil {
		return domain.Product{}, err
	}
	if product.Name, err = requireText("name", req.Name, 1, 200); err != nil {
		return domain.Product{}, err
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		product.MaxStockLevel = *req.MaxStockLevel
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsTaxable != nil {
		product.IsTaxable = *req.IsTaxable
	}
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}
	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	product.CostPrice = product.CostPrice.Round(2)
	product.SellingPrice = product.SellingPrice.Round(2)
	product.Margin = domain.ComputeMargin(product.CostPrice, product.SellingPrice)
	if product.CurrentStock > 0 {
		product.LastRestocked = &now
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidateReports(ctx)
	return *created, nil
}

// UpdateProduct merges the supplied fields into the stored product and
// validates the merged result, so a price or level change is checked against
// the values it leaves in place. The merge runs while the store holds the
// product locked, so concurrent sales and adjustments are never overwritten.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.Product, error) {
	now := s.clock()
	saved, err := s.repo.UpdateProduct(ctx, id, now, func(updated *domain.Product) error {
		return mergeProduct(updated, req, now)
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidateReports(ctx)
	return *saved, nil
}

func mergeProduct(updated *domain.Product, req domain.ProductUpdateRequest, now time.Time) error {
	var err error
	if req.SKU != nil {
		if updated.SKU, err = requireText("sku", *req.SKU, 1, 50); err != nil {
			return err
		}
	}
	if req.Name != nil {
		if updated.Name, err = requireText("name", *req.Name, 1, 200); err != nil {
			return err
		}
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.CategoryID != nil {
		updated.CategoryID = req.CategoryID
	}
	if req.SupplierID != nil {
		updated.SupplierID = req.SupplierID
	}
	if req.CostPrice != nil {
		updated.CostPrice = req.CostPrice.Round(2)
	}
	if req.SellingPrice != nil {
		updated.SellingPrice = req.SellingPrice.Round(2)
	}
	if req.CurrentStock != nil {
		if *req.CurrentStock > updated.CurrentStock {
			updated.LastRestocked = &now
		}
		updated.CurrentStock = *req.CurrentStock
	}
	if req.MinStockLevel != nil {
		updated.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		updated.MaxStockLevel = *req.MaxStockLevel
	}
	if req.UnitOfMeasure != nil {
		updated.UnitOfMeasure = defaultString(*req.UnitOfMeasure, domain.DefaultUnitOfMeasure)
	}
	if req.Brand != nil {
		updated.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		updated.Model = strings.TrimSpace(*req.Model)
	}
	if req.Weight != nil {
		updated.Weight = req.Weight
	}
	if req.Dimensions != nil {
		updated.Dimensions = strings.TrimSpace(*req.Dimensions)
	}
	if req.Barcode != nil {
		updated.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	if req.IsTaxable != nil {
		updated.IsTaxable = *req.IsTaxable
	}
	if req.TaxRate != nil {
		updated.TaxRate = *req.TaxRate
	}
	if err := validateProduct(*updated); err != nil {
		return err
	}
	updated.Margin = domain.ComputeMargin(updated.CostPrice, updated.SellingPrice)
	return nil
}

// DeleteProduct deactivates the product. Sale history keeps referring to it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	_, err := s.repo.UpdateProduct(ctx, id, s.clock(), func(p *domain.Product) error {
		p.IsActive = false
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id int64, req domain.StockUpdateRequest) (domain.StockUpdateResult, error) {
	if req.Quantity == 0 {
		return domain.StockUpdateResult{}, invalid("quantity must not be zero")
	}

	updated, err := s.repo.AdjustStock(ctx, id, req.Quantity, s.clock())
	if err != nil {
		return domain.StockUpdateResult{}, err
	}
	s.invalidateReports(ctx)

	return domain.StockUpdateResult{
		ProductID:     updated.ID,
		SKU:           updated.SKU,
		PreviousStock: updated.CurrentStock - req.Quantity,
		CurrentStock:  updated.CurrentStock,
		Adjustment:    req.Quantity,
		Notes:         req.Notes,
	}, nil
}

// BulkAdjustStock applies each delta independently and reports per-product
// success. A missing product or a delta that would go negative fails only
// that entry.
func (s *Service) BulkAdjustStock(ctx context.Context, deltas map[int64]int) (map[int64]bool, error) {
	if len(deltas) == 0 {
		return nil, invalid("no stock updates supplied")
	}
	results, err := s.repo.BulkAdjustStock(ctx, deltas, s.clock())
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return results, nil
}

// InventorySummary aggregates over active products; inactive ones are only
// counted.
func (s *Service) InventorySummary(ctx context.Context) (domain.InventorySummary, error) {
	products, err := s.repo.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return domain.InventorySummary{}, err
	}

	summary := domain.InventorySummary{
		TotalStockValue:       decimal.Zero,
		TotalPotentialRevenue: decimal.Zero,
	}
	for _, p := range products {
		if !p.IsActive {
			summary.InactiveProducts++
			continue
		}
		summary.ActiveProducts++
		summary.TotalStock += p.CurrentStock
		units := decimal.NewFromInt(int64(p.CurrentStock))
		summary.TotalStockValue = summary.TotalStockValue.Add(units.Mul(p.CostPrice))
		summary.TotalPotentialRevenue = summary.TotalPotentialRevenue.Add(units.Mul(p.SellingPrice))
		if p.CurrentStock <= p.MinStockLevel {
			summary.LowStockCount++
		}
		if p.CurrentStock == 0 {
			summary.OutOfStockCount++
		}
	}
	summary.TotalProducts = summary.ActiveProducts
	return summary, nil
}

func validateProduct(p domain.Product) error {
	switch {
	case p.CostPrice.IsNegative():
		return invalid("cost_price must not be negative")
	case p.SellingPrice.IsNegative():
		return invalid("selling_price must not be negative")
	case p.SellingPrice.LessThan(p.CostPrice):
		return invalid("selling price cannot be less than cost price")
	case p.CurrentStock < 0:
		return invalid("current_stock must not be negative")
	case p.MinStockLevel < 0:
		return invalid("min_stock_level must not be negative")
	case p.MaxStockLevel < 1:
		return invalid("max_stock_level must be at least 1")
	case p.MaxStockLevel <= p.MinStockLevel:
		return invalid("max stock level must be greater than min stock level")
	case p.Weight != nil && *p.Weight < 0:
		return invalid("weight must not be negative")
	case len(p.UnitOfMeasure) > 20:
		return invalid("unit_of_measure must be at most 20 characters")
	case len(p.Brand) > 100 || len(p.Model) > 100:
		return invalid("brand and model must be at most 100 characters")
	case len(p.Dimensions) > 50:
		return invalid("dimensions must be at most 50 characters")
	case len(p.Barcode) > 100:
		return invalid("barcode must be at most 100 characters")
	}
	return percentInRange("tax_rate", p.TaxRate)
}
