package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func (s *Store) ListCategories(_ context.Context, skip, limit int) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.categories))
	for _, id := range sortedKeys(s.categories) {
		out = append(out, s.categories[id])
	}
	return page(out, skip, limit), nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &category, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryNameTaken(category.Name, 0) {
		return nil, fmt.Errorf("%w: category name %q", store.ErrConflict, category.Name)
	}
	category.ID = s.allocID("category")
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	s.categories[category.ID] = category
	return &category, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[category.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.categoryNameTaken(category.Name, category.ID) {
		return nil, fmt.Errorf("%w: category name %q", store.ErrConflict, category.Name)
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = timePtr(time.Now().UTC())
	s.categories[category.ID] = category
	return &category, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	for pid, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			s.products[pid] = p
		}
	}
	return nil
}

func (s *Store) categoryNameTaken(name string, exceptID int64) bool {
	for id, c := range s.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) ListSuppliers(_ context.Context, filter domain.SupplierFilter) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.TrimSpace(filter.Search)
	out := make([]domain.Supplier, 0, len(s.suppliers))
	for _, id := range sortedKeys(s.suppliers) {
		supplier := s.suppliers[id]
		if filter.ActiveOnly && !supplier.IsActive {
			continue
		}
		if search != "" && !containsFold(supplier.Name, search) && !containsFold(supplier.ContactPerson, search) &&
			!containsFold(supplier.Email, search) && !containsFold(supplier.Phone, search) {
			continue
		}
		out = append(out, supplier)
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (s *Store) GetSupplier(_ context.Context, id int64) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &supplier, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.supplierNameTaken(supplier.Name, 0) {
		return nil, fmt.Errorf("%w: supplier name %q", store.ErrConflict, supplier.Name)
	}
	supplier.ID = s.allocID("supplier")
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}
	s.suppliers[supplier.ID] = supplier
	return &supplier, nil
}

func (s *Store) UpdateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.suppliers[supplier.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.supplierNameTaken(supplier.Name, supplier.ID) {
		return nil, fmt.Errorf("%w: supplier name %q", store.ErrConflict, supplier.Name)
	}
	supplier.CreatedAt = existing.CreatedAt
	supplier.UpdatedAt = timePtr(time.Now().UTC())
	s.suppliers[supplier.ID] = supplier
	return &supplier, nil
}

func (s *Store) DeleteSupplier(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.suppliers, id)
	for pid, p := range s.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			p.SupplierID = nil
			s.products[pid] = p
		}
	}
	return nil
}

func (s *Store) supplierNameTaken(name string, exceptID int64) bool {
	for id, sup := range s.suppliers {
		if id != exceptID && sup.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.TrimSpace(filter.Search)
	out := make([]domain.Product, 0, len(s.products))
	for _, id := range sortedKeys(s.products) {
		p := s.withNames(s.products[id])
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *filter.SupplierID) {
			continue
		}
		if filter.CategoryName != "" && (p.CategoryName == "" || !containsFold(p.CategoryName, filter.CategoryName)) {
			continue
		}
		if filter.SupplierName != "" && (p.SupplierName == "" || !containsFold(p.SupplierName, filter.SupplierName)) {
			continue
		}
		if filter.LowStock && p.CurrentStock > p.MinStockLevel {
			continue
		}
		if filter.OutOfStock && p.CurrentStock != 0 {
			continue
		}
		if search != "" && !containsFold(p.Name, search) && !containsFold(p.SKU, search) &&
			!containsFold(p.Barcode, search) && !containsFold(p.Brand, search) && !containsFold(p.Description, search) {
			continue
		}
		out = append(out, p)
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = s.withNames(p)
	return &p, nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	return s.findProduct(func(p domain.Product) bool { return p.SKU == sku })
}

func (s *Store) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, store.ErrNotFound
	}
	return s.findProduct(func(p domain.Product) bool { return p.Barcode == barcode })
}

func (s *Store) findProduct(match func(domain.Product) bool) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.products) {
		if p := s.products[id]; match(p) {
			p = s.withNames(p)
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkProductRefs(product, 0); err != nil {
		return nil, err
	}
	product.ID = s.allocID("product")
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	s.products[product.ID] = product
	created := s.withNames(product)
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, id int64, at time.Time, apply func(*domain.Product) error) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", store.ErrNotFound, id)
	}
	product := s.withNames(existing)
	if err := apply(&product); err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.checkProductRefs(product, id); err != nil {
		return nil, err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = timePtr(at)
	s.products[id] = product
	updated := s.withNames(product)
	return &updated, nil
}

func (s *Store) AdjustStock(_ context.Context, productID int64, delta int, at time.Time) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	next := p.CurrentStock + delta
	if next < 0 {
		return nil, fmt.Errorf("%w for %s. Available: %d", store.ErrInsufficientStock, p.Name, p.CurrentStock)
	}
	s.applyStock(&p, next, delta, at)
	updated := s.withNames(p)
	return &updated, nil
}

func (s *Store) BulkAdjustStock(_ context.Context, deltas map[int64]int, at time.Time) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make(map[int64]bool, len(deltas))
	for _, id := range store.SortedProductIDs(deltas) {
		p, ok := s.products[id]
		if !ok {
			results[id] = false
			continue
		}
		next := p.CurrentStock + deltas[id]
		if next < 0 {
			results[id] = false
			continue
		}
		s.applyStock(&p, next, deltas[id], at)
		results[id] = true
	}
	return results, nil
}

// applyStock must be called with mu held.
func (s *Store) applyStock(p *domain.Product, next, delta int, at time.Time) {
	p.CurrentStock = next
	if delta > 0 {
		p.LastRestocked = timePtr(at)
	}
	p.UpdatedAt = timePtr(at)
	s.products[p.ID] = *p
}

func (s *Store) checkProductRefs(product domain.Product, exceptID int64) error {
	for id, p := range s.products {
		if id == exceptID {
			continue
		}
		if p.SKU == product.SKU {
			return fmt.Errorf("%w: product with SKU %s", store.ErrConflict, product.SKU)
		}
		if product.Barcode != "" && p.Barcode == product.Barcode {
			return fmt.Errorf("%w: product with barcode %s", store.ErrConflict, product.Barcode)
		}
	}
	if product.CategoryID != nil {
		if _, ok := s.categories[*product.CategoryID]; !ok {
			return fmt.Errorf("%w: category %d does not exist", store.ErrValidation, *product.CategoryID)
		}
	}
	if product.SupplierID != nil {
		if _, ok := s.suppliers[*product.SupplierID]; !ok {
			return fmt.Errorf("%w: supplier %d does not exist", store.ErrValidation, *product.SupplierID)
		}
	}
	return nil
}

func (s *Store) withNames(p domain.Product) domain.Product {
	p.CategoryName = ""
	p.SupplierName = ""
	if p.CategoryID != nil {
		p.CategoryName = s.categories[*p.CategoryID].Name
	}
	if p.SupplierID != nil {
		p.SupplierName = s.suppliers[*p.SupplierID].Name
	}
	return p
}
