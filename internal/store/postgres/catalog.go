package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

const categoryColumns = `id, name, description, created_at, updated_at`

func (s *Store) ListCategories(ctx context.Context, skip, limit int) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, 32)
	err := s.db.SelectContext(ctx, &categories, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, skip, limitOrAll(limit))
	return categories, err
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	err := s.db.GetContext(ctx, &category, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	var created domain.Category
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO categories (name, description, created_at)
		VALUES ($1, $2, now())
		RETURNING `+categoryColumns, category.Name, category.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	var updated domain.Category
	err := s.db.GetContext(ctx, &updated, `
		UPDATE categories
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns, category.ID, category.Name, category.Description)
	if err != nil {
		return nil, notFound(mapError(err))
	}
	return &updated, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "categories", id)
}

const supplierColumns = `id, name, contact_person, email, phone, address, city, state, country,
	postal_code, tax_id, website, is_active, payment_terms, rating, notes, created_at, updated_at`

func (s *Store) ListSuppliers(ctx context.Context, filter domain.SupplierFilter) ([]domain.Supplier, error) {
	where, args := []string{"TRUE"}, []any{}
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR contact_person ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n, n))
	}
	args = append(args, filter.Skip, limitOrAll(filter.Limit))

	suppliers := make([]domain.Supplier, 0, 32)
	err := s.db.SelectContext(ctx, &suppliers, fmt.Sprintf(`
		SELECT %s
		FROM suppliers
		WHERE %s
		ORDER BY id
		OFFSET $%d LIMIT $%d
	`, supplierColumns, strings.Join(where, " AND "), len(args)-1, len(args)), args...)
	return suppliers, err
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := s.db.GetContext(ctx, &supplier, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &supplier, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup domain.Supplier) (*domain.Supplier, error) {
	var created domain.Supplier
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO suppliers (
			name, contact_person, email, phone, address, city, state, country,
			postal_code, tax_id, website, is_active, payment_terms, rating, notes, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
		RETURNING `+supplierColumns,
		sup.Name, sup.ContactPerson, sup.Email, sup.Phone, sup.Address, sup.City, sup.State, sup.Country,
		sup.PostalCode, sup.TaxID, sup.Website, sup.IsActive, sup.PaymentTerms, sup.Rating, sup.Notes)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup domain.Supplier) (*domain.Supplier, error) {
	var updated domain.Supplier
	err := s.db.GetContext(ctx, &updated, `
		UPDATE suppliers
		SET name = $2, contact_person = $3, email = $4, phone = $5, address = $6, city = $7,
			state = $8, country = $9, postal_code = $10, tax_id = $11, website = $12,
			is_active = $13, payment_terms = $14, rating = $15, notes = $16, updated_at = now()
		WHERE id = $1
		RETURNING `+supplierColumns,
		sup.ID, sup.Name, sup.ContactPerson, sup.Email, sup.Phone, sup.Address, sup.City, sup.State,
		sup.Country, sup.PostalCode, sup.TaxID, sup.Website, sup.IsActive, sup.PaymentTerms, sup.Rating, sup.Notes)
	if err != nil {
		return nil, notFound(mapError(err))
	}
	return &updated, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "suppliers", id)
}

const productSelect = `
	SELECT p.id, p.sku, p.name, p.description, p.category_id, p.supplier_id,
		COALESCE(c.name, '') AS category_name, COALESCE(sp.name, '') AS supplier_name,
		p.cost_price, p.selling_price, p.margin, p.current_stock, p.min_stock_level,
		p.max_stock_level, p.unit_of_measure, p.brand, p.model, p.weight, p.dimensions,
		COALESCE(p.barcode, '') AS barcode, p.is_active, p.is_taxable, p.tax_rate,
		p.created_at, p.updated_at, p.last_restocked
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN suppliers sp ON sp.id = p.supplier_id`

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	where, args := []string{"TRUE"}, []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.ActiveOnly {
		where = append(where, "p.is_active = TRUE")
	}
	if filter.CategoryID != nil {
		where = append(where, "p.category_id = "+arg(*filter.CategoryID))
	}
	if filter.SupplierID != nil {
		where = append(where, "p.supplier_id = "+arg(*filter.SupplierID))
	}
	if filter.CategoryName != "" {
		where = append(where, "c.name ILIKE "+arg("%"+filter.CategoryName+"%"))
	}
	if filter.SupplierName != "" {
		where = append(where, "sp.name ILIKE "+arg("%"+filter.SupplierName+"%"))
	}
	if filter.LowStock {
		where = append(where, "p.current_stock <= p.min_stock_level")
	}
	if filter.OutOfStock {
		where = append(where, "p.current_stock = 0")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		n := arg("%" + search + "%")
		where = append(where, fmt.Sprintf("(p.name ILIKE %[1]s OR p.sku ILIKE %[1]s OR p.barcode ILIKE %[1]s OR p.brand ILIKE %[1]s OR p.description ILIKE %[1]s)", n))
	}
	offset := arg(filter.Skip)
	limit := arg(limitOrAll(filter.Limit))

	products := make([]domain.Product, 0, 64)
	err := s.db.SelectContext(ctx, &products, productSelect+`
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY p.id
		OFFSET `+offset+` LIMIT `+limit, args...)
	return products, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.getProduct(ctx, "p.id = $1", id)
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.getProduct(ctx, "p.sku = $1", sku)
}

func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return s.getProduct(ctx, "p.barcode = $1", barcode)
}

func (s *Store) getProduct(ctx context.Context, cond string, arg any) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.GetContext(ctx, &product, productSelect+` WHERE `+cond, arg); err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO products (
			sku, name, description, category_id, supplier_id, cost_price, selling_price, margin,
			current_stock, min_stock_level, max_stock_level, unit_of_measure, brand, model, weight,
			dimensions, barcode, is_active, is_taxable, tax_rate, created_at, last_restocked
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,now(),$21)
		RETURNING id
	`, p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID, p.CostPrice, p.SellingPrice, p.Margin,
		p.CurrentStock, p.MinStockLevel, p.MaxStockLevel, p.UnitOfMeasure, p.Brand, p.Model, p.Weight,
		p.Dimensions, nullIfEmpty(p.Barcode), p.IsActive, p.IsTaxable, p.TaxRate, p.LastRestocked).Scan(&id)
	if err != nil {
		return nil, mapError(err)
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, at time.Time, apply func(*domain.Product) error) (*domain.Product, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var p domain.Product
		if err := tx.GetContext(ctx, &p, productSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id); err != nil {
			return notFound(err)
		}
		if err := apply(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE products
			SET sku = $2, name = $3, description = $4, category_id = $5, supplier_id = $6,
				cost_price = $7, selling_price = $8, margin = $9, current_stock = $10,
				min_stock_level = $11, max_stock_level = $12, unit_of_measure = $13, brand = $14,
				model = $15, weight = $16, dimensions = $17, barcode = $18, is_active = $19,
				is_taxable = $20, tax_rate = $21, last_restocked = $22, updated_at = $23
			WHERE id = $1
		`, id, p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID, p.CostPrice, p.SellingPrice,
			p.Margin, p.CurrentStock, p.MinStockLevel, p.MaxStockLevel, p.UnitOfMeasure, p.Brand, p.Model,
			p.Weight, p.Dimensions, nullIfEmpty(p.Barcode), p.IsActive, p.IsTaxable, p.TaxRate, p.LastRestocked, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

type stockRow struct {
	ID           int64  `db:"id"`
	SKU          string `db:"sku"`
	Name         string `db:"name"`
	Barcode      string `db:"barcode"`
	CurrentStock int    `db:"current_stock"`
}

// lockProducts row-locks the given products in ascending id order. Missing ids
// are simply absent from the result.
func lockProducts(ctx context.Context, tx *sqlx.Tx, ids []int64) (map[int64]domain.Product, error) {
	rows := make([]stockRow, 0, len(ids))
	err := tx.SelectContext(ctx, &rows, `
		SELECT id, sku, name, COALESCE(barcode, '') AS barcode, current_stock
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Product, len(rows))
	for _, r := range rows {
		out[r.ID] = domain.Product{ID: r.ID, SKU: r.SKU, Name: r.Name, Barcode: r.Barcode, CurrentStock: r.CurrentStock}
	}
	return out, nil
}

func setStock(ctx context.Context, tx *sqlx.Tx, id int64, next, delta int, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET current_stock = $2,
			updated_at = $3,
			last_restocked = CASE WHEN $4 THEN $3 ELSE last_restocked END
		WHERE id = $1
	`, id, next, at, delta > 0)
	return err
}

func (s *Store) AdjustStock(ctx context.Context, productID int64, delta int, at time.Time) (*domain.Product, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := lockProducts(ctx, tx, []int64{productID})
		if err != nil {
			return err
		}
		p, ok := locked[productID]
		if !ok {
			return store.ErrNotFound
		}
		next := p.CurrentStock + delta
		if next < 0 {
			return fmt.Errorf("%w for %s. Available: %d", store.ErrInsufficientStock, p.Name, p.CurrentStock)
		}
		return setStock(ctx, tx, productID, next, delta, at)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func (s *Store) BulkAdjustStock(ctx context.Context, deltas map[int64]int, at time.Time) (map[int64]bool, error) {
	results := make(map[int64]bool, len(deltas))
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		ids := store.SortedProductIDs(deltas)
		locked, err := lockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p, ok := locked[id]
			if !ok || p.CurrentStock+deltas[id] < 0 {
				results[id] = false
				continue
			}
			if err := setStock(ctx, tx, id, p.CurrentStock+deltas[id], deltas[id], at); err != nil {
				return err
			}
			results[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// limitOrAll maps a non-positive limit to NULL, which Postgres reads as no limit.
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
