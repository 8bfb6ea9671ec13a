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

const saleSelect = `
	SELECT s.id, s.sale_number, s.customer_name, s.customer_email, s.customer_phone,
		s.total_amount, s.tax_amount, s.discount_amount, s.grand_total, s.payment_method,
		s.payment_status, s.payment_reference, s.status, s.shipping_address, s.shipping_city,
		s.shipping_state, s.shipping_country, s.shipping_pincode, s.notes, s.user_id,
		COALESCE(u.username, '') AS user_name, s.sale_date, s.created_at, s.updated_at
	FROM sales s
	LEFT JOIN users u ON u.id = s.user_id`

const saleItemColumns = `id, sale_id, product_id, quantity, unit_price, tax_rate, discount_percent,
	discount_amount, tax_amount, subtotal, total, product_name, product_sku, product_barcode, created_at`

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	where, args := []string{"TRUE"}, []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		where = append(where, "s.status = "+arg(filter.Status))
	}
	if filter.PaymentStatus != "" {
		where = append(where, "s.payment_status = "+arg(filter.PaymentStatus))
	}
	if filter.From != nil {
		where = append(where, "s.sale_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "s.sale_date < "+arg(*filter.To))
	}
	offset := arg(filter.Skip)
	limit := arg(limitOrAll(filter.Limit))

	sales := make([]domain.Sale, 0, 64)
	err := s.db.SelectContext(ctx, &sales, saleSelect+`
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY s.sale_date DESC, s.id DESC
		OFFSET `+offset+` LIMIT `+limit, args...)
	if err != nil {
		return nil, err
	}
	if filter.WithItems && len(sales) > 0 {
		if err := s.attachItems(ctx, sales); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func (s *Store) attachItems(ctx context.Context, sales []domain.Sale) error {
	ids := make([]int64, len(sales))
	index := make(map[int64]int, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
		index[sale.ID] = i
	}
	items := make([]domain.SaleItem, 0, len(sales)*2)
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+saleItemColumns+`
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id
	`, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		i := index[item.SaleID]
		sales[i].Items = append(sales[i].Items, item)
	}
	return nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.getSale(ctx, "s.id = $1", id)
}

func (s *Store) GetSaleByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error) {
	return s.getSale(ctx, "s.sale_number = $1", saleNumber)
}

func (s *Store) getSale(ctx context.Context, cond string, arg any) (*domain.Sale, error) {
	var sale domain.Sale
	if err := s.db.GetContext(ctx, &sale, saleSelect+` WHERE `+cond, arg); err != nil {
		return nil, notFound(err)
	}
	sales := []domain.Sale{sale}
	if err := s.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

// CreateSale numbers, prices and persists a sale while holding row locks on
// every referenced product. Numbering is serialized per day with an advisory
// lock so concurrent sales never compute the same sequence.
func (s *Store) CreateSale(ctx context.Context, draft domain.Sale, at time.Time) (*domain.Sale, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		prefix := store.SaleNumberPrefix(at)
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
			return err
		}

		quantities := store.QuantitiesByProduct(draft.Items)
		ids := store.SortedProductIDs(quantities)
		locked, err := lockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		if err := store.PriceSale(&draft, locked); err != nil {
			return err
		}

		var highest int
		err = tx.GetContext(ctx, &highest, `
			SELECT COALESCE(MAX(CAST(split_part(sale_number, '-', 3) AS INTEGER)), 0)
			FROM sales
			WHERE sale_number LIKE $1
		`, prefix+"%")
		if err != nil {
			return err
		}
		draft.SaleNumber = store.FormatSaleNumber(prefix, highest+1)

		for _, id := range ids {
			_, err := tx.ExecContext(ctx, `
				UPDATE products
				SET current_stock = current_stock - $2, updated_at = $3
				WHERE id = $1
			`, id, quantities[id], at)
			if err != nil {
				return err
			}
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO sales (
				sale_number, customer_name, customer_email, customer_phone, total_amount, tax_amount,
				discount_amount, grand_total, payment_method, payment_status, payment_reference, status,
				shipping_address, shipping_city, shipping_state, shipping_country, shipping_pincode,
				notes, user_id, sale_date, created_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$20)
			RETURNING id
		`, draft.SaleNumber, draft.CustomerName, draft.CustomerEmail, draft.CustomerPhone,
			draft.TotalAmount, draft.TaxAmount, draft.DiscountAmount, draft.GrandTotal,
			draft.PaymentMethod, draft.PaymentStatus, draft.PaymentReference, draft.Status,
			draft.ShippingAddress, draft.ShippingCity, draft.ShippingState, draft.ShippingCountry,
			draft.ShippingPincode, draft.Notes, draft.UserID, at).Scan(&draft.ID)
		if err != nil {
			return err
		}

		for _, item := range draft.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sale_items (
					sale_id, product_id, quantity, unit_price, tax_rate, discount_percent,
					discount_amount, tax_amount, subtotal, total, product_name, product_sku,
					product_barcode, created_at
				)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			`, draft.ID, item.ProductID, item.Quantity, item.UnitPrice, item.TaxRate, item.DiscountPercent,
				item.DiscountAmount, item.TaxAmount, item.Subtotal, item.Total, item.ProductName,
				item.ProductSKU, item.ProductBarcode, at)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, draft.ID)
}

func (s *Store) UpdateDraftSale(ctx context.Context, sale domain.Sale, at time.Time) (*domain.Sale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET customer_name = $2, customer_email = $3, customer_phone = $4, payment_method = $5,
			payment_status = $6, payment_reference = $7, status = $8, shipping_address = $9,
			shipping_city = $10, shipping_state = $11, shipping_country = $12, shipping_pincode = $13,
			notes = $14, updated_at = $16
		WHERE id = $1 AND status = $15
	`, sale.ID, sale.CustomerName, sale.CustomerEmail, sale.CustomerPhone, sale.PaymentMethod,
		sale.PaymentStatus, sale.PaymentReference, sale.Status, sale.ShippingAddress, sale.ShippingCity,
		sale.ShippingState, sale.ShippingCountry, sale.ShippingPincode, sale.Notes, domain.SaleStatusDraft, at)
	if err != nil {
		return nil, mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := s.GetSale(ctx, sale.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: only draft sales can be updated", store.ErrInvalidState)
	}
	return s.GetSale(ctx, sale.ID)
}

func (s *Store) CancelSale(ctx context.Context, id int64, at time.Time) (*domain.Sale, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockSale(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.SaleStatusCancelled {
			return fmt.Errorf("%w: sale is already cancelled", store.ErrInvalidState)
		}
		if err := restoreStock(ctx, tx, id, at); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE sales
			SET status = $2, payment_status = $3, updated_at = $4
			WHERE id = $1
		`, id, domain.SaleStatusCancelled, store.CancelledPaymentStatus(current.PaymentStatus), at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, id)
}

func (s *Store) DeleteDraftSale(ctx context.Context, id int64, at time.Time) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := lockSale(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status != domain.SaleStatusDraft {
			return fmt.Errorf("%w: only draft sales can be deleted", store.ErrInvalidState)
		}
		if err := restoreStock(ctx, tx, id, at); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
		return err
	})
}

type saleState struct {
	Status        string `db:"status"`
	PaymentStatus string `db:"payment_status"`
}

func lockSale(ctx context.Context, tx *sqlx.Tx, id int64) (saleState, error) {
	var current saleState
	err := tx.GetContext(ctx, &current, `SELECT status, payment_status FROM sales WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return current, fmt.Errorf("%w: sale %d", store.ErrNotFound, id)
	}
	return current, err
}

// restoreStock adds the sale's quantities back to its products, inactive ones
// included. Rows are locked in ascending id order.
func restoreStock(ctx context.Context, tx *sqlx.Tx, saleID int64, at time.Time) error {
	items := make([]domain.SaleItem, 0, 8)
	if err := tx.SelectContext(ctx, &items, `SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return err
	}
	quantities := store.QuantitiesByProduct(items)
	ids := store.SortedProductIDs(quantities)
	locked, err := lockProducts(ctx, tx, ids)
	if err != nil {
		return err
	}
	for _, pid := range ids {
		if _, ok := locked[pid]; !ok {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE products
			SET current_stock = current_stock + $2, updated_at = $3
			WHERE id = $1
		`, pid, quantities[pid], at)
		if err != nil {
			return err
		}
	}
	return nil
}
