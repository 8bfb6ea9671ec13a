package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
)

// SaleNumberPrefix returns the per-day prefix shared by every sale number
// issued on the calendar day of at, e.g. "SAL-20240115-".
func SaleNumberPrefix(at time.Time) string {
	return "SAL-" + at.Format("20060102") + "-"
}

func FormatSaleNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// ParseSaleSequence extracts the numeric suffix of a sale number issued under prefix.
func ParseSaleSequence(number, prefix string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// NextSaleNumber picks max(existing sequence)+1 under prefix, starting at 001.
func NextSaleNumber(prefix string, existing []string) string {
	highest := 0
	for _, number := range existing {
		if seq, ok := ParseSaleSequence(number, prefix); ok && seq > highest {
			highest = seq
		}
	}
	return FormatSaleNumber(prefix, highest+1)
}

// PriceSale checks every line against the locked product snapshot and fills
// item amounts, product snapshots and the sale totals. Repeated lines for the
// same product are checked against their cumulative quantity. It never
// mutates products; callers deduct stock only after it succeeds.
func PriceSale(draft *domain.Sale, products map[int64]domain.Product) error {
	if len(draft.Items) == 0 {
		return fmt.Errorf("%w: sale must contain at least one item", ErrValidation)
	}

	requested := make(map[int64]int, len(draft.Items))
	total := decimal.Zero
	tax := decimal.Zero
	discount := decimal.Zero
	for i := range draft.Items {
		item := &draft.Items[i]
		product, ok := products[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: product ID %d not found", ErrNotFound, item.ProductID)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		requested[item.ProductID] += item.Quantity
		if product.CurrentStock < requested[item.ProductID] {
			return fmt.Errorf("%w for %s. Available: %d", ErrInsufficientStock, product.Name, product.CurrentStock)
		}

		amounts := domain.ComputeLineAmounts(item.UnitPrice, item.Quantity, item.TaxRate, item.DiscountPercent)
		item.Subtotal = amounts.Subtotal
		item.DiscountAmount = amounts.Discount
		item.TaxAmount = amounts.Tax
		item.Total = amounts.Total
		item.ProductName = product.Name
		item.ProductSKU = product.SKU
		item.ProductBarcode = product.Barcode

		total = total.Add(amounts.Subtotal)
		tax = tax.Add(amounts.Tax)
		discount = discount.Add(amounts.Discount)
	}

	draft.TotalAmount = total
	draft.TaxAmount = tax
	draft.DiscountAmount = discount
	draft.GrandTotal = domain.GrandTotal(total, tax, discount)
	if draft.PaymentMethod == domain.PaymentMethodCash && draft.Status == domain.SaleStatusCompleted {
		draft.PaymentStatus = domain.PaymentStatusPaid
	}
	return nil
}

// QuantitiesByProduct sums item quantities per product.
func QuantitiesByProduct(items []domain.SaleItem) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, item := range items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// SortedProductIDs returns the keys in ascending order, which is the order
// product rows are locked in.
func SortedProductIDs(quantities map[int64]int) []int64 {
	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CancelledPaymentStatus is the payment status a sale moves to when cancelled.
func CancelledPaymentStatus(current string) string {
	if current == domain.PaymentStatusPaid {
		return domain.PaymentStatusRefunded
	}
	return domain.PaymentStatusPending
}
