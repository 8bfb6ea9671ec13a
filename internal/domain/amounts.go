package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmounts holds the per-item money breakdown, each part rounded to cents.
type LineAmounts struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLineAmounts prices one sale line. Tax applies to the discounted
// subtotal and the total is assembled from the rounded parts, so
// Total == Subtotal - Discount + Tax holds exactly.
func ComputeLineAmounts(unitPrice decimal.Decimal, qty int, taxRate, discountPercent float64) LineAmounts {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
	discount := subtotal.Mul(decimal.NewFromFloat(discountPercent)).Div(hundred).Round(2)
	tax := subtotal.Sub(discount).Mul(decimal.NewFromFloat(taxRate)).Div(hundred).Round(2)
	return LineAmounts{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}

// GrandTotal applies the sale-level formula total + tax - discount.
func GrandTotal(total, tax, discount decimal.Decimal) decimal.Decimal {
	return total.Add(tax).Sub(discount)
}

// ComputeMargin returns the markup over cost as a percentage, or nil when the
// cost is zero.
func ComputeMargin(cost, selling decimal.Decimal) *float64 {
	if cost.IsZero() {
		return nil
	}
	margin, _ := selling.Sub(cost).Div(cost).Mul(hundred).Round(2).Float64()
	return &margin
}

func StockStatus(stock, minLevel int) string {
	switch {
	case stock == 0:
		return "Out of Stock"
	case stock <= minLevel:
		return "Low Stock"
	case stock <= minLevel*2:
		return "Adequate"
	default:
		return "Over Stock"
	}
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodBankTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartial, PaymentStatusRefunded:
		return true
	}
	return false
}

func ValidSaleStatus(status string) bool {
	switch status {
	case SaleStatusDraft, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}
