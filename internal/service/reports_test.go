package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func saleOn(at time.Time, total string, method string, items ...domain.SaleItem) domain.Sale {
	return domain.Sale{
		SaleDate:      at,
		GrandTotal:    decimal.RequireFromString(total),
		PaymentMethod: method,
		Status:        domain.SaleStatusCompleted,
		Items:         items,
	}
}

func lineItem(productID int64, name string, qty int, total string) domain.SaleItem {
	return domain.SaleItem{
		ProductID:   productID,
		ProductName: name,
		ProductSKU:  name + "-SKU",
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(total).Div(decimal.NewFromInt(int64(qty))),
		Total:       decimal.RequireFromString(total),
	}
}

func TestPeriodKey(t *testing.T) {
	cases := []struct {
		at      time.Time
		groupBy string
		want    string
	}{
		{day(2024, 1, 1), domain.GroupByWeek, "2024-W00"},
		{day(2024, 1, 6), domain.GroupByWeek, "2024-W00"},
		{day(2024, 1, 7), domain.GroupByWeek, "2024-W01"},
		{day(2024, 1, 14), domain.GroupByWeek, "2024-W02"},
		{day(2024, 3, 9), domain.GroupByDay, "2024-03-09"},
		{day(2024, 3, 9), domain.GroupByMonth, "2024-03"},
	}
	for _, tc := range cases {
		if got := PeriodKey(tc.at, tc.groupBy, time.UTC); got != tc.want {
			t.Fatalf("PeriodKey(%s, %s) = %s, want %s", tc.at.Format(time.DateOnly), tc.groupBy, got, tc.want)
		}
	}
}

func TestBuildSalesReportEmpty(t *testing.T) {
	report := BuildSalesReport(nil, domain.GroupByDay, day(2024, 1, 1), day(2024, 1, 15), time.UTC)
	if report.Message != domain.NoSalesDataMessage {
		t.Fatalf("expected empty message, got %q", report.Message)
	}
	if report.Period.Days != 15 {
		t.Fatalf("expected 15 days, got %d", report.Period.Days)
	}
	if report.Data == nil || len(report.Data) != 0 || report.Summary != nil {
		t.Fatalf("expected empty data and no summary, got %+v", report)
	}
}

func TestBuildSalesReportByDayAndProduct(t *testing.T) {
	sales := []domain.Sale{
		saleOn(day(2024, 1, 2), "100", domain.PaymentMethodCash, lineItem(1, "Pen", 2, "100")),
		saleOn(day(2024, 1, 2), "50", domain.PaymentMethodCard, lineItem(2, "Pad", 1, "50")),
		saleOn(day(2024, 1, 3), "30", domain.PaymentMethodCash, lineItem(1, "Pen", 1, "30")),
	}

	report := BuildSalesReport(sales, domain.GroupByDay, day(2024, 1, 1), day(2024, 1, 3), time.UTC)
	if report.TotalSales != 3 || !report.TotalRevenue.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected totals %d/%s", report.TotalSales, report.TotalRevenue)
	}
	if !report.AverageOrderValue.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected average 60, got %s", report.AverageOrderValue)
	}
	if report.TotalProductsSold != 4 {
		t.Fatalf("expected 4 units sold, got %d", report.TotalProductsSold)
	}
	if len(report.Data) != 2 || report.Data[0].Period != "2024-01-02" || report.Data[0].SalesCount != 2 {
		t.Fatalf("unexpected rows %+v", report.Data)
	}
	if !report.Data[0].AvgOrderValue.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected day average 75, got %s", report.Data[0].AvgOrderValue)
	}
	if report.Summary == nil || report.Summary.PaymentMethods[domain.PaymentMethodCash] != 2 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if !report.Summary.MaxOrder.Equal(decimal.NewFromInt(100)) || !report.Summary.MinOrder.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected min/max %s/%s", report.Summary.MinOrder, report.Summary.MaxOrder)
	}

	byProduct := BuildSalesReport(sales, domain.GroupByProduct, day(2024, 1, 1), day(2024, 1, 3), time.UTC)
	if len(byProduct.Products) != 2 || byProduct.Products[0].ProductName != "Pen" {
		t.Fatalf("expected Pen first by revenue, got %+v", byProduct.Products)
	}
	if byProduct.Products[0].TotalQuantity != 3 || !byProduct.Products[0].TotalRevenue.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("unexpected pen row %+v", byProduct.Products[0])
	}
	if byProduct.ProductSummary == nil || byProduct.ProductSummary.TopProduct != "Pen" {
		t.Fatalf("unexpected product summary %+v", byProduct.ProductSummary)
	}
}

func TestTopProductsBy(t *testing.T) {
	sales := []domain.Sale{
		saleOn(day(2024, 1, 2), "100", domain.PaymentMethodCash, lineItem(1, "Pen", 10, "100")),
		saleOn(day(2024, 1, 2), "500", domain.PaymentMethodCash, lineItem(2, "Lamp", 1, "500")),
	}
	byQty := TopProductsBy(sales, 1, false)
	if len(byQty) != 1 || byQty[0].ProductID != 1 {
		t.Fatalf("expected Pen by quantity, got %+v", byQty)
	}
	byRevenue := TopProductsBy(sales, 5, true)
	if len(byRevenue) != 2 || byRevenue[0].ProductID != 2 {
		t.Fatalf("expected Lamp by revenue, got %+v", byRevenue)
	}
}

func TestFillDailySalesIncludesEmptyDays(t *testing.T) {
	sales := []domain.Sale{saleOn(day(2024, 1, 2), "10", domain.PaymentMethodCash)}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := FillDailySales(sales, start, 3, time.UTC)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].SalesCount != 0 || rows[1].SalesCount != 1 || rows[2].SalesCount != 0 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func inventoryFixture() []domain.Product {
	return []domain.Product{
		{ID: 1, SKU: "A", IsActive: true, CurrentStock: 0, MinStockLevel: 10, MaxStockLevel: 100, CostPrice: decimal.NewFromInt(5), SellingPrice: decimal.NewFromInt(8)},
		{ID: 2, SKU: "B", IsActive: true, CurrentStock: 5, MinStockLevel: 10, MaxStockLevel: 100, CostPrice: decimal.NewFromInt(5), SellingPrice: decimal.NewFromInt(8)},
		{ID: 3, SKU: "C", IsActive: true, CurrentStock: 150, MinStockLevel: 10, MaxStockLevel: 100, CostPrice: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(3)},
		{ID: 4, SKU: "D", IsActive: false, CurrentStock: 1, MinStockLevel: 10, MaxStockLevel: 100},
	}
}

func TestBuildInventoryReportTypes(t *testing.T) {
	products := inventoryFixture()

	summary, err := BuildInventoryReport(products, domain.InventoryStockSummary, nil, nil)
	if err != nil {
		t.Fatalf("stock summary: %v", err)
	}
	if summary.TotalProducts != 3 || summary.Summary.OverStockCount != 1 || summary.Summary.TotalStockUnits != 155 {
		t.Fatalf("unexpected summary %+v", summary.Summary)
	}
	if !summary.TotalStockValue.Equal(decimal.NewFromInt(325)) {
		t.Fatalf("expected stock value 325, got %s", summary.TotalStockValue)
	}
	if summary.Data[0].Category != notAvailable {
		t.Fatalf("expected placeholder category, got %q", summary.Data[0].Category)
	}

	low, _ := BuildInventoryReport(products, domain.InventoryLowStock, nil, nil)
	if low.TotalProducts != 2 {
		t.Fatalf("expected 2 low stock rows, got %d", low.TotalProducts)
	}
	threshold := 0
	lowZero, _ := BuildInventoryReport(products, domain.InventoryLowStock, &threshold, nil)
	if lowZero.TotalProducts != 1 || lowZero.Data[0].SKU != "A" {
		t.Fatalf("expected threshold to override min level, got %+v", lowZero.Data)
	}

	out, _ := BuildInventoryReport(products, domain.InventoryOutOfStock, nil, nil)
	if out.TotalProducts != 1 || out.Data[0].StockStatus != domain.StockStatus(0, 10) {
		t.Fatalf("unexpected out of stock rows %+v", out.Data)
	}

	slow, _ := BuildInventoryReport(products, domain.InventorySlowMoving, nil, map[int64]bool{2: true})
	if slow.TotalProducts != 1 || slow.Data[0].SKU != "C" {
		t.Fatalf("expected only C as slow moving, got %+v", slow.Data)
	}

	if _, err := BuildInventoryReport(products, "bogus", nil, nil); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildProductReportAverages(t *testing.T) {
	m1, m2 := 50.0, 25.0
	cat := int64(7)
	products := []domain.Product{
		{ID: 1, IsActive: true, CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(15), Margin: &m1, CurrentStock: 2, CategoryID: &cat},
		{ID: 2, IsActive: false, CostPrice: decimal.NewFromInt(20), SellingPrice: decimal.NewFromInt(25), Margin: &m2, CurrentStock: 1, CategoryID: &cat},
		{ID: 3, IsActive: true, CostPrice: decimal.Zero, SellingPrice: decimal.NewFromInt(5)},
	}
	report := BuildProductReport(products)
	if report.Summary.TotalProducts != 3 || report.Summary.ActiveProducts != 2 {
		t.Fatalf("unexpected counts %+v", report.Summary)
	}
	if report.Summary.AvgMargin == nil || *report.Summary.AvgMargin != 37.5 {
		t.Fatalf("expected avg margin 37.5 over products with margins, got %v", report.Summary.AvgMargin)
	}
	if !report.Summary.AvgCostPrice.Equal(decimal.NewFromInt(10)) || !report.AveragePrice.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected averages %s/%s", report.Summary.AvgCostPrice, report.AveragePrice)
	}
	if !report.TotalStockValue.Equal(decimal.NewFromInt(40)) || report.Summary.CategoriesCount != 1 {
		t.Fatalf("unexpected stock value or categories %+v", report.Summary)
	}
}

func TestSalesReportThroughService(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	p := mustProduct(t, svc, "SKU-R", "5", "10", 10)
	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{{ProductID: p.ID, Quantity: 2, UnitPrice: dec("10"), TaxRate: floatPtr(0)}},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	report, err := svc.SalesReport(ctx, domain.SalesReportRequest{StartDate: "2024-01-15", EndDate: "2024-01-15"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalSales != 1 || !report.TotalRevenue.Equal(dec("20")) || report.Period.Days != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	if _, err := svc.SalesReport(ctx, domain.SalesReportRequest{StartDate: "2024-01-16", EndDate: "2024-01-15"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
	if _, err := svc.SalesReport(ctx, domain.SalesReportRequest{StartDate: "2024-01-15"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for missing end date, got %v", err)
	}

	slow, err := svc.InventoryReport(ctx, domain.InventoryReportRequest{ReportType: domain.InventorySlowMoving})
	if err != nil {
		t.Fatalf("inventory report: %v", err)
	}
	if slow.TotalProducts != 0 {
		t.Fatalf("recently sold product must not be slow moving, got %+v", slow.Data)
	}
}

func TestParseDateRange(t *testing.T) {
	svc := newTestService()
	from, to, err := svc.ParseDateRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !from.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !to.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window %s - %s", from, to)
	}
	if _, _, err := svc.ParseDateRange("01/01/2024", ""); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
