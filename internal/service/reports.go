package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"stockpos/backend/internal/cache"
	"stockpos/backend/internal/domain"
)

const (
	notAvailable        = "N/A"
	uncategorized       = "Uncategorized"
	defaultWindowDays   = 30
	maxWindowDays       = 365
	slowMovingDefault   = 30
	quickTopProducts    = 5
	dashboardTopProduct = 10
	trendDays           = 7
)

// SalesReport aggregates completed sales between two inclusive calendar days.
func (s *Service) SalesReport(ctx context.Context, req domain.SalesReportRequest) (domain.SalesReport, error) {
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return domain.SalesReport{}, invalid("start_date and end_date are required")
	}
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.StartDate), s.loc)
	if err != nil {
		return domain.SalesReport{}, invalid("start_date must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.EndDate), s.loc)
	if err != nil {
		return domain.SalesReport{}, invalid("end_date must be YYYY-MM-DD")
	}
	if start.After(end) {
		return domain.SalesReport{}, invalid("start_date must not be after end_date")
	}
	return s.salesReport(ctx, start, end, defaultString(req.GroupBy, domain.GroupByDay))
}

// DailySalesReport is the day-grouped report over the last days days.
func (s *Service) DailySalesReport(ctx context.Context, days int) (domain.SalesReport, error) {
	days = clampWindow(days)
	today := s.today()
	return s.salesReport(ctx, today.AddDate(0, 0, -days), today, domain.GroupByDay)
}

// TopProductsSalesReport is the product-grouped report truncated to limit rows.
func (s *Service) TopProductsSalesReport(ctx context.Context, days, limit int) (domain.SalesReport, error) {
	days = clampWindow(days)
	limit = clampInt(limit, 10, 1, 100)
	today := s.today()
	report, err := s.salesReport(ctx, today.AddDate(0, 0, -days), today, domain.GroupByProduct)
	if err != nil {
		return domain.SalesReport{}, err
	}
	if len(report.Products) > limit {
		report.Products = report.Products[:limit]
	}
	return report, nil
}

// MonthlySalesReport starts months*30 days before the first of the current
// month and groups by month.
func (s *Service) MonthlySalesReport(ctx context.Context, months int) (domain.SalesReport, error) {
	months = clampInt(months, 6, 1, 24)
	today := s.today()
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	return s.salesReport(ctx, firstOfMonth.AddDate(0, 0, -30*months), today, domain.GroupByMonth)
}

func (s *Service) salesReport(ctx context.Context, start, end time.Time, groupBy string) (domain.SalesReport, error) {
	from, to := start, end.AddDate(0, 0, 1)
	sales, err := s.completedSales(ctx, &from, &to)
	if err != nil {
		return domain.SalesReport{}, err
	}
	report := BuildSalesReport(sales, groupBy, start, end, s.loc)
	report.ReportDate = s.clock()
	return report, nil
}

func (s *Service) InventoryReport(ctx context.Context, req domain.InventoryReportRequest) (domain.InventoryReport, error) {
	reportType := defaultString(req.ReportType, domain.InventoryStockSummary)
	if req.Threshold != nil && *req.Threshold < 0 {
		return domain.InventoryReport{}, invalid("threshold must not be negative")
	}

	products, err := s.repo.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true})
	if err != nil {
		return domain.InventoryReport{}, err
	}

	var soldRecently map[int64]bool
	if reportType == domain.InventorySlowMoving {
		days := slowMovingDefault
		if req.Threshold != nil && *req.Threshold > 0 {
			days = *req.Threshold
		}
		from := s.clock().AddDate(0, 0, -days)
		sales, err := s.completedSales(ctx, &from, nil)
		if err != nil {
			return domain.InventoryReport{}, err
		}
		soldRecently = make(map[int64]bool)
		for _, sale := range sales {
			for _, item := range sale.Items {
				soldRecently[item.ProductID] = true
			}
		}
	}

	report, err := BuildInventoryReport(products, reportType, req.Threshold, soldRecently)
	if err != nil {
		return domain.InventoryReport{}, err
	}
	report.ReportDate = s.clock()
	return report, nil
}

func (s *Service) ProductReport(ctx context.Context, req domain.ProductReportRequest) (domain.ProductReport, error) {
	products, err := s.repo.ListProducts(ctx, domain.ProductFilter{
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		ActiveOnly: !req.IncludeInactive,
	})
	if err != nil {
		return domain.ProductReport{}, err
	}
	report := BuildProductReport(products)
	report.Filters = req
	report.ReportDate = s.clock()
	return report, nil
}

// QuickSalesSummary covers [today-days, today] plus a trend of the seven
// days before today.
func (s *Service) QuickSalesSummary(ctx context.Context, days int) (domain.QuickSalesSummary, error) {
	days = clampWindow(days)
	today := s.today()
	key := cache.Key("quick-sales", strconv.Itoa(days), today.Format(dateLayout))

	return cached(ctx, s, key, func() (domain.QuickSalesSummary, error) {
		windowStart := today.AddDate(0, 0, -days)
		trendStart := today.AddDate(0, 0, -trendDays)
		from, to := windowStart, today.AddDate(0, 0, 1)
		if trendStart.Before(from) {
			from = trendStart
		}
		sales, err := s.completedSales(ctx, &from, &to)
		if err != nil {
			return domain.QuickSalesSummary{}, err
		}

		var windowSales, trendSales []domain.Sale
		for _, sale := range sales {
			if !sale.SaleDate.Before(windowStart) {
				windowSales = append(windowSales, sale)
			}
			if !sale.SaleDate.Before(trendStart) && sale.SaleDate.Before(today) {
				trendSales = append(trendSales, sale)
			}
		}

		summary := domain.QuickSalesSummary{PeriodDays: days}
		summary.TotalSales, summary.TotalRevenue, summary.AvgOrderValue = salesTotals(windowSales)
		summary.TopProducts = TopProductsBy(windowSales, quickTopProducts, false)
		summary.DailyTrend = FillDailySales(trendSales, trendStart, trendDays, s.loc)
		return summary, nil
	})
}

func (s *Service) QuickInventorySummary(ctx context.Context) (domain.QuickInventorySummary, error) {
	return cached(ctx, s, cache.Key("quick-inventory"), func() (domain.QuickInventorySummary, error) {
		products, err := s.repo.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true})
		if err != nil {
			return domain.QuickInventorySummary{}, err
		}
		return BuildQuickInventory(products), nil
	})
}

// SalesDashboard fans out three independent reads: all completed sales,
// today's sales and the last 30 days with items.
func (s *Service) SalesDashboard(ctx context.Context) (domain.SalesDashboardSummary, error) {
	today := s.today()
	key := cache.Key("sales-dashboard", today.Format(dateLayout))

	return cached(ctx, s, key, func() (domain.SalesDashboardSummary, error) {
		var all, todays, recent []domain.Sale
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			all, err = s.repo.ListSales(gctx, domain.SaleFilter{Status: domain.SaleStatusCompleted})
			return err
		})
		g.Go(func() error {
			from, to := today, today.AddDate(0, 0, 1)
			var err error
			todays, err = s.repo.ListSales(gctx, domain.SaleFilter{Status: domain.SaleStatusCompleted, From: &from, To: &to})
			return err
		})
		g.Go(func() error {
			from := today.AddDate(0, 0, -defaultWindowDays)
			var err error
			recent, err = s.completedSales(gctx, &from, nil)
			return err
		})
		if err := g.Wait(); err != nil {
			return domain.SalesDashboardSummary{}, err
		}

		var summary domain.SalesDashboardSummary
		summary.TotalSales, summary.TotalRevenue, summary.AvgOrderValue = salesTotals(all)
		summary.TodaySales, summary.TodayRevenue, _ = salesTotals(todays)
		summary.MostSold = TopProductsBy(recent, dashboardTopProduct, false)
		return summary, nil
	})
}

// DailySales lists days with completed sales inside [today-days, today].
func (s *Service) DailySales(ctx context.Context, days int) ([]domain.DailySales, error) {
	days = clampWindow(days)
	today := s.today()
	from, to := today.AddDate(0, 0, -days), today.AddDate(0, 0, 1)
	sales, err := s.repo.ListSales(ctx, domain.SaleFilter{Status: domain.SaleStatusCompleted, From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	return GroupDailySales(sales, s.loc), nil
}

func (s *Service) SalesByProduct(ctx context.Context, productID *int64, start, end string) (domain.SalesByProductReport, error) {
	from, to, err := s.ParseDateRange(start, end)
	if err != nil {
		return domain.SalesByProductReport{}, err
	}
	sales, err := s.completedSales(ctx, from, to)
	if err != nil {
		return domain.SalesByProductReport{}, err
	}
	if productID != nil {
		sales = onlyProduct(sales, *productID)
	}

	rows, summary := AggregateProductSales(sales)
	return domain.SalesByProductReport{
		ProductID:     productID,
		StartDate:     start,
		EndDate:       end,
		Products:      rows,
		TotalQuantity: summary.TotalQuantity,
		TotalRevenue:  summary.TotalRevenue,
	}, nil
}

func (s *Service) TopProducts(ctx context.Context, limit, days int) (domain.TopProductsReport, error) {
	limit = clampInt(limit, 10, 1, 50)
	days = clampWindow(days)
	today := s.today()
	from, to := today.AddDate(0, 0, -days), today.AddDate(0, 0, 1)
	sales, err := s.completedSales(ctx, &from, &to)
	if err != nil {
		return domain.TopProductsReport{}, err
	}
	return domain.TopProductsReport{
		PeriodDays:    days,
		TopByQuantity: TopProductsBy(sales, limit, false),
		TopByRevenue:  TopProductsBy(sales, limit, true),
	}, nil
}

func (s *Service) completedSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, domain.SaleFilter{
		Status:    domain.SaleStatusCompleted,
		From:      from,
		To:        to,
		WithItems: true,
	})
}

func (s *Service) today() time.Time {
	now := s.clock()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// BuildSalesReport aggregates sales into period rows, or product rows when
// groupBy is product. Sales must already be filtered to completed ones inside
// [start, end].
func BuildSalesReport(sales []domain.Sale, groupBy string, start, end time.Time, loc *time.Location) domain.SalesReport {
	report := domain.SalesReport{
		GroupBy: groupBy,
		Period: domain.ReportPeriod{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
			Days:      int(math.Round(end.Sub(start).Hours()/24)) + 1,
		},
		Data:              []domain.SalesPeriodRow{},
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	if len(sales) == 0 {
		report.Message = domain.NoSalesDataMessage
		return report
	}

	report.TotalSales, report.TotalRevenue, report.AverageOrderValue = salesTotals(sales)
	for _, sale := range sales {
		for _, item := range sale.Items {
			report.TotalProductsSold += item.Quantity
		}
	}

	if groupBy == domain.GroupByProduct {
		rows, summary := AggregateProductSales(sales)
		report.Products = rows
		report.ProductSummary = &summary
		return report
	}

	report.Data = GroupSalesByPeriod(sales, groupBy, loc)
	summary := SummarizeSales(sales)
	report.Summary = &summary
	return report
}

// PeriodKey formats t for grouping. Week keys follow strftime %Y-W%U:
// weeks start on Sunday and days before the first Sunday are week 00.
func PeriodKey(t time.Time, groupBy string, loc *time.Location) string {
	t = t.In(loc)
	switch groupBy {
	case domain.GroupByDay:
		return t.Format(dateLayout)
	case domain.GroupByWeek:
		return fmt.Sprintf("%04d-W%02d", t.Year(), (t.YearDay()+6-int(t.Weekday()))/7)
	case domain.GroupByMonth:
		return t.Format("2006-01")
	default:
		return "All"
	}
}

func GroupSalesByPeriod(sales []domain.Sale, groupBy string, loc *time.Location) []domain.SalesPeriodRow {
	index := make(map[string]*domain.SalesPeriodRow)
	for _, sale := range sales {
		key := PeriodKey(sale.SaleDate, groupBy, loc)
		row, ok := index[key]
		if !ok {
			row = &domain.SalesPeriodRow{Period: key, TotalRevenue: decimal.Zero}
			index[key] = row
		}
		row.SalesCount++
		row.TotalRevenue = row.TotalRevenue.Add(sale.GrandTotal)
		row.TotalItems += len(sale.Items)
	}

	rows := make([]domain.SalesPeriodRow, 0, len(index))
	for _, row := range index {
		row.AvgOrderValue = average(row.TotalRevenue, row.SalesCount)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows
}

func SummarizeSales(sales []domain.Sale) domain.SalesSummary {
	summary := domain.SalesSummary{
		TotalRevenue:   decimal.Zero,
		AvgOrderValue:  decimal.Zero,
		MaxOrder:       decimal.Zero,
		MinOrder:       decimal.Zero,
		PaymentMethods: map[string]int{},
	}
	customers := make(map[string]bool)
	for i, sale := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(sale.GrandTotal)
		if i == 0 || sale.GrandTotal.GreaterThan(summary.MaxOrder) {
			summary.MaxOrder = sale.GrandTotal
		}
		if i == 0 || sale.GrandTotal.LessThan(summary.MinOrder) {
			summary.MinOrder = sale.GrandTotal
		}
		if name := strings.TrimSpace(sale.CustomerName); name != "" {
			customers[name] = true
		}
		summary.PaymentMethods[sale.PaymentMethod]++
	}
	summary.TotalSales = len(sales)
	summary.AvgOrderValue = average(summary.TotalRevenue, len(sales))
	summary.TotalCustomers = len(customers)
	return summary
}

// AggregateProductSales groups sale items by product name and SKU, ordered
// by revenue descending.
func AggregateProductSales(sales []domain.Sale) ([]domain.ProductSalesRow, domain.ProductSalesSummary) {
	type productKey struct{ name, sku string }
	type acc struct {
		row      domain.ProductSalesRow
		priceSum decimal.Decimal
		lines    int
	}
	index := make(map[productKey]*acc)
	for _, sale := range sales {
		for _, item := range sale.Items {
			key := productKey{item.ProductName, item.ProductSKU}
			a, ok := index[key]
			if !ok {
				a = &acc{row: domain.ProductSalesRow{
					ProductName:  item.ProductName,
					ProductSKU:   item.ProductSKU,
					TotalRevenue: decimal.Zero,
				}, priceSum: decimal.Zero}
				index[key] = a
			}
			a.row.TotalQuantity += item.Quantity
			a.row.TotalRevenue = a.row.TotalRevenue.Add(item.Total)
			a.priceSum = a.priceSum.Add(item.UnitPrice)
			a.lines++
		}
	}

	rows := make([]domain.ProductSalesRow, 0, len(index))
	summary := domain.ProductSalesSummary{TotalRevenue: decimal.Zero, TopProductRevenue: decimal.Zero}
	for _, a := range index {
		a.row.AvgPrice = average(a.priceSum, a.lines)
		rows = append(rows, a.row)
		summary.TotalQuantity += a.row.TotalQuantity
		summary.TotalRevenue = summary.TotalRevenue.Add(a.row.TotalRevenue)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalRevenue.Equal(rows[j].TotalRevenue) {
			return rows[i].TotalRevenue.GreaterThan(rows[j].TotalRevenue)
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	summary.TotalProducts = len(rows)
	if len(rows) > 0 {
		summary.TopProduct = rows[0].ProductName
		summary.TopProductRevenue = rows[0].TotalRevenue
	}
	return rows, summary
}

// TopProductsBy ranks products by quantity, or by revenue when byRevenue is
// set, and keeps the first limit entries.
func TopProductsBy(sales []domain.Sale, limit int, byRevenue bool) []domain.TopProduct {
	index := make(map[int64]*domain.TopProduct)
	order := make([]int64, 0)
	for _, sale := range sales {
		for _, item := range sale.Items {
			p, ok := index[item.ProductID]
			if !ok {
				p = &domain.TopProduct{
					ProductID:    item.ProductID,
					ProductName:  item.ProductName,
					ProductSKU:   item.ProductSKU,
					TotalRevenue: decimal.Zero,
				}
				index[item.ProductID] = p
				order = append(order, item.ProductID)
			}
			p.TotalQuantity += item.Quantity
			p.TotalRevenue = p.TotalRevenue.Add(item.Total)
		}
	}

	out := make([]domain.TopProduct, 0, len(order))
	for _, id := range order {
		out = append(out, *index[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if byRevenue {
			if !out[i].TotalRevenue.Equal(out[j].TotalRevenue) {
				return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
			}
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GroupDailySales returns one row per calendar day that has sales, oldest first.
func GroupDailySales(sales []domain.Sale, loc *time.Location) []domain.DailySales {
	index := make(map[string]*domain.DailySales)
	for _, sale := range sales {
		key := PeriodKey(sale.SaleDate, domain.GroupByDay, loc)
		row, ok := index[key]
		if !ok {
			row = &domain.DailySales{Date: key, TotalRevenue: decimal.Zero}
			index[key] = row
		}
		row.SalesCount++
		row.TotalRevenue = row.TotalRevenue.Add(sale.GrandTotal)
	}
	out := make([]domain.DailySales, 0, len(index))
	for _, row := range index {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// FillDailySales is GroupDailySales over exactly days consecutive days from
// start, with zero rows for days without sales.
func FillDailySales(sales []domain.Sale, start time.Time, days int, loc *time.Location) []domain.DailySales {
	byDay := make(map[string]domain.DailySales)
	for _, row := range GroupDailySales(sales, loc) {
		byDay[row.Date] = row
	}
	out := make([]domain.DailySales, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(dateLayout)
		row, ok := byDay[key]
		if !ok {
			row = domain.DailySales{Date: key, TotalRevenue: decimal.Zero}
		}
		out = append(out, row)
	}
	return out
}

// BuildInventoryReport selects rows for reportType from active products.
// soldRecently is only consulted for slow_moving.
func BuildInventoryReport(products []domain.Product, reportType string, threshold *int, soldRecently map[int64]bool) (domain.InventoryReport, error) {
	var include func(p domain.Product) bool
	switch reportType {
	case domain.InventoryStockSummary:
		include = func(domain.Product) bool { return true }
	case domain.InventoryLowStock:
		include = func(p domain.Product) bool {
			if threshold != nil {
				return p.CurrentStock <= *threshold
			}
			return p.CurrentStock <= p.MinStockLevel
		}
	case domain.InventoryOutOfStock:
		include = func(p domain.Product) bool { return p.CurrentStock == 0 }
	case domain.InventorySlowMoving:
		include = func(p domain.Product) bool { return p.CurrentStock > 0 && !soldRecently[p.ID] }
	default:
		return domain.InventoryReport{}, invalid("unknown inventory report type %q", reportType)
	}

	report := domain.InventoryReport{ReportType: reportType, Threshold: threshold, Data: []domain.InventoryRow{}}
	summary := domain.InventoryReportSummary{TotalStockValue: decimal.Zero, TotalSellingValue: decimal.Zero}
	for _, p := range products {
		if !p.IsActive || !include(p) {
			continue
		}
		units := decimal.NewFromInt(int64(p.CurrentStock))
		row := domain.InventoryRow{
			SKU:           p.SKU,
			Name:          p.Name,
			Category:      defaultString(p.CategoryName, notAvailable),
			Supplier:      defaultString(p.SupplierName, notAvailable),
			CurrentStock:  p.CurrentStock,
			MinStockLevel: p.MinStockLevel,
			MaxStockLevel: p.MaxStockLevel,
			CostPrice:     p.CostPrice,
			SellingPrice:  p.SellingPrice,
			StockValue:    units.Mul(p.CostPrice).Round(2),
			SellingValue:  units.Mul(p.SellingPrice).Round(2),
			StockStatus:   domain.StockStatus(p.CurrentStock, p.MinStockLevel),
		}
		report.Data = append(report.Data, row)

		summary.TotalStockUnits += p.CurrentStock
		summary.TotalStockValue = summary.TotalStockValue.Add(row.StockValue)
		summary.TotalSellingValue = summary.TotalSellingValue.Add(row.SellingValue)
		if p.CurrentStock <= p.MinStockLevel {
			summary.LowStockCount++
		}
		if p.CurrentStock == 0 {
			summary.OutOfStockCount++
		}
		if p.CurrentStock > p.MaxStockLevel {
			summary.OverStockCount++
		}
	}
	summary.TotalProducts = len(report.Data)
	if summary.TotalProducts > 0 {
		summary.AvgStockLevel = roundFloat(float64(summary.TotalStockUnits) / float64(summary.TotalProducts))
	}

	report.Summary = summary
	report.TotalProducts = summary.TotalProducts
	report.TotalStockValue = summary.TotalStockValue
	report.LowStockCount = summary.LowStockCount
	report.OutOfStockCount = summary.OutOfStockCount
	return report, nil
}

func BuildProductReport(products []domain.Product) domain.ProductReport {
	report := domain.ProductReport{Data: make([]domain.ProductReportRow, 0, len(products))}
	summary := domain.ProductReportSummary{
		TotalStockValue: decimal.Zero,
		AvgCostPrice:    decimal.Zero,
		AvgSellingPrice: decimal.Zero,
	}
	costSum, sellSum := decimal.Zero, decimal.Zero
	marginSum, margins := 0.0, 0
	categories := make(map[int64]bool)
	suppliers := make(map[int64]bool)

	for _, p := range products {
		stockValue := decimal.NewFromInt(int64(p.CurrentStock)).Mul(p.CostPrice).Round(2)
		report.Data = append(report.Data, domain.ProductReportRow{
			ID:            p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			Category:      defaultString(p.CategoryName, notAvailable),
			Supplier:      defaultString(p.SupplierName, notAvailable),
			CostPrice:     p.CostPrice,
			SellingPrice:  p.SellingPrice,
			MarginPercent: p.Margin,
			CurrentStock:  p.CurrentStock,
			StockValue:    stockValue,
			IsActive:      p.IsActive,
		})

		if p.IsActive {
			summary.ActiveProducts++
		}
		summary.TotalStockValue = summary.TotalStockValue.Add(stockValue)
		costSum = costSum.Add(p.CostPrice)
		sellSum = sellSum.Add(p.SellingPrice)
		if p.Margin != nil {
			marginSum += *p.Margin
			margins++
		}
		if p.CategoryID != nil {
			categories[*p.CategoryID] = true
		}
		if p.SupplierID != nil {
			suppliers[*p.SupplierID] = true
		}
	}

	summary.TotalProducts = len(products)
	summary.AvgCostPrice = average(costSum, len(products))
	summary.AvgSellingPrice = average(sellSum, len(products))
	if margins > 0 {
		avg := roundFloat(marginSum / float64(margins))
		summary.AvgMargin = &avg
	}
	summary.CategoriesCount = len(categories)
	summary.SuppliersCount = len(suppliers)

	report.Summary = summary
	report.TotalProducts = summary.TotalProducts
	report.AveragePrice = summary.AvgSellingPrice
	report.TotalStockValue = summary.TotalStockValue
	return report
}

func BuildQuickInventory(products []domain.Product) domain.QuickInventorySummary {
	summary := domain.QuickInventorySummary{TotalStockValue: decimal.Zero}
	perCategory := make(map[string]int)
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		summary.TotalProducts++
		summary.TotalStockValue = summary.TotalStockValue.Add(decimal.NewFromInt(int64(p.CurrentStock)).Mul(p.CostPrice))
		if p.CurrentStock <= p.MinStockLevel {
			summary.LowStockCount++
		}
		if p.CurrentStock == 0 {
			summary.OutOfStockCount++
		}
		perCategory[defaultString(p.CategoryName, uncategorized)]++
	}

	summary.CategoryDistribution = make([]domain.CategoryCount, 0, len(perCategory))
	for name, count := range perCategory {
		summary.CategoryDistribution = append(summary.CategoryDistribution, domain.CategoryCount{Category: name, ProductCount: count})
	}
	sort.Slice(summary.CategoryDistribution, func(i, j int) bool {
		return summary.CategoryDistribution[i].Category < summary.CategoryDistribution[j].Category
	})
	summary.TotalStockValue = summary.TotalStockValue.Round(2)
	return summary
}

func salesTotals(sales []domain.Sale) (int, decimal.Decimal, decimal.Decimal) {
	revenue := decimal.Zero
	for _, sale := range sales {
		revenue = revenue.Add(sale.GrandTotal)
	}
	return len(sales), revenue, average(revenue, len(sales))
}

func onlyProduct(sales []domain.Sale, productID int64) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		items := make([]domain.SaleItem, 0, len(sale.Items))
		for _, item := range sale.Items {
			if item.ProductID == productID {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			sale.Items = items
			out = append(out, sale)
		}
	}
	return out
}

func average(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func roundFloat(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampWindow(days int) int {
	return clampInt(days, defaultWindowDays, 1, maxWindowDays)
}

// clampInt substitutes fallback for non-positive values and bounds the rest.
func clampInt(v, fallback, lo, hi int) int {
	if v <= 0 {
		return fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
