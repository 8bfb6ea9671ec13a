package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GroupByDay     = "day"
	GroupByWeek    = "week"
	GroupByMonth   = "month"
	GroupByProduct = "product"

	InventoryStockSummary = "stock_summary"
	InventoryLowStock     = "low_stock"
	InventoryOutOfStock   = "out_of_stock"
	InventorySlowMoving   = "slow_moving"

	FormatJSON  = "json"
	FormatExcel = "excel"
	FormatCSV   = "csv"

	NoSalesDataMessage = "No sales data found for the specified period"
)

type SalesReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	GroupBy   string `json:"group_by"`
	Format    string `json:"format"`
}

type InventoryReportRequest struct {
	ReportType string `json:"report_type"`
	Threshold  *int   `json:"threshold,omitempty"`
	Format     string `json:"format"`
}

type ProductReportRequest struct {
	CategoryID      *int64 `json:"category_id,omitempty"`
	SupplierID      *int64 `json:"supplier_id,omitempty"`
	IncludeInactive bool   `json:"include_inactive"`
	Format          string `json:"format"`
}

type ExportFilters struct {
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
	GroupBy         string `json:"group_by,omitempty"`
	ReportType      string `json:"report_type,omitempty"`
	Threshold       *int   `json:"threshold,omitempty"`
	CategoryID      *int64 `json:"category_id,omitempty"`
	SupplierID      *int64 `json:"supplier_id,omitempty"`
	IncludeInactive bool   `json:"include_inactive,omitempty"`
}

type ExportRequest struct {
	ReportType    string        `json:"report_type"`
	Format        string        `json:"format"`
	IncludeCharts bool          `json:"include_charts"`
	Filters       ExportFilters `json:"filters"`
}

type ReportPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

type SalesPeriodRow struct {
	Period        string          `json:"period"`
	SalesCount    int             `json:"sales_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	TotalItems    int             `json:"total_items"`
}

type SalesSummary struct {
	TotalSales     int             `json:"total_sales"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	MaxOrder       decimal.Decimal `json:"max_order"`
	MinOrder       decimal.Decimal `json:"min_order"`
	TotalCustomers int             `json:"total_customers"`
	PaymentMethods map[string]int  `json:"payment_methods"`
}

type ProductSalesRow struct {
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
}

type ProductSalesSummary struct {
	TotalProducts     int             `json:"total_products"`
	TotalQuantity     int             `json:"total_quantity"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TopProduct        string          `json:"top_product"`
	TopProductRevenue decimal.Decimal `json:"top_product_revenue"`
}

// SalesReport carries either period rows (Data/Summary) or product rows
// (Products/ProductSummary) depending on GroupBy.
type SalesReport struct {
	ReportDate        time.Time            `json:"report_date"`
	GroupBy           string               `json:"group_by"`
	Period            ReportPeriod         `json:"period"`
	Message           string               `json:"message,omitempty"`
	Summary           *SalesSummary        `json:"summary,omitempty"`
	Data              []SalesPeriodRow     `json:"data"`
	Products          []ProductSalesRow    `json:"products,omitempty"`
	ProductSummary    *ProductSalesSummary `json:"product_summary,omitempty"`
	TotalSales        int                  `json:"total_sales"`
	TotalRevenue      decimal.Decimal      `json:"total_revenue"`
	TotalProductsSold int                  `json:"total_products_sold"`
	AverageOrderValue decimal.Decimal      `json:"average_order_value"`
}

type InventoryRow struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Supplier      string          `json:"supplier"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"`
	MaxStockLevel int             `json:"max_stock_level"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockValue    decimal.Decimal `json:"stock_value"`
	SellingValue  decimal.Decimal `json:"selling_value"`
	StockStatus   string          `json:"stock_status"`
}

type InventoryReportSummary struct {
	TotalProducts     int             `json:"total_products"`
	TotalStockUnits   int             `json:"total_stock_units"`
	TotalStockValue   decimal.Decimal `json:"total_stock_value"`
	TotalSellingValue decimal.Decimal `json:"total_selling_value"`
	AvgStockLevel     float64         `json:"avg_stock_level"`
	LowStockCount     int             `json:"low_stock_count"`
	OutOfStockCount   int             `json:"out_of_stock_count"`
	OverStockCount    int             `json:"over_stock_count"`
}

type InventoryReport struct {
	ReportDate      time.Time              `json:"report_date"`
	ReportType      string                 `json:"report_type"`
	Threshold       *int                   `json:"threshold,omitempty"`
	Summary         InventoryReportSummary `json:"summary"`
	Data            []InventoryRow         `json:"data"`
	TotalProducts   int                    `json:"total_products"`
	TotalStockValue decimal.Decimal        `json:"total_stock_value"`
	LowStockCount   int                    `json:"low_stock_count"`
	OutOfStockCount int                    `json:"out_of_stock_count"`
}

type ProductReportRow struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Supplier      string          `json:"supplier"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MarginPercent *float64        `json:"margin_percent"`
	CurrentStock  int             `json:"current_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	IsActive      bool            `json:"is_active"`
}

type ProductReportSummary struct {
	TotalProducts   int             `json:"total_products"`
	ActiveProducts  int             `json:"active_products"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	AvgCostPrice    decimal.Decimal `json:"avg_cost_price"`
	AvgSellingPrice decimal.Decimal `json:"avg_selling_price"`
	AvgMargin       *float64        `json:"avg_margin"`
	CategoriesCount int             `json:"categories_count"`
	SuppliersCount  int             `json:"suppliers_count"`
}

type ProductReport struct {
	ReportDate      time.Time            `json:"report_date"`
	Filters         ProductReportRequest `json:"filters"`
	Summary         ProductReportSummary `json:"summary"`
	Data            []ProductReportRow   `json:"data"`
	TotalProducts   int                  `json:"total_products"`
	AveragePrice    decimal.Decimal      `json:"average_price"`
	TotalStockValue decimal.Decimal      `json:"total_stock_value"`
}

type TopProduct struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type DailySales struct {
	Date         string          `json:"date"`
	SalesCount   int             `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type QuickSalesSummary struct {
	PeriodDays    int             `json:"period_days"`
	TotalSales    int             `json:"total_sales"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	TopProducts   []TopProduct    `json:"top_products"`
	DailyTrend    []DailySales    `json:"daily_trend"`
}

type CategoryCount struct {
	Category     string `json:"category"`
	ProductCount int    `json:"product_count"`
}

type QuickInventorySummary struct {
	TotalProducts        int             `json:"total_products"`
	TotalStockValue      decimal.Decimal `json:"total_stock_value"`
	LowStockCount        int             `json:"low_stock_count"`
	OutOfStockCount      int             `json:"out_of_stock_count"`
	CategoryDistribution []CategoryCount `json:"category_distribution"`
}

type SalesDashboardSummary struct {
	TotalSales    int             `json:"total_sales"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	TodaySales    int             `json:"today_sales"`
	TodayRevenue  decimal.Decimal `json:"today_revenue"`
	MostSold      []TopProduct    `json:"most_sold_products"`
}

type SalesByProductReport struct {
	ProductID     *int64            `json:"product_id,omitempty"`
	StartDate     string            `json:"start_date,omitempty"`
	EndDate       string            `json:"end_date,omitempty"`
	Products      []ProductSalesRow `json:"products"`
	TotalQuantity int               `json:"total_quantity"`
	TotalRevenue  decimal.Decimal   `json:"total_revenue"`
}

type TopProductsReport struct {
	PeriodDays    int          `json:"period_days"`
	TopByQuantity []TopProduct `json:"top_by_quantity"`
	TopByRevenue  []TopProduct `json:"top_by_revenue"`
}
