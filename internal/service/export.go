package service

import (
	"context"
	"strings"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/export"
)

// ExportKind maps a free-form report_type to sales, inventory or product.
func ExportKind(reportType string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(reportType))
	switch {
	case strings.HasPrefix(kind, "sales"):
		return "sales", nil
	case strings.HasPrefix(kind, "inventory"):
		return "inventory", nil
	case strings.HasPrefix(kind, "product"):
		return "product", nil
	}
	return "", invalid("unsupported report type %q", reportType)
}

// ExportReport builds the table behind POST /reports/export. Missing sales
// dates default to the last 30 days.
func (s *Service) ExportReport(ctx context.Context, req domain.ExportRequest) (export.Table, string, error) {
	if _, err := export.Extension(req.Format); err != nil {
		return export.Table{}, "", invalid("unsupported format %q", req.Format)
	}
	kind, err := ExportKind(req.ReportType)
	if err != nil {
		return export.Table{}, "", err
	}

	f := req.Filters
	switch kind {
	case "sales":
		today := s.today()
		start := defaultString(f.StartDate, today.AddDate(0, 0, -defaultWindowDays).Format(dateLayout))
		end := defaultString(f.EndDate, today.Format(dateLayout))
		report, err := s.SalesReport(ctx, domain.SalesReportRequest{StartDate: start, EndDate: end, GroupBy: f.GroupBy})
		if err != nil {
			return export.Table{}, "", err
		}
		return SalesReportTable(report), kind, nil
	case "inventory":
		report, err := s.InventoryReport(ctx, domain.InventoryReportRequest{ReportType: f.ReportType, Threshold: f.Threshold})
		if err != nil {
			return export.Table{}, "", err
		}
		return InventoryReportTable(report), kind, nil
	default:
		report, err := s.ProductReport(ctx, domain.ProductReportRequest{
			CategoryID:      f.CategoryID,
			SupplierID:      f.SupplierID,
			IncludeInactive: f.IncludeInactive,
		})
		if err != nil {
			return export.Table{}, "", err
		}
		return ProductReportTable(report), kind, nil
	}
}

func SalesReportTable(r domain.SalesReport) export.Table {
	t := export.Table{Summary: []export.SummaryField{
		{Label: "Start Date", Value: r.Period.StartDate},
		{Label: "End Date", Value: r.Period.EndDate},
		{Label: "Total Sales", Value: r.TotalSales},
		{Label: "Total Revenue", Value: r.TotalRevenue},
		{Label: "Total Products Sold", Value: r.TotalProductsSold},
		{Label: "Average Order Value", Value: r.AverageOrderValue},
	}}

	if r.GroupBy == domain.GroupByProduct {
		t.Columns = []string{"Product", "SKU", "Quantity", "Revenue", "Average Price"}
		for _, row := range r.Products {
			t.Rows = append(t.Rows, []any{row.ProductName, row.ProductSKU, row.TotalQuantity, row.TotalRevenue, row.AvgPrice})
		}
		return t
	}

	t.Columns = []string{"Period", "Sales Count", "Total Revenue", "Average Order Value", "Total Items"}
	for _, row := range r.Data {
		t.Rows = append(t.Rows, []any{row.Period, row.SalesCount, row.TotalRevenue, row.AvgOrderValue, row.TotalItems})
	}
	if r.Summary != nil {
		t.Summary = append(t.Summary,
			export.SummaryField{Label: "Max Order", Value: r.Summary.MaxOrder},
			export.SummaryField{Label: "Min Order", Value: r.Summary.MinOrder},
			export.SummaryField{Label: "Total Customers", Value: r.Summary.TotalCustomers},
		)
	}
	return t
}

func InventoryReportTable(r domain.InventoryReport) export.Table {
	t := export.Table{
		Columns: []string{
			"SKU", "Name", "Category", "Supplier", "Current Stock", "Min Stock", "Max Stock",
			"Cost Price", "Selling Price", "Stock Value", "Selling Value", "Status",
		},
		Summary: []export.SummaryField{
			{Label: "Report Type", Value: r.ReportType},
			{Label: "Total Products", Value: r.Summary.TotalProducts},
			{Label: "Total Stock Units", Value: r.Summary.TotalStockUnits},
			{Label: "Total Stock Value", Value: r.Summary.TotalStockValue},
			{Label: "Total Selling Value", Value: r.Summary.TotalSellingValue},
			{Label: "Average Stock Level", Value: r.Summary.AvgStockLevel},
			{Label: "Low Stock", Value: r.Summary.LowStockCount},
			{Label: "Out of Stock", Value: r.Summary.OutOfStockCount},
			{Label: "Over Stock", Value: r.Summary.OverStockCount},
		},
	}
	for _, row := range r.Data {
		t.Rows = append(t.Rows, []any{
			row.SKU, row.Name, row.Category, row.Supplier, row.CurrentStock, row.MinStockLevel, row.MaxStockLevel,
			row.CostPrice, row.SellingPrice, row.StockValue, row.SellingValue, row.StockStatus,
		})
	}
	return t
}

func ProductReportTable(r domain.ProductReport) export.Table {
	t := export.Table{
		Columns: []string{
			"ID", "SKU", "Name", "Category", "Supplier", "Cost Price", "Selling Price",
			"Margin %", "Current Stock", "Stock Value", "Active",
		},
		Summary: []export.SummaryField{
			{Label: "Total Products", Value: r.Summary.TotalProducts},
			{Label: "Active Products", Value: r.Summary.ActiveProducts},
			{Label: "Total Stock Value", Value: r.Summary.TotalStockValue},
			{Label: "Average Cost Price", Value: r.Summary.AvgCostPrice},
			{Label: "Average Selling Price", Value: r.Summary.AvgSellingPrice},
			{Label: "Average Margin", Value: r.Summary.AvgMargin},
			{Label: "Categories", Value: r.Summary.CategoriesCount},
			{Label: "Suppliers", Value: r.Summary.SuppliersCount},
		},
	}
	for _, row := range r.Data {
		t.Rows = append(t.Rows, []any{
			row.ID, row.SKU, row.Name, row.Category, row.Supplier, row.CostPrice, row.SellingPrice,
			row.MarginPercent, row.CurrentStock, row.StockValue, row.IsActive,
		})
	}
	return t
}
