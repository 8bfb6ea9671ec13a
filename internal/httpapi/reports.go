package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/export"
	"stockpos/backend/internal/service"
	"stockpos/backend/internal/store"
)

// reportFormat normalizes the format field; empty means json.
func reportFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "", domain.FormatJSON:
		return domain.FormatJSON, nil
	case domain.FormatExcel, domain.FormatCSV:
		return format, nil
	}
	return "", fmt.Errorf("%w: unsupported format %q", store.ErrValidation, raw)
}

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	var req domain.SalesReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	format, err := reportFormat(req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := a.service.SalesReport(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if format != domain.FormatJSON {
		writeExport(w, "sales", format, service.SalesReportTable(report))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleDailySalesReport(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := a.service.DailySalesReport(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleTopProductsReport(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := a.service.TopProductsSalesReport(r.Context(), days, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	var req domain.InventoryReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	format, err := reportFormat(req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.inventoryReport(w, r, req, format)
}

func (a *API) handleLowStockReport(w http.ResponseWriter, r *http.Request) {
	a.inventoryReport(w, r, domain.InventoryReportRequest{ReportType: domain.InventoryLowStock}, domain.FormatJSON)
}

func (a *API) handleOutOfStockReport(w http.ResponseWriter, r *http.Request) {
	a.inventoryReport(w, r, domain.InventoryReportRequest{ReportType: domain.InventoryOutOfStock}, domain.FormatJSON)
}

func (a *API) inventoryReport(w http.ResponseWriter, r *http.Request, req domain.InventoryReportRequest, format string) {
	report, err := a.service.InventoryReport(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if format != domain.FormatJSON {
		writeExport(w, "inventory", format, service.InventoryReportTable(report))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleProductReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	format, err := reportFormat(req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := a.service.ProductReport(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if format != domain.FormatJSON {
		writeExport(w, "product", format, service.ProductReportTable(report))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleQuickSalesSummary(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	summary, err := a.service.QuickSalesSummary(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleQuickInventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.QuickInventorySummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleExportReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if _, err := export.Extension(req.Format); err != nil {
		writeServiceError(w, fmt.Errorf("%w: format must be excel or csv", store.ErrValidation))
		return
	}
	table, kind, err := a.service.ExportReport(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeExport(w, kind, req.Format, table)
}

func (a *API) handleMonthlySalesReport(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", 6)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := a.service.MonthlySalesReport(r.Context(), months)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
