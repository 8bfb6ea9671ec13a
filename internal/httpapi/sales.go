package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"stockpos/backend/internal/domain"
)

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	q := r.URL.Query()
	from, to, err := a.service.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sales, err := a.service.ListSales(r.Context(), domain.SaleFilter{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		From:          from,
		To:            to,
		Skip:          skip,
		Limit:         limit,
		WithItems:     true,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleSaleByNumber(w http.ResponseWriter, r *http.Request) {
	sale, err := a.service.GetSaleByNumber(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (a *API) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.SaleUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sale, err := a.service.UpdateSale(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleCancelSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sale, err := a.service.CancelSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteSale(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Sale deleted successfully")
}

func (a *API) handleSalesDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.SalesDashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleDailySales(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 7)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rows, err := a.service.DailySales(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) handleSalesByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := queryInt64Ptr(r, "product_id")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	q := r.URL.Query()
	report, err := a.service.SalesByProduct(r.Context(), productID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := a.service.TopProducts(r.Context(), limit, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
