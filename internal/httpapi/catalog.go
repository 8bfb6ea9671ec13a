package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	categories, err := a.service.ListCategories(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	category, err := a.service.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := a.service.CreateCategory(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.CategoryUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := a.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Category deleted successfully")
}

func (a *API) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	activeOnly, err := queryBool(r, "active_only", false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	suppliers, err := a.service.ListSuppliers(r.Context(), domain.SupplierFilter{ActiveOnly: activeOnly, Skip: skip, Limit: limit})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (a *API) handleSearchSuppliers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeServiceError(w, fmt.Errorf("%w: search term is required", store.ErrValidation))
		return
	}
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	suppliers, err := a.service.ListSuppliers(r.Context(), domain.SupplierFilter{Search: q, Skip: skip, Limit: limit})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (a *API) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	supplier, err := a.service.GetSupplier(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (a *API) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	supplier, err := a.service.CreateSupplier(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func (a *API) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.SupplierUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	supplier, err := a.service.UpdateSupplier(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (a *API) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteSupplier(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Supplier deleted successfully")
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{}
	var err error
	if filter.Skip, filter.Limit, err = pageParams(r); err != nil {
		writeServiceError(w, err)
		return
	}
	if filter.CategoryID, err = queryInt64Ptr(r, "category_id"); err != nil {
		writeServiceError(w, err)
		return
	}
	if filter.SupplierID, err = queryInt64Ptr(r, "supplier_id"); err != nil {
		writeServiceError(w, err)
		return
	}
	if filter.ActiveOnly, err = queryBool(r, "active_only", true); err != nil {
		writeServiceError(w, err)
		return
	}
	products, err := a.service.ListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	products, err := a.service.SearchProducts(r.Context(), r.URL.Query().Get("q"), skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// pagedProducts adapts the paged product listings that take no other
// parameters.
func (a *API) pagedProducts(w http.ResponseWriter, r *http.Request, list func(skip, limit int) ([]domain.Product, error)) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	products, err := list(skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (a *API) handleLowStockProducts(w http.ResponseWriter, r *http.Request) {
	a.pagedProducts(w, r, func(skip, limit int) ([]domain.Product, error) {
		return a.service.LowStockProducts(r.Context(), skip, limit)
	})
}

func (a *API) handleOutOfStockProducts(w http.ResponseWriter, r *http.Request) {
	a.pagedProducts(w, r, func(skip, limit int) ([]domain.Product, error) {
		return a.service.OutOfStockProducts(r.Context(), skip, limit)
	})
}

func (a *API) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	a.pagedProducts(w, r, func(skip, limit int) ([]domain.Product, error) {
		return a.service.ProductsByCategoryName(r.Context(), mux.Vars(r)["name"], skip, limit)
	})
}

func (a *API) handleProductsBySupplier(w http.ResponseWriter, r *http.Request) {
	a.pagedProducts(w, r, func(skip, limit int) ([]domain.Product, error) {
		return a.service.ProductsBySupplierName(r.Context(), mux.Vars(r)["name"], skip, limit)
	})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	product, err := a.service.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleProductBySKU(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProductBySKU(r.Context(), mux.Vars(r)["sku"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleProductByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProductByBarcode(r.Context(), mux.Vars(r)["barcode"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.ProductUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, "Product deleted successfully")
}

func (a *API) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req domain.StockUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := a.service.AdjustStock(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBulkStockUpdate takes {"<product id>": delta}. Entries are applied
// independently; the response is 400 when any of them failed.
func (a *API) handleBulkStockUpdate(w http.ResponseWriter, r *http.Request) {
	var body map[string]int
	if !decodeBody(w, r, &body) {
		return
	}
	deltas := make(map[int64]int, len(body))
	for key, delta := range body {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || id < 1 {
			writeServiceError(w, fmt.Errorf("%w: invalid product id %q", store.ErrValidation, key))
			return
		}
		deltas[id] = delta
	}

	results, err := a.service.BulkAdjustStock(r.Context(), deltas)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	failed := make([]int64, 0)
	for id, ok := range results {
		if !ok {
			failed = append(failed, id)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	if len(failed) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   fmt.Sprintf("failed to update stock for products %v", failed),
			"results": results,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Stock updated successfully",
		"results": results,
	})
}

func (a *API) handleInventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.InventorySummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
