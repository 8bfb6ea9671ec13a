package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"stockpos/backend/internal/export"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/service"
	"stockpos/backend/internal/store"
	"stockpos/backend/internal/xid"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		logger.Log.Fatal().Err(err).Msg("could not generate csrf secret")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes a hex HMAC-SHA256 token for the hour bucket
// (Unix time truncated to the hour).
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	bucket := time.Now().UTC().Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken accepts the current or previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(currentBucket))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(prevBucket)))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", a.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", a.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", a.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/auth/csrf-token", a.handleCSRFToken).Methods(http.MethodGet)
	api.HandleFunc("/auth/me", a.requireAuth(a.handleMe)).Methods(http.MethodGet)

	api.HandleFunc("/categories", a.requireAuth(a.handleListCategories)).Methods(http.MethodGet)
	api.HandleFunc("/categories", a.requireAuth(a.handleCreateCategory)).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id:[0-9]+}", a.requireAuth(a.handleGetCategory)).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}", a.requireAuth(a.handleUpdateCategory)).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id:[0-9]+}", a.requireAuth(a.handleDeleteCategory)).Methods(http.MethodDelete)

	api.HandleFunc("/suppliers", a.requireAuth(a.handleListSuppliers)).Methods(http.MethodGet)
	api.HandleFunc("/suppliers", a.requireAuth(a.handleCreateSupplier)).Methods(http.MethodPost)
	api.HandleFunc("/suppliers/search", a.requireAuth(a.handleSearchSuppliers)).Methods(http.MethodGet)
	api.HandleFunc("/suppliers/{id:[0-9]+}", a.requireAuth(a.handleGetSupplier)).Methods(http.MethodGet)
	api.HandleFunc("/suppliers/{id:[0-9]+}", a.requireAuth(a.handleUpdateSupplier)).Methods(http.MethodPut)
	api.HandleFunc("/suppliers/{id:[0-9]+}", a.requireAuth(a.handleDeleteSupplier)).Methods(http.MethodDelete)

	api.HandleFunc("/products", a.requireAuth(a.handleListProducts)).Methods(http.MethodGet)
	api.HandleFunc("/products", a.requireAuth(a.handleCreateProduct)).Methods(http.MethodPost)
	api.HandleFunc("/products/with-details", a.requireAuth(a.handleListProducts)).Methods(http.MethodGet)
	api.HandleFunc("/products/search", a.requireAuth(a.handleSearchProducts)).Methods(http.MethodGet)
	api.HandleFunc("/products/low-stock", a.requireAuth(a.handleLowStockProducts)).Methods(http.MethodGet)
	api.HandleFunc("/products/out-of-stock", a.requireAuth(a.handleOutOfStockProducts)).Methods(http.MethodGet)
	api.HandleFunc("/products/inventory/summary", a.requireAuth(a.handleInventorySummary)).Methods(http.MethodGet)
	api.HandleFunc("/products/bulk-stock-update", a.requireAuth(a.handleBulkStockUpdate)).Methods(http.MethodPost)
	api.HandleFunc("/products/category/{name}", a.requireAuth(a.handleProductsByCategory)).Methods(http.MethodGet)
	api.HandleFunc("/products/supplier/{name}", a.requireAuth(a.handleProductsBySupplier)).Methods(http.MethodGet)
	api.HandleFunc("/products/sku/{sku}", a.requireAuth(a.handleProductBySKU)).Methods(http.MethodGet)
	api.HandleFunc("/products/barcode/{barcode}", a.requireAuth(a.handleProductByBarcode)).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", a.requireAuth(a.handleGetProduct)).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", a.requireAuth(a.handleUpdateProduct)).Methods(http.MethodPut)
	api.HandleFunc("/products/{id:[0-9]+}", a.requireAuth(a.handleDeleteProduct)).Methods(http.MethodDelete)
	api.HandleFunc("/products/{id:[0-9]+}/stock", a.requireAuth(a.handleAdjustStock)).Methods(http.MethodPatch)

	api.HandleFunc("/sales", a.requireAuth(a.handleListSales)).Methods(http.MethodGet)
	api.HandleFunc("/sales", a.requireAuth(a.handleCreateSale)).Methods(http.MethodPost)
	api.HandleFunc("/sales/dashboard/summary", a.requireAuth(a.handleSalesDashboard)).Methods(http.MethodGet)
	api.HandleFunc("/sales/dashboard/daily", a.requireAuth(a.handleDailySales)).Methods(http.MethodGet)
	api.HandleFunc("/sales/reports/by-product", a.requireAuth(a.handleSalesByProduct)).Methods(http.MethodGet)
	api.HandleFunc("/sales/reports/top-products", a.requireAuth(a.handleTopProducts)).Methods(http.MethodGet)
	api.HandleFunc("/sales/number/{number}", a.requireAuth(a.handleSaleByNumber)).Methods(http.MethodGet)
	api.HandleFunc("/sales/{id:[0-9]+}", a.requireAuth(a.handleGetSale)).Methods(http.MethodGet)
	api.HandleFunc("/sales/{id:[0-9]+}", a.requireAuth(a.handleUpdateSale)).Methods(http.MethodPut)
	api.HandleFunc("/sales/{id:[0-9]+}", a.requireAuth(a.handleDeleteSale)).Methods(http.MethodDelete)
	api.HandleFunc("/sales/{id:[0-9]+}/cancel", a.requireAuth(a.handleCancelSale)).Methods(http.MethodPost)

	api.HandleFunc("/users", a.requireAuth(a.handleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", a.requireAuth(a.handleCreateUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", a.requireAuth(a.handleGetUser)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", a.requireAuth(a.handleUpdateUser)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", a.requireAuth(a.handleDeleteUser)).Methods(http.MethodDelete)

	api.HandleFunc("/reports/sales", a.requireAuth(a.handleSalesReport)).Methods(http.MethodPost)
	api.HandleFunc("/reports/sales/daily", a.requireAuth(a.handleDailySalesReport)).Methods(http.MethodGet)
	api.HandleFunc("/reports/sales/top-products", a.requireAuth(a.handleTopProductsReport)).Methods(http.MethodGet)
	api.HandleFunc("/reports/inventory", a.requireAuth(a.handleInventoryReport)).Methods(http.MethodPost)
	api.HandleFunc("/reports/inventory/low-stock", a.requireAuth(a.handleLowStockReport)).Methods(http.MethodGet)
	api.HandleFunc("/reports/inventory/out-of-stock", a.requireAuth(a.handleOutOfStockReport)).Methods(http.MethodGet)
	api.HandleFunc("/reports/products", a.requireAuth(a.handleProductReport)).Methods(http.MethodPost)
	api.HandleFunc("/reports/dashboard/sales-summary", a.requireAuth(a.handleQuickSalesSummary)).Methods(http.MethodGet)
	api.HandleFunc("/reports/dashboard/inventory-summary", a.requireAuth(a.handleQuickInventorySummary)).Methods(http.MethodGet)
	api.HandleFunc("/reports/export", a.requireAuth(a.handleExportReport)).Methods(http.MethodPost)
	api.HandleFunc("/reports/quick/monthly-sales", a.requireAuth(a.handleMonthlySalesReport)).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMethodNotAllowed(w)
	})

	return a.withMiddleware(router)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

// csrfExemptPaths are called before a client can hold a CSRF token.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
}

// checkCSRF enforces the X-CSRF-Token header on state-changing methods.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = xid.New("req")
		}
		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.checkCSRF(w, r) {
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		startedAt := time.Now()
		defer func() {
			if p := recover(); p != nil {
				logger.Log.Error().
					Str("request_id", requestID).
					Interface("panic", p).
					Bytes("stack", debug.Stack()).
					Msg("panic while serving request")
				writeError(rec, http.StatusInternalServerError, errors.New("panic"))
			}
			logger.Log.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("latency", time.Since(startedAt)).
				Str("ip", clientKey(r)).
				Msg("request")
		}()
		next.ServeHTTP(rec, r)
	})
}

// statusFor maps store sentinels onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInvalidState):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// decodeBody writes a 413 for oversized bodies and a 422 when the body is
// not valid JSON for dest.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	err := decodeJSON(r, dest)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return false
	}
	writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("invalid request body: %w", err))
	return false
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id", store.ErrValidation)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", store.ErrValidation, key)
	}
	return v, nil
}

func queryInt64Ptr(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", store.ErrValidation, key)
	}
	return &v, nil
}

func queryBool(r *http.Request, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", store.ErrValidation, key)
	}
	return v, nil
}

func pageParams(r *http.Request) (int, int, error) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, fmt.Errorf("%w: skip must not be negative", store.ErrValidation)
	}
	if limit < 0 || limit > 1000 {
		return 0, 0, fmt.Errorf("%w: limit must be between 1 and 1000", store.ErrValidation)
	}
	return skip, limit, nil
}

// writeExport renders table as an attachment named after kind and the
// current time.
func writeExport(w http.ResponseWriter, kind, format string, table export.Table) {
	filename, err := export.Filename(kind, format, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]any{"message": message})
}

// writeError returns the error text for 4xx responses and a generic message
// for 5xx responses, logging the cause.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		logger.Log.Error().Err(err).Int("status", status).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
