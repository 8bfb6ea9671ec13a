package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func TestMiddlewareSetsSecurityHeaders(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if got := res.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options nosniff, got %q", got)
	}
	if got := res.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := res.Header().Get("Referrer-Policy"); got == "" {
		t.Fatalf("expected Referrer-Policy to be set")
	}
	if got := res.Header().Get("X-Request-ID"); !strings.HasPrefix(got, "req-") {
		t.Fatalf("expected generated request id, got %q", got)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if got := res.Header().Get("X-Request-ID"); got != "upstream-42" {
		t.Fatalf("expected upstream request id, got %q", got)
	}
}

func TestPreflightReturns204(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
}

func TestLoginRateLimitReturns429(t *testing.T) {
	api := newTestAPI(t)
	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "wrong-pass"})

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "127.0.0.1:5000"
		res := httptest.NewRecorder()

		api.Handler().ServeHTTP(res, req)

		if i < 5 && res.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d expected 401 before limit, got %d", i+1, res.Code)
		}
		if i == 5 && res.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 6 expected 429, got %d", res.Code)
		}
	}
}

func TestAttemptLimiterIsPerClient(t *testing.T) {
	limiter := newAttemptLimiter(1, time.Minute)
	if !limiter.Allow("10.0.0.1") || limiter.Allow("10.0.0.1") {
		t.Fatalf("expected second attempt from same client to be blocked")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected other client to be allowed")
	}
}

func TestJSONBodyTooLargeRejected(t *testing.T) {
	api := newTestAPI(t)
	veryLong := strings.Repeat("a", (1<<20)+1024)
	body := fmt.Sprintf(`{"username":"%s","password":"x"}`, veryLong)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for too large body, got %d", res.Code)
	}
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	c := loginAsAdmin(t)

	c.csrf = ""
	rec := c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "NoToken"})
	expectStatus(t, rec, http.StatusForbidden)

	c.csrf = "deadbeef"
	rec = c.do(http.MethodDelete, "/api/v1/categories/1", nil)
	expectStatus(t, rec, http.StatusForbidden)

	tokenRes := c.do(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	expectStatus(t, tokenRes, http.StatusOK)
	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	decodeInto(t, tokenRes, &body)
	c.csrf = body.CSRFToken
	expectStatus(t, c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "WithToken"}), http.StatusCreated)
}

func TestCSRFTokenAcceptsPreviousHour(t *testing.T) {
	api := newTestAPI(t)
	current := time.Now().UTC().Truncate(time.Hour).Unix()

	if !api.validateCSRFToken(api.csrfTokenForHour(current - 3600)) {
		t.Fatalf("expected previous hour token to be accepted")
	}
	if api.validateCSRFToken(api.csrfTokenForHour(current - 7200)) {
		t.Fatalf("expected token two hours old to be rejected")
	}
	if api.validateCSRFToken("") {
		t.Fatalf("expected empty token to be rejected")
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusInternalServerError, errors.New("pq: relation \"sales\" does not exist"))

	if strings.Contains(rec.Body.String(), "relation") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("expected generic message, got %s", rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: product 1", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: sku", store.ErrConflict), http.StatusConflict},
		{store.ErrValidation, http.StatusBadRequest},
		{store.ErrInsufficientStock, http.StatusBadRequest},
		{store.ErrInvalidState, http.StatusBadRequest},
		{store.ErrUnauthorized, http.StatusUnauthorized},
		{store.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestPanicsBecome500(t *testing.T) {
	api := newTestAPI(t)
	handler := api.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "unexpected") {
		t.Fatalf("panic value leaked: %s", res.Body.String())
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	c := loginAsAdmin(t)
	expectStatus(t, c.do(http.MethodGet, "/api/v1/nope", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodPatch, "/api/v1/categories", nil), http.StatusMethodNotAllowed)
}
