package splitex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/splitex/internal/cache"
	"github.com/magabrotheeeer/splitex/internal/config"
	"github.com/magabrotheeeer/splitex/internal/events"
	"github.com/magabrotheeeer/splitex/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/splitex/internal/services/auth"
	expenseservice "github.com/magabrotheeeer/splitex/internal/services/expense"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		HTTPServer: config.HTTPServer{Timeout: 5 * time.Second},
		RateLimit:  config.RateLimit{RPS: 0.001, Burst: 1},
		CORS:       config.CORS{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestRouter(t *testing.T, db fakePinger) http.Handler {
	t.Helper()
	return newTestRouterWithConfig(t, testConfig(), db)
}

func newTestRouterWithConfig(t *testing.T, cfg *config.Config, db fakePinger) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewJWTMaker("secret", time.Hour)
	authService := authservice.NewAuthService(nil, tokens, cache.Noop{}, time.Minute, logger)
	expenseService := expenseservice.NewExpenseService(nil, events.Noop{}, logger)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, cfg, authService, expenseService, db)
	return r
}

func TestRoutes_Unauthorized(t *testing.T) {
	router := newTestRouter(t, fakePinger{})

	tests := []struct {
		name    string
		method  string
		path    string
		header  string
		wantMsg string
	}{
		{name: "no token on expenses", method: http.MethodGet, path: "/api/expenses/", wantMsg: "Missing Authorization Header"},
		{name: "no token on profile", method: http.MethodGet, path: "/api/auth/u", wantMsg: "Missing Authorization Header"},
		{name: "wrong scheme", method: http.MethodPost, path: "/api/participants/123/add", header: "Basic abc", wantMsg: "Missing Authorization Header"},
		{name: "bad token", method: http.MethodDelete, path: "/api/expenses/123", header: "Bearer not-a-token", wantMsg: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantMsg+`"}`, rr.Body.String())
		})
	}
}

func TestRoutes_Health(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t, fakePinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t, fakePinger{err: errors.New("down")}).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestRoutes_Metrics(t *testing.T) {
	router := newTestRouter(t, fakePinger{})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "splitex_http_requests_total")
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, fakePinger{})

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_Docs(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t, fakePinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/expenses/{id}")
}

func TestRoutes_RateLimit(t *testing.T) {
	router := newTestRouter(t, fakePinger{})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusBadRequest, send().Code)
	rr := send()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rr.Body.String())
}

func TestRoutes_RateLimitIgnoresForwardedHeaders(t *testing.T) {
	router := newTestRouter(t, fakePinger{})

	limited := 0
	for i := 1; i <= 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 19, limited)
}

func TestRoutes_RateLimitTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPServer.TrustProxyHeaders = true
	router := newTestRouterWithConfig(t, cfg, fakePinger{})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusBadRequest, send("203.0.113.1"))
	assert.Equal(t, http.StatusBadRequest, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
}
