package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haizenx/Enginuity-Alpha/internal/metrics"
	"github.com/Haizenx/Enginuity-Alpha/internal/server/handlers"
)

func TestMain(m *testing.M) {
	if err := handlers.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newEngine(m *metrics.Metrics) *gin.Engine {
	return New(gin.TestMode, Handlers{
		Catalog:    handlers.NewCatalogHandler(nil, nil),
		PriceLists: handlers.NewPriceListHandler(nil, nil),
		Quotations: handlers.NewQuotationHandler(nil, nil),
	}, m, nil)
}

func do(engine *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for key, values := range header {
		req.Header[key] = values
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRoutesAreRegistered(t *testing.T) {
	engine := newEngine(nil)

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /api/items",
		"POST /api/items",
		"GET /api/items/:id",
		"PUT /api/items/:id",
		"DELETE /api/items/:id",
		"POST /api/items/:id/supplier-price",
		"GET /api/items/:id/supplier-prices",
		"GET /api/suppliers",
		"POST /api/suppliers",
		"PUT /api/suppliers/:id",
		"DELETE /api/suppliers/:id",
		"POST /api/suppliers/:id/price-list",
		"POST /api/suppliers/:id/price-list/sheet",
		"POST /api/quotations/compare",
		"POST /api/quotations/compute",
		"POST /api/quotations",
		"GET /api/quotations",
		"GET /api/quotations/:id",
		"GET /api/quotations/:id/pdf",
		"GET /api/quotations/:id/xlsx",
		"POST /api/quotations/:id/send",
		"GET /api/preferences/tier-markups",
		"PUT /api/preferences/tier-markups",
		"POST /api/admin/catalog/sweep",
		"GET /healthz",
		"GET /metrics",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestHealthzWithoutDatabase(t *testing.T) {
	w := do(newEngine(nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	engine := newEngine(nil)

	w := do(engine, http.MethodGet, "/healthz", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = do(engine, http.MethodGet, "/healthz", nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestMetricsRecordRoutePattern(t *testing.T) {
	m := metrics.New()
	engine := newEngine(m)

	w := do(engine, http.MethodGet, "/api/items/not-an-id", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	do(engine, http.MethodGet, "/nowhere", nil)

	w = do(engine, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `enginuity_http_requests_total{method="GET",route="/api/items/:id",status="400"} 1`)
	assert.Contains(t, body, `enginuity_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}
