package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/landedcost/backend/internal/interfaces/http/handler"
	"github.com/landedcost/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandlers(limiter *middleware.RateLimiter) Handlers {
	return Handlers{
		Shipments:     handler.NewShipmentHandler(nil, nil),
		Documents:     handler.NewShipmentDocumentHandler(nil),
		Products:      handler.NewProductHandler(nil),
		System:        handler.NewSystemHandler(),
		ImportLimiter: limiter,
	}
}

func TestMount_RegistersAPI(t *testing.T) {
	engine := gin.New()
	Mount(engine, testHandlers(nil))

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/shipments",
		"GET /api/v1/shipments",
		"GET /api/v1/shipments/:id",
		"PUT /api/v1/shipments/:id/items",
		"POST /api/v1/shipments/:id/status",
		"POST /api/v1/shipments/allocation/preview",
		"GET /api/v1/shipments/:id/movements",
		"POST /api/v1/shipments/import-items",
		"POST /api/v1/shipments/:id/documents",
		"GET /api/v1/shipments/:id/documents",
		"DELETE /api/v1/shipments/:id/documents/:documentId",
		"POST /api/v1/products",
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"GET /api/v1/products/:id/movements",
		"GET /api/v1/products/:id/movements/export",
		"GET /api/v1/system/info",
		"GET /api/v1/system/ping",
		"GET /health",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, engine.Routes(), len(expected))
}

func TestMount_Health(t *testing.T) {
	engine := gin.New()
	Mount(engine, testHandlers(nil))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMount_ImportItemsIsRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()

	engine := gin.New()
	Mount(engine, testHandlers(limiter))

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shipments/import-items", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		engine.ServeHTTP(w, req)
		return w
	}

	// No file attached, so the first call is rejected by the handler itself
	first := send()
	require.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusTooManyRequests, send().Code)
}

func TestShipmentRoutes_WithoutDocuments(t *testing.T) {
	h := testHandlers(nil)
	h.Documents = nil

	for _, route := range ShipmentRoutes(h).Routes() {
		assert.NotContains(t, route.Path, "documents")
	}
}
