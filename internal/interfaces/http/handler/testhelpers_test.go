package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appimport "github.com/landedcost/backend/internal/application/importation"
	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/infrastructure/cache"
	"github.com/landedcost/backend/internal/infrastructure/export"
	"github.com/landedcost/backend/internal/infrastructure/persistence"
	"github.com/landedcost/backend/internal/infrastructure/storage"
	"github.com/landedcost/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// apiEnv wires the handlers to real services over an in-memory database
type apiEnv struct {
	db      *gorm.DB
	engine  *gin.Engine
	storage *storage.StubDocumentStorage
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(persistence.AllModels()...))

	nop := zap.NewNop()
	shipmentRepo := persistence.NewGormShipmentRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	movementRepo := persistence.NewGormStockMovementRepository(db)

	shipmentService := appimport.NewShipmentService(shipmentRepo, movementRepo, persistence.NewGormShipmentTransactionScope(db), nop)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	shipmentService.SetIdempotencyStore(store, time.Hour)

	productService := appinv.NewProductService(productRepo, movementRepo, persistence.NewGormInventoryTransactionScope(db), nop)
	productService.SetExporter(export.NewMovementXLSXExporter())

	stub := storage.NewStubDocumentStorage("http://files.test")
	documentService := appimport.NewDocumentService(shipmentRepo, persistence.NewGormShipmentDocumentRepository(db), stub, nop)
	importService := appimport.NewItemImportService(productRepo, 64<<10, nop)

	shipments := NewShipmentHandler(shipmentService, importService)
	documents := NewShipmentDocumentHandler(documentService)
	products := NewProductHandler(productService)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.POST("/shipments", shipments.Create)
	api.GET("/shipments", shipments.List)
	api.POST("/shipments/allocation/preview", shipments.PreviewAllocation)
	api.POST("/shipments/import-items", shipments.ImportItems)
	api.GET("/shipments/:id", shipments.GetByID)
	api.PUT("/shipments/:id/items", shipments.ReplaceItems)
	api.POST("/shipments/:id/status", shipments.SetStatus)
	api.GET("/shipments/:id/movements", shipments.ListMovements)
	api.POST("/shipments/:id/documents", documents.Register)
	api.GET("/shipments/:id/documents", documents.List)
	api.DELETE("/shipments/:id/documents/:documentId", documents.Delete)
	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.GetByID)
	api.GET("/products/:id/movements", products.ListMovements)
	api.GET("/products/:id/movements/export", products.ExportMovements)

	return &apiEnv{db: db, engine: engine, storage: stub}
}

func (e *apiEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (e *apiEnv) createProduct(t *testing.T, sku string) appinv.ProductResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/products", gin.H{"sku": sku, "name": "Product " + sku})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p appinv.ProductResponse
	decodeData(t, w, &p)
	return p
}

func (e *apiEnv) createShipment(t *testing.T, reference string, productID string) appimport.ShipmentResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/shipments", gin.H{
		"reference":     reference,
		"currency":      "USD",
		"exchange_rate": "5",
		"items": []gin.H{
			{"description": "Bearings", "product_id": productID, "quantity": 10, "unit_price_foreign": "20"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s appimport.ShipmentResponse
	decodeData(t, w, &s)
	return s
}
