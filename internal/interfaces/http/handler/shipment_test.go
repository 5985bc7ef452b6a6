package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appimport "github.com/landedcost/backend/internal/application/importation"
	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestShipmentHandler_Create(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6204")

	shipment := env.createShipment(t, "IMP-2026-001", product.ID.String())

	assert.Equal(t, "pending", shipment.Status)
	assert.Equal(t, 1, shipment.Version)
	require.Len(t, shipment.Items, 1)
	requireDecimal(t, "1000", shipment.TotalLocalCost)
	requireDecimal(t, "100", shipment.Items[0].UnitCostLocal)
	requireDecimal(t, "1", shipment.Items[0].AllocationShare)
}

func TestShipmentHandler_Create_Errors(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6205")
	env.createShipment(t, "IMP-DUP", product.ID.String())

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "missing reference fails binding",
			body:   gin.H{"exchange_rate": "5"},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "zero exchange rate",
			body:   gin.H{"reference": "IMP-X", "exchange_rate": "0"},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeInvalidInput,
		},
		{
			name: "non positive quantity",
			body: gin.H{"reference": "IMP-Y", "exchange_rate": "5", "items": []gin.H{
				{"description": "Nuts", "quantity": 0, "unit_price_foreign": "1"},
			}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeInvalidInput,
		},
		{
			name: "unknown product",
			body: gin.H{"reference": "IMP-Z", "exchange_rate": "5", "items": []gin.H{
				{"description": "Nuts", "product_id": uuid.NewString(), "quantity": 1, "unit_price_foreign": "1"},
			}},
			status: http.StatusNotFound,
			code:   dto.ErrCodeNotFound,
		},
		{
			name:   "duplicate reference",
			body:   gin.H{"reference": "IMP-DUP", "exchange_rate": "5"},
			status: http.StatusConflict,
			code:   dto.ErrCodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/shipments", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestShipmentHandler_GetAndList(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6206")
	first := env.createShipment(t, "IMP-A", product.ID.String())
	env.createShipment(t, "IMP-B", product.ID.String())

	w := env.do(t, http.MethodGet, "/api/v1/shipments/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got appimport.ShipmentResponse
	decodeData(t, w, &got)
	assert.Equal(t, "IMP-A", got.Reference)

	w = env.do(t, http.MethodGet, "/api/v1/shipments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/shipments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/shipments?page=1&page_size=1&order_by=reference&order_dir=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	var list []appimport.ShipmentListItemResponse
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "IMP-A", list[0].Reference)

	w = env.do(t, http.MethodGet, "/api/v1/shipments?status=shipped", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShipmentHandler_StatusLifecycle(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6207")
	shipment := env.createShipment(t, "IMP-LIFE", product.ID.String())
	statusPath := "/api/v1/shipments/" + shipment.ID.String() + "/status"

	w := env.do(t, http.MethodPost, statusPath, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var delivered appimport.StatusChangeResponse
	decodeData(t, w, &delivered)
	assert.Equal(t, "pending", delivered.From)
	assert.Equal(t, "delivered", delivered.To)
	assert.Equal(t, "receive", delivered.Effect)
	require.Len(t, delivered.Movements, 1)
	assert.Equal(t, int64(10), delivered.Movements[0].QuantityDelta)
	assert.NotNil(t, delivered.Shipment.ActualDeliveryDate)

	w = env.do(t, http.MethodGet, "/api/v1/products/"+product.ID.String(), nil)
	var p appinv.ProductResponse
	decodeData(t, w, &p)
	assert.Equal(t, int64(10), p.StockQuantity)
	requireDecimal(t, "100", p.AverageCostLocal)
	requireDecimal(t, "20", p.LastReceivedUnitPriceForeign)

	// Editing a delivered shipment is refused
	w = env.do(t, http.MethodPut, "/api/v1/shipments/"+shipment.ID.String()+"/items", gin.H{"items": []gin.H{
		{"description": "More", "quantity": 1, "unit_price_foreign": "1"},
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeShipmentDelivered, decodeResponse(t, w).Error.Code)

	w = env.do(t, http.MethodPost, statusPath, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled appimport.StatusChangeResponse
	decodeData(t, w, &cancelled)
	assert.Equal(t, "reverse", cancelled.Effect)
	require.Len(t, cancelled.Movements, 1)
	assert.Equal(t, int64(-10), cancelled.Movements[0].QuantityDelta)

	w = env.do(t, http.MethodGet, "/api/v1/products/"+product.ID.String(), nil)
	decodeData(t, w, &p)
	assert.Equal(t, int64(0), p.StockQuantity)

	w = env.do(t, http.MethodGet, "/api/v1/shipments/"+shipment.ID.String()+"/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var movements []appinv.StockMovementResponse
	decodeData(t, w, &movements)
	require.Len(t, movements, 2)
	assert.Equal(t, "receipt", movements[0].Type)
	assert.Equal(t, "adjustment", movements[1].Type)
	require.NotNil(t, movements[1].ReversesMovementID)
	assert.Equal(t, movements[0].ID, *movements[1].ReversesMovementID)
}

func TestShipmentHandler_SetStatus_Validation(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6208")
	shipment := env.createShipment(t, "IMP-VAL", product.ID.String())
	statusPath := "/api/v1/shipments/" + shipment.ID.String() + "/status"

	w := env.do(t, http.MethodPost, statusPath, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "status", resp.Error.Details[0].Field)

	w = env.do(t, http.MethodPost, "/api/v1/shipments/"+uuid.NewString()+"/status", gin.H{"status": "customs"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	longKey := string(bytes.Repeat([]byte("k"), maxIdempotencyKeyLength+1))
	w = env.do(t, http.MethodPost, statusPath, gin.H{"status": "customs"}, "Idempotency-Key", longKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShipmentHandler_SetStatus_IdempotencyKey(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6209")
	shipment := env.createShipment(t, "IMP-IDEM", product.ID.String())
	statusPath := "/api/v1/shipments/" + shipment.ID.String() + "/status"

	w := env.do(t, http.MethodPost, statusPath, gin.H{"status": "delivered"}, "Idempotency-Key", "deliver-1")
	require.Equal(t, http.StatusOK, w.Code)
	var first appimport.StatusChangeResponse
	decodeData(t, w, &first)
	assert.False(t, first.Replayed)

	w = env.do(t, http.MethodPost, statusPath, gin.H{"status": "delivered"}, "Idempotency-Key", "deliver-1")
	require.Equal(t, http.StatusOK, w.Code)
	var replay appimport.StatusChangeResponse
	decodeData(t, w, &replay)
	assert.True(t, replay.Replayed)
	assert.Empty(t, replay.Movements)

	w = env.do(t, http.MethodGet, "/api/v1/products/"+product.ID.String(), nil)
	var p appinv.ProductResponse
	decodeData(t, w, &p)
	assert.Equal(t, int64(10), p.StockQuantity, "replay must not receive twice")
}

func TestShipmentHandler_ReplaceItems(t *testing.T) {
	env := newAPIEnv(t)
	product := env.createProduct(t, "BRG-6210")
	shipment := env.createShipment(t, "IMP-EDIT", product.ID.String())

	w := env.do(t, http.MethodPut, "/api/v1/shipments/"+shipment.ID.String()+"/items", gin.H{"items": []gin.H{
		{"description": "Bearings", "product_id": product.ID.String(), "quantity": 30, "unit_price_foreign": "10"},
		{"description": "Seals", "quantity": 10, "unit_price_foreign": "10"},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated appimport.ShipmentResponse
	decodeData(t, w, &updated)
	require.Len(t, updated.Items, 2)
	requireDecimal(t, "2000", updated.TotalLocalCost)
	requireDecimal(t, "0.75", updated.Items[0].AllocationShare)
	requireDecimal(t, "0.25", updated.Items[1].AllocationShare)
	assert.Greater(t, updated.Version, shipment.Version)
}

func TestShipmentHandler_PreviewAllocation(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/shipments/allocation/preview", gin.H{
		"exchange_rate":   "5",
		"freight_foreign": "100",
		"import_tax_rate": "10",
		"items": []gin.H{
			{"description": "A", "quantity": 1, "unit_price_foreign": "300"},
			{"description": "B", "quantity": 1, "unit_price_foreign": "100"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var preview appimport.AllocationPreviewResponse
	decodeData(t, w, &preview)
	requireDecimal(t, "2500", preview.TotalBeforeTaxLocal)
	requireDecimal(t, "250", preview.ImportTaxLocal)
	require.Len(t, preview.Lines, 2)
	requireDecimal(t, "0.75", preview.Lines[0].Share)

	total := decimal.Zero
	for _, line := range preview.Lines {
		total = total.Add(line.TotalCostLocal)
	}
	requireDecimal(t, preview.TotalLocalCost.String(), total)

	var count int64
	require.NoError(t, env.db.Table("shipments").Count(&count).Error)
	assert.Zero(t, count)
}

func TestShipmentHandler_ImportItems(t *testing.T) {
	env := newAPIEnv(t)
	env.createProduct(t, "BRG-6211")

	upload := func(t *testing.T, fileName, content string) *httptest.ResponseRecorder {
		t.Helper()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile(itemSheetField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/shipments/import-items", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		return w
	}

	t.Run("parses and links known skus", func(t *testing.T) {
		w := upload(t, "invoice.csv", "sku,description,qty,price\nBRG-6211,Bearing,4,12.50\nUNKNOWN-1,Gasket,2,3\nBRG-6211,Bad row,-1,1\n")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result dto.ItemImportResponse
		decodeData(t, w, &result)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 2, result.ValidRows)
		assert.Equal(t, 1, result.ErrorRows)
		require.Len(t, result.Items, 2)
		assert.NotNil(t, result.Items[0].ProductID)
		assert.Equal(t, int64(4), result.Items[0].Quantity)
		assert.Nil(t, result.Items[1].ProductID)
		assert.Equal(t, []string{"UNKNOWN-1"}, result.UnmatchedSKUs)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shipments/import-items", nil)
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing required columns", func(t *testing.T) {
		w := upload(t, "invoice.csv", "sku,description\nBRG-6211,Bearing\n")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := "sku,qty,price\n" + string(bytes.Repeat([]byte("X,1,1\n"), 70<<10/6))
		w := upload(t, "invoice.csv", big)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
