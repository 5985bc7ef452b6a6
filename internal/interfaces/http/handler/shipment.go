package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appimport "github.com/landedcost/backend/internal/application/importation"
	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/interfaces/http/dto"
	"github.com/landedcost/backend/internal/interfaces/http/middleware"
)

const (
	// itemSheetField is the multipart field carrying a supplier invoice sheet
	itemSheetField = "file"
	// maxIdempotencyKeyLength bounds client supplied idempotency keys
	maxIdempotencyKeyLength = 200
)

// ShipmentHandler handles shipment API endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService *appimport.ShipmentService
	importService   *appimport.ItemImportService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *appimport.ShipmentService, importService *appimport.ItemImportService) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
		importService:   importService,
	}
}

// Create godoc
// @ID           createShipment
// @Summary      Register a shipment
// @Description  Create a pending shipment and compute its landed cost allocation
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body appimport.CreateShipmentRequest true "Shipment header and items"
// @Success      201 {object} APIResponse[appimport.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req appimport.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.CreateShipment(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, shipment)
}

// GetByID godoc
// @ID           getShipment
// @Summary      Get shipment by ID
// @Description  Retrieve a shipment with its costed items
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} APIResponse[appimport.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}

	shipment, err := h.shipmentService.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// List godoc
// @ID           listShipments
// @Summary      List shipments
// @Description  List shipments with search, status filter and pagination
// @Tags         shipments
// @Produce      json
// @Param        search query string false "Search reference or supplier"
// @Param        status query string false "Shipment status" Enums(pending, in_transit, customs, delivered, cancelled)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" Enums(reference, order_date, created_at, updated_at, total_local_cost)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appimport.ShipmentListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	var filter appimport.ShipmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	shipments, total, err := h.shipmentService.ListShipments(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, shipments, total, max(filter.Page, 1), filter.PageSize)
}

// ReplaceItems godoc
// @ID           replaceShipmentItems
// @Summary      Replace shipment items
// @Description  Replace every item of a shipment and recompute the allocation. Delivered shipments are rejected.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body appimport.ReplaceShipmentItemsRequest true "New item list"
// @Success      200 {object} APIResponse[appimport.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shipments/{id}/items [put]
func (h *ShipmentHandler) ReplaceItems(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}

	var req appimport.ReplaceShipmentItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.ReplaceShipmentItems(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// SetStatus godoc
// @ID           setShipmentStatus
// @Summary      Change shipment status
// @Description  Move a shipment to a new status. Entering delivered receives stock; leaving delivered reverses it.
// @Description  Repeating a request with the same Idempotency-Key returns the current state without side effects.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        Idempotency-Key header string false "Client key that makes retries safe"
// @Param        request body appimport.SetShipmentStatusRequest true "Target status"
// @Success      200 {object} APIResponse[appimport.StatusChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /shipments/{id}/status [post]
func (h *ShipmentHandler) SetStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}

	var req appimport.SetShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	result, err := h.shipmentService.SetShipmentStatus(c.Request.Context(), id, req, key)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// PreviewAllocation godoc
// @ID           previewShipmentAllocation
// @Summary      Preview a cost allocation
// @Description  Compute landed costs for a draft without saving anything
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body appimport.AllocationPreviewRequest true "Draft header and items"
// @Success      200 {object} APIResponse[appimport.AllocationPreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /shipments/allocation/preview [post]
func (h *ShipmentHandler) PreviewAllocation(c *gin.Context) {
	var req appimport.AllocationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.shipmentService.PreviewAllocation(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, preview)
}

// ListMovements godoc
// @ID           listShipmentMovements
// @Summary      List shipment ledger entries
// @Description  List the receipt and reversal movements a shipment produced, oldest first
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} APIResponse[[]appinv.StockMovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/{id}/movements [get]
func (h *ShipmentHandler) ListMovements(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "shipment")
	if !ok {
		return
	}

	movements, err := h.shipmentService.ListShipmentMovements(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if movements == nil {
		movements = []appinv.StockMovementResponse{}
	}

	h.Success(c, movements)
}

// ImportItems godoc
// @ID           importShipmentItems
// @Summary      Parse a supplier invoice sheet
// @Description  Parse a .csv or .xlsx sheet into shipment item requests. Nothing is saved.
// @Tags         shipments
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Invoice sheet (.csv or .xlsx)"
// @Success      200 {object} APIResponse[dto.ItemImportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /shipments/import-items [post]
func (h *ShipmentHandler) ImportItems(c *gin.Context) {
	header, err := c.FormFile(itemSheetField)
	if err != nil {
		h.BadRequest(c, "A sheet must be uploaded in the 'file' field")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Uploaded file could not be read")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Uploaded file could not be read")
		return
	}

	result, err := h.importService.ParseItems(c.Request.Context(), header.Filename, data)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewItemImportResponse(result)))
}
