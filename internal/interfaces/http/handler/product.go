package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appinv "github.com/landedcost/backend/internal/application/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles product and stock ledger endpoints
type ProductHandler struct {
	BaseHandler
	productService *appinv.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *appinv.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create godoc
// @ID           createProduct
// @Summary      Register a product
// @Description  Create a product, optionally with an opening stock balance recorded in the ledger
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body appinv.CreateProductRequest true "Product registration"
// @Success      201 {object} APIResponse[appinv.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req appinv.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get product by ID
// @Description  Retrieve a product with its stock and weighted average costs
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[appinv.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  List products with search and pagination
// @Tags         products
// @Produce      json
// @Param        search query string false "Search SKU or name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" Enums(sku, name, stock_quantity, created_at, updated_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appinv.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter appinv.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, max(filter.Page, 1), filter.PageSize)
}

// ListMovements godoc
// @ID           listProductMovements
// @Summary      List a product's stock ledger
// @Description  List the stock movements of a product, oldest first
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(500)
// @Success      200 {object} APIResponse[[]appinv.StockMovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id}/movements [get]
func (h *ProductHandler) ListMovements(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var filter appinv.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	movements, total, err := h.productService.ListMovements(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, max(filter.Page, 1), filter.PageSize)
}

// ExportMovements godoc
// @ID           exportProductMovements
// @Summary      Export a product's stock ledger
// @Description  Download the stock movements of a product as an .xlsx workbook
// @Tags         products
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id}/movements/export [get]
func (h *ProductHandler) ExportMovements(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	// Buffer so a failure midway still produces a JSON error
	var buf bytes.Buffer
	if err := h.productService.ExportMovements(c.Request.Context(), id, &buf); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	fileName := fmt.Sprintf("movements_%s_%s.xlsx", id.String()[:8], time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
