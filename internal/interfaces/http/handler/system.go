package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/landedcost/backend/internal/infrastructure/event"
	"github.com/landedcost/backend/internal/infrastructure/logger"
	"github.com/landedcost/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// DatabasePinger reports whether the database answers
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// EventBusStats exposes event bus counters
type EventBusStats interface {
	Stats() event.BusStats
}

// StockValuation reports the value of stock on hand
type StockValuation interface {
	GetStockValueLocal(ctx context.Context) (decimal.Decimal, error)
	GetProductsInStock(ctx context.Context) (int64, error)
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	db        DatabasePinger
	bus       EventBusStats
	valuation StockValuation
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithDatabase adds a database check to the health endpoint
func WithDatabase(db DatabasePinger) SystemOption {
	return func(h *SystemHandler) { h.db = db }
}

// WithEventBus adds event bus counters to the health endpoint
func WithEventBus(bus EventBusStats) SystemOption {
	return func(h *SystemHandler) { h.bus = bus }
}

// WithStockValuation adds the stock valuation to the health endpoint
func WithStockValuation(v StockValuation) SystemOption {
	return func(h *SystemHandler) { h.valuation = v }
}

// WithVersion sets the version reported by the info endpoint
func WithVersion(version string) SystemOption {
	return func(h *SystemHandler) { h.version = version }
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		startTime: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Landed Cost API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "Landed Cost API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthResponse reports dependency health
// @name HandlerHealthResponse
type HealthResponse struct {
	Status          string          `json:"status" example:"ok"`
	Database        string          `json:"database,omitempty" example:"ok"`
	Events          *event.BusStats `json:"events,omitempty"`
	StockValueLocal *string         `json:"stock_value_local,omitempty" example:"125000.5000"`
	ProductsInStock *int64          `json:"products_in_stock,omitempty" example:"42"`
	Uptime          string          `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports database reachability, event bus counters and the current stock valuation
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	log := logger.GetGinLogger(c)

	if h.db != nil {
		resp.Database = "ok"
		if err := h.db.Ping(ctx); err != nil {
			log.Warn("Health check: database unreachable", zap.Error(err))
			resp.Database = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	if h.bus != nil {
		stats := h.bus.Stats()
		resp.Events = &stats
	}

	// Valuation is informational; a failure does not degrade health.
	if h.valuation != nil && status == http.StatusOK {
		if value, err := h.valuation.GetStockValueLocal(ctx); err == nil {
			s := value.StringFixed(4)
			resp.StockValueLocal = &s
		} else {
			log.Warn("Health check: stock valuation failed", zap.Error(err))
		}
		if count, err := h.valuation.GetProductsInStock(ctx); err == nil {
			resp.ProductsInStock = &count
		}
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
