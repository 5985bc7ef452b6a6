package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	SKU                       string           `json:"sku" binding:"required,max=64"`
	Name                      string           `json:"name" binding:"required,max=200"`
	OpeningStock              int64            `json:"opening_stock" binding:"min=0"`
	OpeningAverageCostLocal   *decimal.Decimal `json:"opening_average_cost_local"`
	OpeningAverageCostForeign *decimal.Decimal `json:"opening_average_cost_foreign"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                           uuid.UUID       `json:"id"`
	SKU                          string          `json:"sku"`
	Name                         string          `json:"name"`
	StockQuantity                int64           `json:"stock_quantity"`
	AverageCostLocal             decimal.Decimal `json:"average_cost_local"`
	AverageCostForeign           decimal.Decimal `json:"average_cost_foreign"`
	LastReceivedUnitPriceForeign decimal.Decimal `json:"last_received_unit_price_foreign"`
	StockValueLocal              decimal.Decimal `json:"stock_value_local"`
	CreatedAt                    time.Time       `json:"created_at"`
	UpdatedAt                    time.Time       `json:"updated_at"`
	Version                      int             `json:"version"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=sku name stock_quantity created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents paging options for ledger lists
type MovementListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// StockMovementResponse represents a ledger row in API responses
type StockMovementResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ProductID            uuid.UUID       `json:"product_id"`
	Type                 string          `json:"type"`
	QuantityDelta        int64           `json:"quantity_delta"`
	StockBefore          int64           `json:"stock_before"`
	StockAfter           int64           `json:"stock_after"`
	AvgCostLocalBefore   decimal.Decimal `json:"avg_cost_local_before"`
	AvgCostLocalAfter    decimal.Decimal `json:"avg_cost_local_after"`
	AvgCostForeignBefore decimal.Decimal `json:"avg_cost_foreign_before"`
	AvgCostForeignAfter  decimal.Decimal `json:"avg_cost_foreign_after"`
	UnitCostLocal        decimal.Decimal `json:"unit_cost_local"`
	UnitCostForeign      decimal.Decimal `json:"unit_cost_foreign"`
	ShipmentID           *uuid.UUID      `json:"shipment_id,omitempty"`
	ShipmentItemID       *uuid.UUID      `json:"shipment_item_id,omitempty"`
	ShipmentRef          string          `json:"shipment_ref,omitempty"`
	ReversesMovementID   *uuid.UUID      `json:"reverses_movement_id,omitempty"`
	Reason               string          `json:"reason,omitempty"`
	OccurredAt           time.Time       `json:"occurred_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:                           p.ID,
		SKU:                          p.SKU,
		Name:                         p.Name,
		StockQuantity:                p.StockQuantity,
		AverageCostLocal:             p.AverageCostLocal,
		AverageCostForeign:           p.AverageCostForeign,
		LastReceivedUnitPriceForeign: p.LastReceivedUnitPriceForeign,
		StockValueLocal:              p.StockValueLocal(),
		CreatedAt:                    p.CreatedAt,
		UpdatedAt:                    p.UpdatedAt,
		Version:                      p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []inventory.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain StockMovement to StockMovementResponse
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:                   m.ID,
		ProductID:            m.ProductID,
		Type:                 m.Type.String(),
		QuantityDelta:        m.QuantityDelta,
		StockBefore:          m.StockBefore,
		StockAfter:           m.StockAfter,
		AvgCostLocalBefore:   m.AvgCostLocalBefore,
		AvgCostLocalAfter:    m.AvgCostLocalAfter,
		AvgCostForeignBefore: m.AvgCostForeignBefore,
		AvgCostForeignAfter:  m.AvgCostForeignAfter,
		UnitCostLocal:        m.UnitCostLocal,
		UnitCostForeign:      m.UnitCostForeign,
		ShipmentID:           m.ShipmentID,
		ShipmentItemID:       m.ShipmentItemID,
		ShipmentRef:          m.ShipmentRef,
		ReversesMovementID:   m.ReversesMovementID,
		Reason:               m.Reason,
		OccurredAt:           m.OccurredAt,
	}
}

// ToStockMovementResponses converts a slice of movements
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}
