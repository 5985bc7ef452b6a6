package inventory

import (
	"strings"
	"time"

	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostScale is the number of decimal places kept on stored costs
const CostScale int32 = 4

// AggregateTypeProduct is the aggregate type name for products
const AggregateTypeProduct = "Product"

// Product is the inventory master record. Stock and average costs are mutated
// only through Receive, Reverse and the opening balance entry.
type Product struct {
	shared.BaseAggregateRoot
	SKU                          string
	Name                         string
	StockQuantity                int64
	AverageCostLocal             decimal.Decimal
	AverageCostForeign           decimal.Decimal
	LastReceivedUnitPriceForeign decimal.Decimal
}

// NewProduct creates a product with empty stock
func NewProduct(sku, name string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if len(sku) > 64 {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot exceed 64 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}

	return &Product{
		BaseAggregateRoot:            shared.NewBaseAggregateRoot(),
		SKU:                          sku,
		Name:                         name,
		AverageCostLocal:             decimal.Zero,
		AverageCostForeign:           decimal.Zero,
		LastReceivedUnitPriceForeign: decimal.Zero,
	}, nil
}

// OpeningBalance describes stock already on hand when a product is registered
type OpeningBalance struct {
	Quantity           int64
	AverageCostLocal   decimal.Decimal
	AverageCostForeign decimal.Decimal
}

// ApplyOpeningBalance seeds stock and costs of a product that has no history yet
// and returns the manual adjustment movement recording it.
func (p *Product) ApplyOpeningBalance(ob OpeningBalance, at time.Time) (*StockMovement, error) {
	if ob.Quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Opening quantity cannot be negative")
	}
	if ob.AverageCostLocal.IsNegative() || ob.AverageCostForeign.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Opening costs cannot be negative")
	}
	if p.StockQuantity != 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Opening balance can only be applied to a product without stock")
	}

	before := p.state()
	p.StockQuantity = ob.Quantity
	p.AverageCostLocal = ob.AverageCostLocal.Round(CostScale)
	p.AverageCostForeign = ob.AverageCostForeign.Round(CostScale)
	p.Touch(at)

	return newStockMovement(p.ID, MovementTypeManualAdjustment, ob.Quantity, before, p.state(), at).
		WithUnitCosts(p.AverageCostLocal, p.AverageCostForeign).
		WithReason("opening balance"), nil
}

// StockValueLocal returns stock valued at the local average cost
func (p *Product) StockValueLocal() decimal.Decimal {
	return p.AverageCostLocal.Mul(decimal.NewFromInt(p.StockQuantity)).Round(CostScale)
}

// stockState is the part of a product captured before and after each movement
type stockState struct {
	Stock          int64
	AvgCostLocal   decimal.Decimal
	AvgCostForeign decimal.Decimal
}

func (p *Product) state() stockState {
	return stockState{
		Stock:          p.StockQuantity,
		AvgCostLocal:   p.AverageCostLocal,
		AvgCostForeign: p.AverageCostForeign,
	}
}
