package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is one allocated shipment line arriving at a product
type Receipt struct {
	ShipmentID       uuid.UUID
	ShipmentItemID   uuid.UUID
	ShipmentRef      string
	Quantity         int64
	UnitCostLocal    decimal.Decimal
	UnitCostForeign  decimal.Decimal
	UnitPriceForeign decimal.Decimal
	ReceivedAt       time.Time
}

// WeightedAverage merges qty units at unitCost into stock units held at avg.
// When the combined quantity is zero the incoming cost is returned as is.
func WeightedAverage(stock int64, avg decimal.Decimal, qty int64, unitCost decimal.Decimal) decimal.Decimal {
	total := stock + qty
	if total == 0 {
		return unitCost
	}
	existing := avg.Mul(decimal.NewFromInt(stock))
	incoming := unitCost.Mul(decimal.NewFromInt(qty))
	return existing.Add(incoming).DivRound(decimal.NewFromInt(total), CostScale)
}

// Receive applies a receipt to the product and returns the ledger row that
// captures the product's state before and after. The caller persists both.
func Receive(p *Product, r Receipt) *StockMovement {
	before := p.state()

	p.AverageCostLocal = WeightedAverage(before.Stock, before.AvgCostLocal, r.Quantity, r.UnitCostLocal)
	p.AverageCostForeign = WeightedAverage(before.Stock, before.AvgCostForeign, r.Quantity, r.UnitCostForeign)
	p.StockQuantity = before.Stock + r.Quantity
	p.LastReceivedUnitPriceForeign = r.UnitPriceForeign
	p.Touch(r.ReceivedAt)

	return newStockMovement(p.ID, MovementTypeReceipt, r.Quantity, before, p.state(), r.ReceivedAt).
		WithUnitCosts(r.UnitCostLocal, r.UnitCostForeign).
		WithShipment(r.ShipmentID, r.ShipmentItemID, r.ShipmentRef)
}
