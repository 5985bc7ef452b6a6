package inventory

import (
	"fmt"
	"time"

	"github.com/landedcost/backend/internal/domain/shared"
)

// Reverse undoes a receipt. Average costs go back to the values captured on the
// original movement and stock drops by the received quantity, never below zero.
// The returned adjustment movement points back at the original.
//
// Restoring the captured snapshot is only exact when nothing else touched the
// product after the receipt; later movements are not replayed.
func Reverse(p *Product, original *StockMovement, at time.Time) (*StockMovement, error) {
	if original == nil || !original.IsReceipt() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Only receipt movements can be reversed")
	}
	if original.ProductID != p.ID {
		return nil, shared.NewDomainError("INVALID_MOVEMENT", "Movement does not belong to this product")
	}

	before := p.state()

	stock := before.Stock - original.QuantityDelta
	if stock < 0 {
		stock = 0
	}
	p.StockQuantity = stock
	p.AverageCostLocal = original.AvgCostLocalBefore
	p.AverageCostForeign = original.AvgCostForeignBefore
	p.Touch(at)

	m := newStockMovement(p.ID, MovementTypeAdjustment, -original.QuantityDelta, before, p.state(), at).
		WithUnitCosts(original.UnitCostLocal, original.UnitCostForeign).
		WithReason(fmt.Sprintf("reversal of receipt for shipment %s", original.ShipmentRef))
	if original.ShipmentID != nil && original.ShipmentItemID != nil {
		m.WithShipment(*original.ShipmentID, *original.ShipmentItemID, original.ShipmentRef)
	}
	reverses := original.ID
	m.ReversesMovementID = &reverses
	return m, nil
}
