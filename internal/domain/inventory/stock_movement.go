package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the kind of stock movement
type MovementType string

const (
	// MovementTypeReceipt is stock arriving from a delivered shipment
	MovementTypeReceipt MovementType = "receipt"
	// MovementTypeAdjustment is the compensating entry written when a receipt is reversed
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeManualAdjustment is an operator correction or opening balance
	MovementTypeManualAdjustment MovementType = "manual_adjustment"
	// MovementTypeSale is stock leaving through a sale
	MovementTypeSale MovementType = "sale"
	// MovementTypeReturn is stock coming back from a customer
	MovementTypeReturn MovementType = "return"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReceipt,
		MovementTypeAdjustment,
		MovementTypeManualAdjustment,
		MovementTypeSale,
		MovementTypeReturn:
		return true
	}
	return false
}

// StockMovement is an immutable ledger row. It is the only source of truth for
// reversal: the *Before fields are written back verbatim when a receipt is undone.
// Corrections are new rows, never updates.
type StockMovement struct {
	shared.BaseEntity
	ProductID            uuid.UUID
	Type                 MovementType
	QuantityDelta        int64
	StockBefore          int64
	StockAfter           int64
	AvgCostLocalBefore   decimal.Decimal
	AvgCostLocalAfter    decimal.Decimal
	AvgCostForeignBefore decimal.Decimal
	AvgCostForeignAfter  decimal.Decimal
	UnitCostLocal        decimal.Decimal
	UnitCostForeign      decimal.Decimal
	ShipmentID           *uuid.UUID
	ShipmentItemID       *uuid.UUID
	ShipmentRef          string
	ReversesMovementID   *uuid.UUID
	Reason               string
	OccurredAt           time.Time
}

func newStockMovement(productID uuid.UUID, movementType MovementType, delta int64, before, after stockState, at time.Time) *StockMovement {
	entity := shared.NewBaseEntity()
	entity.CreatedAt = at
	entity.UpdatedAt = at
	return &StockMovement{
		BaseEntity:           entity,
		ProductID:            productID,
		Type:                 movementType,
		QuantityDelta:        delta,
		StockBefore:          before.Stock,
		StockAfter:           after.Stock,
		AvgCostLocalBefore:   before.AvgCostLocal,
		AvgCostLocalAfter:    after.AvgCostLocal,
		AvgCostForeignBefore: before.AvgCostForeign,
		AvgCostForeignAfter:  after.AvgCostForeign,
		UnitCostLocal:        decimal.Zero,
		UnitCostForeign:      decimal.Zero,
		OccurredAt:           at,
	}
}

// WithUnitCosts sets the unit costs carried by the movement
func (m *StockMovement) WithUnitCosts(local, foreign decimal.Decimal) *StockMovement {
	m.UnitCostLocal = local
	m.UnitCostForeign = foreign
	return m
}

// WithShipment links the movement to the shipment line that caused it
func (m *StockMovement) WithShipment(shipmentID, itemID uuid.UUID, ref string) *StockMovement {
	m.ShipmentID = &shipmentID
	m.ShipmentItemID = &itemID
	m.ShipmentRef = ref
	return m
}

// WithReason sets a free-text reason
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// IsReceipt reports whether the movement is a shipment receipt
func (m *StockMovement) IsReceipt() bool {
	return m.Type == MovementTypeReceipt
}

// ValueLocal returns the local-currency value moved by this row
func (m *StockMovement) ValueLocal() decimal.Decimal {
	return m.UnitCostLocal.Mul(decimal.NewFromInt(m.QuantityDelta)).Round(CostScale)
}

// UnreversedReceipts returns the receipt movements in ms that no compensating
// adjustment in ms points back to, preserving order.
func UnreversedReceipts(ms []StockMovement) []StockMovement {
	reversed := make(map[uuid.UUID]struct{})
	for _, m := range ms {
		if m.Type == MovementTypeAdjustment && m.ReversesMovementID != nil {
			reversed[*m.ReversesMovementID] = struct{}{}
		}
	}

	open := make([]StockMovement, 0, len(ms))
	for _, m := range ms {
		if !m.IsReceipt() {
			continue
		}
		if _, done := reversed[m.ID]; done {
			continue
		}
		open = append(open, m)
	}
	return open
}
