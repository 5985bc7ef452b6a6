package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockMovementModel is the persistence model for ledger rows. Rows are never updated.
type StockMovementModel struct {
	BaseModel
	ProductID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_product,priority:1"`
	Type                 string          `gorm:"type:varchar(30);not null"`
	QuantityDelta        int64           `gorm:"not null"`
	StockBefore          int64           `gorm:"not null"`
	StockAfter           int64           `gorm:"not null"`
	AvgCostLocalBefore   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AvgCostLocalAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AvgCostForeignBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AvgCostForeignAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCostLocal        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCostForeign      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShipmentID           *uuid.UUID      `gorm:"type:uuid;index"`
	ShipmentItemID       *uuid.UUID      `gorm:"type:uuid"`
	ShipmentRef          string          `gorm:"type:varchar(100)"`
	ReversesMovementID   *uuid.UUID      `gorm:"type:uuid;index"`
	Reason               string          `gorm:"type:varchar(255)"`
	OccurredAt           time.Time       `gorm:"not null;index:idx_stock_movement_product,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:           m.BaseModel.ToDomain(),
		ProductID:            m.ProductID,
		Type:                 inventory.MovementType(m.Type),
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

// FromDomain populates the persistence model from a domain StockMovement.
func (m *StockMovementModel) FromDomain(s *inventory.StockMovement) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ProductID = s.ProductID
	m.Type = string(s.Type)
	m.QuantityDelta = s.QuantityDelta
	m.StockBefore = s.StockBefore
	m.StockAfter = s.StockAfter
	m.AvgCostLocalBefore = s.AvgCostLocalBefore
	m.AvgCostLocalAfter = s.AvgCostLocalAfter
	m.AvgCostForeignBefore = s.AvgCostForeignBefore
	m.AvgCostForeignAfter = s.AvgCostForeignAfter
	m.UnitCostLocal = s.UnitCostLocal
	m.UnitCostForeign = s.UnitCostForeign
	m.ShipmentID = s.ShipmentID
	m.ShipmentItemID = s.ShipmentItemID
	m.ShipmentRef = s.ShipmentRef
	m.ReversesMovementID = s.ReversesMovementID
	m.Reason = s.Reason
	m.OccurredAt = s.OccurredAt
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(s)
	return m
}
