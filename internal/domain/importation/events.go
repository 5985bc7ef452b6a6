package importation

import (
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeShipmentCreated         = "ShipmentCreated"
	EventTypeShipmentStatusChanged   = "ShipmentStatusChanged"
	EventTypeShipmentItemsReplaced   = "ShipmentItemsReplaced"
	EventTypeShipmentReceived        = "ShipmentReceived"
	EventTypeShipmentReceiptReversed = "ShipmentReceiptReversed"
)

// ShipmentCreatedEvent is raised when a shipment is registered
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID       `json:"shipment_id"`
	Reference      string          `json:"reference"`
	ItemCount      int             `json:"item_count"`
	TotalLocalCost decimal.Decimal `json:"total_local_cost"`
}

// NewShipmentCreatedEvent creates a new ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentCreated, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		Reference:       s.Reference,
		ItemCount:       len(s.Items),
		TotalLocalCost:  s.TotalLocalCost,
	}
}

// ShipmentStatusChangedEvent is raised on every effective status change
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID       `json:"shipment_id"`
	Reference  string          `json:"reference"`
	From       ShipmentStatus  `json:"from"`
	To         ShipmentStatus  `json:"to"`
	Effect     InventoryEffect `json:"effect"`
}

// NewShipmentStatusChangedEvent creates a new ShipmentStatusChangedEvent
func NewShipmentStatusChangedEvent(s *Shipment, t StatusTransition) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentStatusChanged, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		Reference:       s.Reference,
		From:            t.From,
		To:              t.To,
		Effect:          t.Effect,
	}
}

// ShipmentItemsReplacedEvent is raised when the item list is swapped
type ShipmentItemsReplacedEvent struct {
	shared.BaseDomainEvent
	ShipmentID        uuid.UUID       `json:"shipment_id"`
	PreviousItemCount int             `json:"previous_item_count"`
	ItemCount         int             `json:"item_count"`
	TotalLocalCost    decimal.Decimal `json:"total_local_cost"`
}

// NewShipmentItemsReplacedEvent creates a new ShipmentItemsReplacedEvent
func NewShipmentItemsReplacedEvent(s *Shipment, previous int) *ShipmentItemsReplacedEvent {
	return &ShipmentItemsReplacedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeShipmentItemsReplaced, AggregateTypeShipment, s.ID),
		ShipmentID:        s.ID,
		PreviousItemCount: previous,
		ItemCount:         len(s.Items),
		TotalLocalCost:    s.TotalLocalCost,
	}
}

// ShipmentReceivedEvent is raised after linked items were posted to stock
type ShipmentReceivedEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID       `json:"shipment_id"`
	Reference      string          `json:"reference"`
	Movements      int             `json:"movements"`
	TotalLocalCost decimal.Decimal `json:"total_local_cost"`
	ReceivedAt     time.Time       `json:"received_at"`
}

// NewShipmentReceivedEvent creates a new ShipmentReceivedEvent
func NewShipmentReceivedEvent(s *Shipment, movements int, at time.Time) *ShipmentReceivedEvent {
	return &ShipmentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentReceived, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		Reference:       s.Reference,
		Movements:       movements,
		TotalLocalCost:  s.TotalLocalCost,
		ReceivedAt:      at,
	}
}

// ShipmentReceiptReversedEvent is raised after receipts were compensated
type ShipmentReceiptReversedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	Reference  string    `json:"reference"`
	Movements  int       `json:"movements"`
	ReversedAt time.Time `json:"reversed_at"`
}

// NewShipmentReceiptReversedEvent creates a new ShipmentReceiptReversedEvent
func NewShipmentReceiptReversedEvent(s *Shipment, movements int, at time.Time) *ShipmentReceiptReversedEvent {
	return &ShipmentReceiptReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentReceiptReversed, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		Reference:       s.Reference,
		Movements:       movements,
		ReversedAt:      at,
	}
}
