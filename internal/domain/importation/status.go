package importation

import (
	"strings"

	"github.com/landedcost/backend/internal/domain/shared"
)

// ShipmentStatus represents where an import shipment is in its lifecycle
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusCustoms   ShipmentStatus = "customs"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

// AllStatuses lists every valid shipment status
var AllStatuses = []ShipmentStatus{
	StatusPending,
	StatusInTransit,
	StatusCustoms,
	StatusDelivered,
	StatusCancelled,
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is known
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusCustoms, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsDelivered reports whether the status means goods are in stock
func (s ShipmentStatus) IsDelivered() bool {
	return s == StatusDelivered
}

// ParseShipmentStatus parses a status name
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	s := ShipmentStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Unknown shipment status: "+value)
	}
	return s, nil
}

// InventoryEffect is what a status change does to stock
type InventoryEffect string

const (
	EffectNone    InventoryEffect = "none"
	EffectReceive InventoryEffect = "receive"
	EffectReverse InventoryEffect = "reverse"
)

// TransitionEffect returns the inventory effect of moving from one status to another.
// Only crossing the delivered boundary touches stock.
func TransitionEffect(from, to ShipmentStatus) InventoryEffect {
	switch {
	case !from.IsDelivered() && to.IsDelivered():
		return EffectReceive
	case from.IsDelivered() && !to.IsDelivered():
		return EffectReverse
	default:
		return EffectNone
	}
}
