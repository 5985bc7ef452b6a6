package importation

import (
	"context"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/shared"
)

// ShipmentFilter narrows shipment listings
type ShipmentFilter struct {
	shared.Filter
	Status *ShipmentStatus
}

// ShipmentRepository defines persistence for shipments and their items
type ShipmentRepository interface {
	// FindByID loads a shipment with its items ordered by line number
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	// FindByIDForUpdate is FindByID holding a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindAll(ctx context.Context, filter ShipmentFilter) ([]Shipment, error)
	Count(ctx context.Context, filter ShipmentFilter) (int64, error)
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	// Create inserts the shipment and its items
	Create(ctx context.Context, shipment *Shipment) error
	// SaveWithLock updates header fields when the stored version is shipment.Version-1
	SaveWithLock(ctx context.Context, shipment *Shipment) error
	// ReplaceItems deletes the stored items of the shipment and inserts the given ones
	ReplaceItems(ctx context.Context, shipmentID uuid.UUID, items []ShipmentItem) error
}

// ShipmentDocumentRepository defines persistence for document metadata
type ShipmentDocumentRepository interface {
	Create(ctx context.Context, doc *ShipmentDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*ShipmentDocument, error)
	FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]ShipmentDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
