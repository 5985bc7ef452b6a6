package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/shared"
)

// ProductRepository defines persistence for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Create(ctx context.Context, product *Product) error
	// SaveWithLock writes stock and costs only if the stored version is
	// product.Version-1, failing with OPTIMISTIC_LOCK_FAILED otherwise.
	SaveWithLock(ctx context.Context, product *Product) error
}

// StockMovementRepository defines persistence for the append-only stock ledger
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)
	// FindByShipment returns every movement linked to a shipment, oldest first
	FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]StockMovement, error)
	// FindByProduct returns a product's movements, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
