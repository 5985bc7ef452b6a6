package importation

import (
	"context"

	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/inventory"
)

// TransactionScope runs a shipment operation atomically. Receiving or reversing
// a shipment writes products, ledger rows and the shipment in one transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories touched by
// shipment operations. All of them share the same underlying transaction.
type TransactionalRepositories interface {
	ShipmentRepo() importation.ShipmentRepository
	ProductRepo() inventory.ProductRepository
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
type NoOpTransactionScope struct {
	shipmentRepo importation.ShipmentRepository
	productRepo  inventory.ProductRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	shipmentRepo importation.ShipmentRepository,
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		shipmentRepo: shipmentRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ShipmentRepo returns the shipment repository.
func (s *NoOpTransactionScope) ShipmentRepo() importation.ShipmentRepository {
	return s.shipmentRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository {
	return s.productRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
