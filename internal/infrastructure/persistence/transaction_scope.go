package persistence

import (
	"context"

	appimport "github.com/landedcost/backend/internal/application/importation"
	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ShipmentRepo returns the shipment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ShipmentRepo() importation.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// GormInventoryTransactionScope implements the inventory TransactionScope using GORM transactions.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope.
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormShipmentTransactionScope implements the shipment TransactionScope using GORM transactions.
// Receipts and reversals write the shipment, products and ledger rows through it.
type GormShipmentTransactionScope struct {
	db *gorm.DB
}

// NewGormShipmentTransactionScope creates a new GormShipmentTransactionScope.
func NewGormShipmentTransactionScope(db *gorm.DB) *GormShipmentTransactionScope {
	return &GormShipmentTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormShipmentTransactionScope) Execute(ctx context.Context, fn func(repos appimport.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var (
	_ appinv.TransactionScope             = (*GormInventoryTransactionScope)(nil)
	_ appimport.TransactionScope          = (*GormShipmentTransactionScope)(nil)
	_ appinv.TransactionalRepositories    = (*gormTransactionalRepositories)(nil)
	_ appimport.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
