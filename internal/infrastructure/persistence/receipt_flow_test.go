package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appimport "github.com/landedcost/backend/internal/application/importation"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type receiptFlow struct {
	db       *gorm.DB
	products *GormProductRepository
	service  *appimport.ShipmentService
}

func newReceiptFlow(t *testing.T) *receiptFlow {
	db := newSQLiteDB(t)
	service := appimport.NewShipmentService(
		NewGormShipmentRepository(db),
		NewGormStockMovementRepository(db),
		NewGormShipmentTransactionScope(db),
		zap.NewNop(),
	)
	return &receiptFlow{db: db, products: NewGormProductRepository(db), service: service}
}

func (f *receiptFlow) seedProduct(t *testing.T, sku string, stock int64, avgLocal string) uuid.UUID {
	t.Helper()
	p, err := inventory.NewProduct(sku, "Product "+sku)
	require.NoError(t, err)
	p.StockQuantity = stock
	p.AverageCostLocal = dec(avgLocal)
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func (f *receiptFlow) setStatus(t *testing.T, id uuid.UUID, status string) *appimport.StatusChangeResponse {
	t.Helper()
	res, err := f.service.SetShipmentStatus(context.Background(), id, appimport.SetShipmentStatusRequest{Status: status}, "")
	require.NoError(t, err)
	return res
}

func TestReceiptFlow_DeliverAndCancel(t *testing.T) {
	f := newReceiptFlow(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "BOLT-10", 10, "1000")

	created, err := f.service.CreateShipment(ctx, appimport.CreateShipmentRequest{
		Reference:    "IMP-001",
		ExchangeRate: dec("1"),
		Items: []appimport.ShipmentItemRequest{
			{Description: "Bolts", ProductID: &productID, Quantity: 5, UnitPriceForeign: dec("1600")},
		},
	})
	require.NoError(t, err)

	delivered := f.setStatus(t, created.ID, "delivered")
	assert.Equal(t, "receive", delivered.Effect)
	require.Len(t, delivered.Movements, 1)

	p, err := f.products.FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.StockQuantity)
	assertDecimal(t, "1200", p.AverageCostLocal)
	assert.Equal(t, 2, p.Version)

	cancelled := f.setStatus(t, created.ID, "cancelled")
	assert.Equal(t, "reverse", cancelled.Effect)

	p, err = f.products.FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.StockQuantity)
	assertDecimal(t, "1000", p.AverageCostLocal)

	movements, err := f.service.ListShipmentMovements(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.NotNil(t, movements[1].ReversesMovementID)
	assert.Equal(t, movements[0].ID, *movements[1].ReversesMovementID)
}

func TestReceiptFlow_RollsBackOnConflict(t *testing.T) {
	f := newReceiptFlow(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "BOLT-10", 10, "1000")

	created, err := f.service.CreateShipment(ctx, appimport.CreateShipmentRequest{
		Reference:    "IMP-002",
		ExchangeRate: dec("1"),
		Items: []appimport.ShipmentItemRequest{
			{Description: "Bolts", ProductID: &productID, Quantity: 5, UnitPriceForeign: dec("1600")},
		},
	})
	require.NoError(t, err)

	// every shipment header write misses its version check
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:stale_shipment", func(tx *gorm.DB) {
		if tx.Statement.Table == "shipments" {
			tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
		}
	}))

	_, err = f.service.SetShipmentStatus(ctx, created.ID, appimport.SetShipmentStatusRequest{Status: "delivered"}, "")
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	p, err := f.products.FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.StockQuantity)
	assertDecimal(t, "1000", p.AverageCostLocal)

	count, err := NewGormStockMovementRepository(f.db).CountByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
