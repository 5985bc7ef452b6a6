package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShipment(t *testing.T, reference string, productID uuid.UUID) *importation.Shipment {
	t.Helper()
	s, err := importation.NewShipment(importation.ShipmentHeader{
		Reference:      reference,
		SupplierName:   "Shenzhen Fasteners",
		ExchangeRate:   dec("5"),
		FreightForeign: dec("100"),
		ImportTaxRate:  dec("0.6"),
	}, []importation.ItemDraft{
		{Description: "Bolts", SKU: "BOLT-10", Link: importation.Linked(productID), Quantity: 10, UnitPriceForeign: dec("20")},
		{Description: "Washers", Quantity: 4, UnitPriceForeign: dec("5")},
	})
	require.NoError(t, err)
	return s
}

func TestGormShipmentRepository_CreateAndFind(t *testing.T) {
	repo := NewGormShipmentRepository(newSQLiteDB(t))
	ctx := context.Background()
	productID := uuid.New()
	s := newTestShipment(t, "IMP-001", productID)
	require.NoError(t, repo.Create(ctx, s))

	t.Run("loads items in line order", func(t *testing.T) {
		found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "IMP-001", found.Reference)
		assert.Equal(t, importation.StatusPending, found.Status)
		assertDecimal(t, s.TotalLocalCost.String(), found.TotalLocalCost)
		require.Len(t, found.Items, 2)
		assert.Equal(t, 1, found.Items[0].LineNumber)
		assert.Equal(t, 2, found.Items[1].LineNumber)
		id, ok := found.Items[0].Link.ProductID()
		assert.True(t, ok)
		assert.Equal(t, productID, id)
		assert.False(t, found.Items[1].Link.IsLinked())
	})

	t.Run("for update behaves like find", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, found.Items, 2)
	})

	t.Run("missing shipment is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by reference", func(t *testing.T) {
		ok, err := repo.ExistsByReference(ctx, "IMP-001")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestGormShipmentRepository_FindAll(t *testing.T) {
	repo := NewGormShipmentRepository(newSQLiteDB(t))
	ctx := context.Background()

	first := newTestShipment(t, "IMP-001", uuid.New())
	second := newTestShipment(t, "IMP-002", uuid.New())
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	_, err := second.ChangeStatus(importation.StatusInTransit, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, second))

	inTransit := importation.StatusInTransit
	filter := importation.ShipmentFilter{Filter: shared.DefaultFilter(), Status: &inTransit}
	shipments, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, "IMP-002", shipments[0].Reference)
	assert.Len(t, shipments[0].Items, 2)

	count, err := repo.Count(ctx, importation.ShipmentFilter{Filter: shared.Filter{Search: "imp-00"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormShipmentRepository_SaveWithLock(t *testing.T) {
	repo := NewGormShipmentRepository(newSQLiteDB(t))
	ctx := context.Background()
	s := newTestShipment(t, "IMP-001", uuid.New())
	require.NoError(t, repo.Create(ctx, s))

	_, err := s.ChangeStatus(importation.StatusDelivered, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, s))

	stored, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, importation.StatusDelivered, stored.Status)
	assert.Equal(t, 2, stored.Version)
	assert.NotNil(t, stored.ActualDeliveryDate)

	// replaying the same version is rejected
	err = repo.SaveWithLock(ctx, s)
	assert.True(t, shared.IsOptimisticLockError(err))
}

func TestGormShipmentRepository_ReplaceItems(t *testing.T) {
	repo := NewGormShipmentRepository(newSQLiteDB(t))
	ctx := context.Background()
	s := newTestShipment(t, "IMP-001", uuid.New())
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, s.ReplaceItems([]importation.ItemDraft{
		{Description: "Nuts", Quantity: 50, UnitPriceForeign: dec("1")},
	}, time.Now()))
	require.NoError(t, repo.SaveWithLock(ctx, s))
	require.NoError(t, repo.ReplaceItems(ctx, s.ID, s.Items))

	stored, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Nuts", stored.Items[0].Description)
	assertDecimal(t, s.TotalLocalCost.String(), stored.TotalLocalCost)

	require.NoError(t, repo.ReplaceItems(ctx, s.ID, nil))
	stored, err = repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}

func TestGormShipmentDocumentRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormShipmentDocumentRepository(db)
	ctx := context.Background()
	shipmentID := uuid.New()

	doc, err := importation.NewShipmentDocument(shipmentID, importation.DocumentKindInvoice, "invoice.pdf", "application/pdf")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, doc))

	found, err := repo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.StorageKey, found.StorageKey)

	docs, err := repo.FindByShipment(ctx, shipmentID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, repo.Delete(ctx, doc.ID))
	assert.ErrorIs(t, repo.Delete(ctx, doc.ID), shared.ErrNotFound)
	_, err = repo.FindByID(ctx, doc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
