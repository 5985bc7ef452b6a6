package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProduct(t *testing.T, repo *GormProductRepository, sku, name string) *inventory.Product {
	t.Helper()
	p, err := inventory.NewProduct(sku, name)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestGormProductRepository_FindBySKU(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t))
	ctx := context.Background()
	created := createProduct(t, repo, "BOLT-10", "Hex bolt M10")

	t.Run("matches case-insensitively", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, " bolt-10 ")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("unknown SKU is not found", func(t *testing.T) {
		_, err := repo.FindBySKU(ctx, "NUT-01")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by SKU", func(t *testing.T) {
		ok, err := repo.ExistsBySKU(ctx, "BOLT-10")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsBySKU(ctx, "NUT-01")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGormProductRepository_FindByID(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	a := createProduct(t, repo, "A-1", "Alpha")
	b := createProduct(t, repo, "B-1", "Beta")

	products, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormProductRepository_FindAll(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t))
	ctx := context.Background()
	createProduct(t, repo, "BOLT-10", "Hex bolt M10")
	createProduct(t, repo, "BOLT-12", "Hex bolt M12")
	createProduct(t, repo, "NUT-10", "Hex nut M10")

	t.Run("search by name or SKU", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "bolt"
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, products, 2)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("paginates and orders", func(t *testing.T) {
		filter := shared.Filter{Page: 2, PageSize: 2, OrderBy: "sku", OrderDir: "asc"}
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "NUT-10", products[0].SKU)
	})

	t.Run("unknown sort field falls back to SKU", func(t *testing.T) {
		filter := shared.Filter{OrderBy: "sku; DROP TABLE products", OrderDir: "asc"}
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "BOLT-10", products[0].SKU)
	})
}

func TestGormProductRepository_SaveWithLock(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t))
	ctx := context.Background()
	p := createProduct(t, repo, "BOLT-10", "Hex bolt M10")

	p.StockQuantity = 15
	p.AverageCostLocal = dec("1200")
	p.AverageCostForeign = dec("240")
	p.LastReceivedUnitPriceForeign = dec("320")
	p.Touch(time.Now())
	p.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, p))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, int64(15), stored.StockQuantity)
	assertDecimal(t, "1200", stored.AverageCostLocal)
	assertDecimal(t, "320", stored.LastReceivedUnitPriceForeign)

	// a writer holding the original version loses
	stale := *stored
	stale.Version = 2
	err = repo.SaveWithLock(ctx, &stale)
	require.Error(t, err)
	assert.True(t, shared.IsOptimisticLockError(err))
}

func TestGormProductRepository_SaveWithLock_NoRowsMatched(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB)

	p, err := inventory.NewProduct("BOLT-10", "Hex bolt M10")
	require.NoError(t, err)
	p.IncrementVersion()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveWithLock(context.Background(), p)
	require.Error(t, err)
	assert.True(t, shared.IsOptimisticLockError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
