package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProduct(t *testing.T, stock int64, avgLocal, avgForeign float64) *Product {
	t.Helper()
	p, err := NewProduct("SKU-001", "Test Product")
	require.NoError(t, err)
	p.StockQuantity = stock
	p.AverageCostLocal = decimal.NewFromFloat(avgLocal)
	p.AverageCostForeign = decimal.NewFromFloat(avgForeign)
	return p
}

func createTestReceipt(qty int64, costLocal, costForeign float64) Receipt {
	return Receipt{
		ShipmentID:       uuid.New(),
		ShipmentItemID:   uuid.New(),
		ShipmentRef:      "INV-2024-001",
		Quantity:         qty,
		UnitCostLocal:    decimal.NewFromFloat(costLocal),
		UnitCostForeign:  decimal.NewFromFloat(costForeign),
		UnitPriceForeign: decimal.NewFromFloat(costForeign),
		ReceivedAt:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name     string
		stock    int64
		avg      string
		qty      int64
		unitCost string
		expected string
	}{
		{"merges into existing stock", 10, "1000", 5, "1600", "1200"},
		{"empty stock takes incoming cost", 0, "0", 8, "356.25", "356.25"},
		{"zero combined quantity returns incoming cost", 0, "500", 0, "42.5", "42.5"},
		{"rounds to four places", 3, "10", 1, "11", "10.25"},
		{"repeating fraction is rounded", 2, "1", 1, "2", "1.3333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage(tt.stock, decimal.RequireFromString(tt.avg), tt.qty, decimal.RequireFromString(tt.unitCost))
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestReceive(t *testing.T) {
	t.Run("merges receipt into running average", func(t *testing.T) {
		p := createTestProduct(t, 10, 1000, 200)
		r := createTestReceipt(5, 1600, 320)

		m := Receive(p, r)

		assert.Equal(t, int64(15), p.StockQuantity)
		assert.True(t, decimal.NewFromInt(1200).Equal(p.AverageCostLocal))
		assert.True(t, decimal.NewFromInt(240).Equal(p.AverageCostForeign))
		assert.True(t, decimal.NewFromInt(320).Equal(p.LastReceivedUnitPriceForeign))
		assert.Equal(t, r.ReceivedAt, p.UpdatedAt)

		require.NotNil(t, m)
		assert.Equal(t, MovementTypeReceipt, m.Type)
		assert.Equal(t, p.ID, m.ProductID)
		assert.Equal(t, int64(5), m.QuantityDelta)
		assert.Equal(t, int64(10), m.StockBefore)
		assert.Equal(t, int64(15), m.StockAfter)
		assert.True(t, decimal.NewFromInt(1000).Equal(m.AvgCostLocalBefore))
		assert.True(t, decimal.NewFromInt(1200).Equal(m.AvgCostLocalAfter))
		assert.True(t, decimal.NewFromInt(200).Equal(m.AvgCostForeignBefore))
		assert.True(t, decimal.NewFromInt(240).Equal(m.AvgCostForeignAfter))
		assert.True(t, decimal.NewFromInt(1600).Equal(m.UnitCostLocal))
		require.NotNil(t, m.ShipmentID)
		assert.Equal(t, r.ShipmentID, *m.ShipmentID)
		require.NotNil(t, m.ShipmentItemID)
		assert.Equal(t, r.ShipmentItemID, *m.ShipmentItemID)
		assert.Equal(t, "INV-2024-001", m.ShipmentRef)
		assert.Equal(t, r.ReceivedAt, m.OccurredAt)
	})

	t.Run("first receipt on empty product takes unit cost", func(t *testing.T) {
		p := createTestProduct(t, 0, 0, 0)

		Receive(p, createTestReceipt(4, 356, 71.2))

		assert.Equal(t, int64(4), p.StockQuantity)
		assert.True(t, decimal.NewFromInt(356).Equal(p.AverageCostLocal))
		assert.True(t, decimal.NewFromFloat(71.2).Equal(p.AverageCostForeign))
	})

	t.Run("successive receipts accumulate", func(t *testing.T) {
		p := createTestProduct(t, 0, 0, 0)

		first := Receive(p, createTestReceipt(10, 100, 20))
		second := Receive(p, createTestReceipt(10, 200, 40))

		assert.Equal(t, int64(20), p.StockQuantity)
		assert.True(t, decimal.NewFromInt(150).Equal(p.AverageCostLocal))
		assert.Equal(t, first.StockAfter, second.StockBefore)
		assert.True(t, first.AvgCostLocalAfter.Equal(second.AvgCostLocalBefore))
	})
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with empty stock", func(t *testing.T) {
		p, err := NewProduct("  SKU-9 ", "Widget")

		require.NoError(t, err)
		assert.Equal(t, "SKU-9", p.SKU)
		assert.Equal(t, int64(0), p.StockQuantity)
		assert.True(t, p.AverageCostLocal.IsZero())
		assert.Equal(t, 1, p.Version)
	})

	t.Run("fails with empty SKU", func(t *testing.T) {
		p, err := NewProduct(" ", "Widget")

		require.Error(t, err)
		assert.Nil(t, p)
		assert.Contains(t, err.Error(), "SKU")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("SKU-9", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})
}

func TestProduct_ApplyOpeningBalance(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("seeds stock and records manual adjustment", func(t *testing.T) {
		p, err := NewProduct("SKU-1", "Widget")
		require.NoError(t, err)

		m, err := p.ApplyOpeningBalance(OpeningBalance{
			Quantity:           10,
			AverageCostLocal:   decimal.NewFromInt(1000),
			AverageCostForeign: decimal.NewFromInt(200),
		}, at)

		require.NoError(t, err)
		assert.Equal(t, int64(10), p.StockQuantity)
		assert.Equal(t, MovementTypeManualAdjustment, m.Type)
		assert.Equal(t, int64(0), m.StockBefore)
		assert.Equal(t, int64(10), m.StockAfter)
		assert.True(t, decimal.NewFromInt(10000).Equal(p.StockValueLocal()))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		p, _ := NewProduct("SKU-1", "Widget")

		_, err := p.ApplyOpeningBalance(OpeningBalance{Quantity: -1}, at)

		require.Error(t, err)
	})

	t.Run("rejects product that already has stock", func(t *testing.T) {
		p := createTestProduct(t, 3, 10, 2)

		_, err := p.ApplyOpeningBalance(OpeningBalance{Quantity: 1}, at)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "without stock")
	})
}
