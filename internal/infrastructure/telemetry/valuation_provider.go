package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockValuationProvider implements StockValuationProvider over the products table.
type GormStockValuationProvider struct {
	db *gorm.DB
}

// NewGormStockValuationProvider creates a new GormStockValuationProvider.
func NewGormStockValuationProvider(db *gorm.DB) *GormStockValuationProvider {
	return &GormStockValuationProvider{db: db}
}

// GetStockValueLocal returns SUM(stock_quantity * average_cost_local).
func (p *GormStockValuationProvider) GetStockValueLocal(ctx context.Context) (decimal.Decimal, error) {
	var value decimal.NullDecimal
	err := p.db.WithContext(ctx).
		Table("products").
		Select("SUM(stock_quantity * average_cost_local)").
		Where("stock_quantity > 0").
		Scan(&value).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !value.Valid {
		return decimal.Zero, nil
	}
	return value.Decimal, nil
}

// GetProductsInStock returns how many products have stock above zero.
func (p *GormStockValuationProvider) GetProductsInStock(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("stock_quantity > 0").
		Count(&count).Error
	return count, err
}
