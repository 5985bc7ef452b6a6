package models

import (
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	SKU                          string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name                         string          `gorm:"type:varchar(200);not null"`
	StockQuantity                int64           `gorm:"not null;default:0"`
	AverageCostLocal             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCostForeign           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastReceivedUnitPriceForeign decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		BaseAggregateRoot:            m.ToAggregateRoot(),
		SKU:                          m.SKU,
		Name:                         m.Name,
		StockQuantity:                m.StockQuantity,
		AverageCostLocal:             m.AverageCostLocal,
		AverageCostForeign:           m.AverageCostForeign,
		LastReceivedUnitPriceForeign: m.LastReceivedUnitPriceForeign,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *inventory.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.StockQuantity = p.StockQuantity
	m.AverageCostLocal = p.AverageCostLocal
	m.AverageCostForeign = p.AverageCostForeign
	m.LastReceivedUnitPriceForeign = p.LastReceivedUnitPriceForeign
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
