package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/shopspring/decimal"
)

// ShipmentModel is the persistence model for the Shipment aggregate root.
type ShipmentModel struct {
	AggregateModel
	Reference            string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	SupplierName         string          `gorm:"type:varchar(200)"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'USD'"`
	ExchangeRate         decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	SubtotalForeign      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FreightForeign       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalForeign         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ImportTaxRate        decimal.Decimal `gorm:"type:decimal(9,6);not null;default:0"`
	IcmsRate             decimal.Decimal `gorm:"type:decimal(9,6);not null;default:0"`
	OtherTaxes           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SubtotalLocal        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FreightLocal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalBeforeTaxLocal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ImportTaxLocal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IcmsLocal            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalLocalCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status               string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	Notes                string              `gorm:"type:text"`
	Items                []ShipmentItemModel `gorm:"foreignKey:ShipmentID;references:ID"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment.
func (m *ShipmentModel) ToDomain() *importation.Shipment {
	s := &importation.Shipment{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		Reference:            m.Reference,
		SupplierName:         m.SupplierName,
		Currency:             m.Currency,
		ExchangeRate:         m.ExchangeRate,
		SubtotalForeign:      m.SubtotalForeign,
		FreightForeign:       m.FreightForeign,
		TotalForeign:         m.TotalForeign,
		ImportTaxRate:        m.ImportTaxRate,
		IcmsRate:             m.IcmsRate,
		OtherTaxes:           m.OtherTaxes,
		SubtotalLocal:        m.SubtotalLocal,
		FreightLocal:         m.FreightLocal,
		TotalBeforeTaxLocal:  m.TotalBeforeTaxLocal,
		ImportTaxLocal:       m.ImportTaxLocal,
		IcmsLocal:            m.IcmsLocal,
		TotalLocalCost:       m.TotalLocalCost,
		Status:               importation.ShipmentStatus(m.Status),
		OrderDate:            m.OrderDate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		ActualDeliveryDate:   m.ActualDeliveryDate,
		Notes:                m.Notes,
		Items:                make([]importation.ShipmentItem, len(m.Items)),
	}
	for i := range m.Items {
		s.Items[i] = *m.Items[i].ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Shipment, items included.
func (m *ShipmentModel) FromDomain(s *importation.Shipment) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Reference = s.Reference
	m.SupplierName = s.SupplierName
	m.Currency = s.Currency
	m.ExchangeRate = s.ExchangeRate
	m.SubtotalForeign = s.SubtotalForeign
	m.FreightForeign = s.FreightForeign
	m.TotalForeign = s.TotalForeign
	m.ImportTaxRate = s.ImportTaxRate
	m.IcmsRate = s.IcmsRate
	m.OtherTaxes = s.OtherTaxes
	m.SubtotalLocal = s.SubtotalLocal
	m.FreightLocal = s.FreightLocal
	m.TotalBeforeTaxLocal = s.TotalBeforeTaxLocal
	m.ImportTaxLocal = s.ImportTaxLocal
	m.IcmsLocal = s.IcmsLocal
	m.TotalLocalCost = s.TotalLocalCost
	m.Status = string(s.Status)
	m.OrderDate = s.OrderDate
	m.ExpectedDeliveryDate = s.ExpectedDeliveryDate
	m.ActualDeliveryDate = s.ActualDeliveryDate
	m.Notes = s.Notes
	m.Items = ShipmentItemModelsFromDomain(s.Items)
}

// ShipmentModelFromDomain creates a new persistence model from a domain Shipment.
func ShipmentModelFromDomain(s *importation.Shipment) *ShipmentModel {
	m := &ShipmentModel{}
	m.FromDomain(s)
	return m
}

// ShipmentItemModel is the persistence model for an allocated shipment line.
type ShipmentItemModel struct {
	BaseModel
	ShipmentID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber            int             `gorm:"not null"`
	Description           string          `gorm:"type:varchar(500);not null"`
	SKU                   string          `gorm:"type:varchar(64)"`
	ProductID             *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity              int64           `gorm:"not null"`
	UnitPriceForeign      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ItemTotalForeign      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AllocationShare       decimal.Decimal `gorm:"type:decimal(12,8);not null;default:0"`
	AllocatedFreightLocal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AllocatedImportTax    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AllocatedIcms         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AllocatedOtherTaxes   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCostLocal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCostForeign       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCostLocal        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ShipmentItemModel) TableName() string {
	return "shipment_items"
}

// ToDomain converts the persistence model to a domain ShipmentItem.
func (m *ShipmentItemModel) ToDomain() *importation.ShipmentItem {
	return &importation.ShipmentItem{
		BaseEntity:            m.BaseModel.ToDomain(),
		ShipmentID:            m.ShipmentID,
		LineNumber:            m.LineNumber,
		Description:           m.Description,
		SKU:                   m.SKU,
		Link:                  importation.LinkFromPtr(m.ProductID),
		Quantity:              m.Quantity,
		UnitPriceForeign:      m.UnitPriceForeign,
		ItemTotalForeign:      m.ItemTotalForeign,
		AllocationShare:       m.AllocationShare,
		AllocatedFreightLocal: m.AllocatedFreightLocal,
		AllocatedImportTax:    m.AllocatedImportTax,
		AllocatedIcms:         m.AllocatedIcms,
		AllocatedOtherTaxes:   m.AllocatedOtherTaxes,
		UnitCostLocal:         m.UnitCostLocal,
		UnitCostForeign:       m.UnitCostForeign,
		TotalCostLocal:        m.TotalCostLocal,
	}
}

// FromDomain populates the persistence model from a domain ShipmentItem.
func (m *ShipmentItemModel) FromDomain(i *importation.ShipmentItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.ShipmentID = i.ShipmentID
	m.LineNumber = i.LineNumber
	m.Description = i.Description
	m.SKU = i.SKU
	m.ProductID = i.Link.Ptr()
	m.Quantity = i.Quantity
	m.UnitPriceForeign = i.UnitPriceForeign
	m.ItemTotalForeign = i.ItemTotalForeign
	m.AllocationShare = i.AllocationShare
	m.AllocatedFreightLocal = i.AllocatedFreightLocal
	m.AllocatedImportTax = i.AllocatedImportTax
	m.AllocatedIcms = i.AllocatedIcms
	m.AllocatedOtherTaxes = i.AllocatedOtherTaxes
	m.UnitCostLocal = i.UnitCostLocal
	m.UnitCostForeign = i.UnitCostForeign
	m.TotalCostLocal = i.TotalCostLocal
}

// ShipmentItemModelsFromDomain converts a slice of domain items.
func ShipmentItemModelsFromDomain(items []importation.ShipmentItem) []ShipmentItemModel {
	out := make([]ShipmentItemModel, len(items))
	for i := range items {
		out[i].FromDomain(&items[i])
	}
	return out
}

// ShipmentDocumentModel stores metadata of a file kept in object storage.
type ShipmentDocumentModel struct {
	BaseModel
	ShipmentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"type:varchar(30);not null"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	StorageKey  string    `gorm:"type:varchar(500);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ShipmentDocumentModel) TableName() string {
	return "shipment_documents"
}

// ToDomain converts the persistence model to a domain ShipmentDocument.
func (m *ShipmentDocumentModel) ToDomain() *importation.ShipmentDocument {
	return &importation.ShipmentDocument{
		BaseEntity:  m.BaseModel.ToDomain(),
		ShipmentID:  m.ShipmentID,
		Kind:        importation.DocumentKind(m.Kind),
		FileName:    m.FileName,
		ContentType: m.ContentType,
		StorageKey:  m.StorageKey,
	}
}

// FromDomain populates the persistence model from a domain ShipmentDocument.
func (m *ShipmentDocumentModel) FromDomain(d *importation.ShipmentDocument) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.ShipmentID = d.ShipmentID
	m.Kind = string(d.Kind)
	m.FileName = d.FileName
	m.ContentType = d.ContentType
	m.StorageKey = d.StorageKey
}
