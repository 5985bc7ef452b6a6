package importation

import (
	"time"

	"github.com/google/uuid"
	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/shopspring/decimal"
)

// ShipmentItemRequest is one line in create and replace requests
type ShipmentItemRequest struct {
	Description      string          `json:"description" binding:"max=500"`
	SKU              string          `json:"sku" binding:"max=64"`
	ProductID        *uuid.UUID      `json:"product_id"`
	Quantity         int64           `json:"quantity"`
	UnitPriceForeign decimal.Decimal `json:"unit_price_foreign"`
}

// CreateShipmentRequest represents a request to register a shipment
type CreateShipmentRequest struct {
	Reference            string                `json:"reference" binding:"required,max=100"`
	SupplierName         string                `json:"supplier_name" binding:"max=200"`
	Currency             string                `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate         decimal.Decimal       `json:"exchange_rate"`
	FreightForeign       decimal.Decimal       `json:"freight_foreign"`
	ImportTaxRate        decimal.Decimal       `json:"import_tax_rate"`
	IcmsRate             decimal.Decimal       `json:"icms_rate"`
	OtherTaxes           decimal.Decimal       `json:"other_taxes"`
	OrderDate            *time.Time            `json:"order_date"`
	ExpectedDeliveryDate *time.Time            `json:"expected_delivery_date"`
	Notes                string                `json:"notes" binding:"max=2000"`
	Items                []ShipmentItemRequest `json:"items" binding:"dive"`
}

// SetShipmentStatusRequest represents a status change request
type SetShipmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_transit customs delivered cancelled"`
}

// ReplaceShipmentItemsRequest replaces every item of a shipment
type ReplaceShipmentItemsRequest struct {
	Items []ShipmentItemRequest `json:"items" binding:"dive"`
}

// AllocationPreviewRequest computes costs without persisting anything
type AllocationPreviewRequest struct {
	ExchangeRate   decimal.Decimal       `json:"exchange_rate"`
	FreightForeign decimal.Decimal       `json:"freight_foreign"`
	ImportTaxRate  decimal.Decimal       `json:"import_tax_rate"`
	IcmsRate       decimal.Decimal       `json:"icms_rate"`
	OtherTaxes     decimal.Decimal       `json:"other_taxes"`
	Items          []ShipmentItemRequest `json:"items" binding:"dive"`
}

// ShipmentListFilter represents filter options for shipment lists
type ShipmentListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending in_transit customs delivered cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=reference order_date created_at updated_at total_local_cost"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ShipmentItemResponse represents a costed line in API responses
type ShipmentItemResponse struct {
	ID                    uuid.UUID       `json:"id"`
	LineNumber            int             `json:"line_number"`
	Description           string          `json:"description"`
	SKU                   string          `json:"sku,omitempty"`
	ProductID             *uuid.UUID      `json:"product_id,omitempty"`
	Quantity              int64           `json:"quantity"`
	UnitPriceForeign      decimal.Decimal `json:"unit_price_foreign"`
	ItemTotalForeign      decimal.Decimal `json:"item_total_foreign"`
	AllocationShare       decimal.Decimal `json:"allocation_share"`
	AllocatedFreightLocal decimal.Decimal `json:"allocated_freight_local"`
	AllocatedImportTax    decimal.Decimal `json:"allocated_import_tax"`
	AllocatedIcms         decimal.Decimal `json:"allocated_icms"`
	AllocatedOtherTaxes   decimal.Decimal `json:"allocated_other_taxes"`
	UnitCostLocal         decimal.Decimal `json:"unit_cost_local"`
	UnitCostForeign       decimal.Decimal `json:"unit_cost_foreign"`
	TotalCostLocal        decimal.Decimal `json:"total_cost_local"`
}

// ShipmentResponse represents a shipment with its items in API responses
type ShipmentResponse struct {
	ID                   uuid.UUID              `json:"id"`
	Reference            string                 `json:"reference"`
	SupplierName         string                 `json:"supplier_name,omitempty"`
	Currency             string                 `json:"currency"`
	ExchangeRate         decimal.Decimal        `json:"exchange_rate"`
	SubtotalForeign      decimal.Decimal        `json:"subtotal_foreign"`
	FreightForeign       decimal.Decimal        `json:"freight_foreign"`
	TotalForeign         decimal.Decimal        `json:"total_foreign"`
	ImportTaxRate        decimal.Decimal        `json:"import_tax_rate"`
	IcmsRate             decimal.Decimal        `json:"icms_rate"`
	OtherTaxes           decimal.Decimal        `json:"other_taxes"`
	SubtotalLocal        decimal.Decimal        `json:"subtotal_local"`
	FreightLocal         decimal.Decimal        `json:"freight_local"`
	TotalBeforeTaxLocal  decimal.Decimal        `json:"total_before_tax_local"`
	ImportTaxLocal       decimal.Decimal        `json:"import_tax_local"`
	IcmsLocal            decimal.Decimal        `json:"icms_local"`
	TotalLocalCost       decimal.Decimal        `json:"total_local_cost"`
	Status               string                 `json:"status"`
	OrderDate            *time.Time             `json:"order_date,omitempty"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time             `json:"actual_delivery_date,omitempty"`
	Notes                string                 `json:"notes,omitempty"`
	Items                []ShipmentItemResponse `json:"items"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	Version              int                    `json:"version"`
}

// ShipmentListItemResponse is the compact shipment shape used in lists
type ShipmentListItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Reference          string          `json:"reference"`
	SupplierName       string          `json:"supplier_name,omitempty"`
	Status             string          `json:"status"`
	TotalForeign       decimal.Decimal `json:"total_foreign"`
	TotalLocalCost     decimal.Decimal `json:"total_local_cost"`
	ItemCount          int             `json:"item_count"`
	OrderDate          *time.Time      `json:"order_date,omitempty"`
	ActualDeliveryDate *time.Time      `json:"actual_delivery_date,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// StatusChangeResponse describes the result of a status change
type StatusChangeResponse struct {
	Shipment     ShipmentResponse               `json:"shipment"`
	From         string                         `json:"from"`
	To           string                         `json:"to"`
	Effect       string                         `json:"effect"`
	Movements    []appinv.StockMovementResponse `json:"movements"`
	SkippedItems int                            `json:"skipped_items"`
	Replayed     bool                           `json:"replayed"`
}

// AllocationLineResponse is one line of an allocation preview
type AllocationLineResponse struct {
	LineNumber       int             `json:"line_number"`
	Quantity         int64           `json:"quantity"`
	UnitPriceForeign decimal.Decimal `json:"unit_price_foreign"`
	ItemTotalForeign decimal.Decimal `json:"item_total_foreign"`
	Share            decimal.Decimal `json:"share"`
	FreightLocal     decimal.Decimal `json:"freight_local"`
	ImportTax        decimal.Decimal `json:"import_tax"`
	Icms             decimal.Decimal `json:"icms"`
	OtherTaxes       decimal.Decimal `json:"other_taxes"`
	TotalCostLocal   decimal.Decimal `json:"total_cost_local"`
	UnitCostLocal    decimal.Decimal `json:"unit_cost_local"`
	UnitCostForeign  decimal.Decimal `json:"unit_cost_foreign"`
}

// AllocationPreviewResponse is the result of an allocation preview
type AllocationPreviewResponse struct {
	SubtotalForeign     decimal.Decimal          `json:"subtotal_foreign"`
	TotalForeign        decimal.Decimal          `json:"total_foreign"`
	SubtotalLocal       decimal.Decimal          `json:"subtotal_local"`
	FreightLocal        decimal.Decimal          `json:"freight_local"`
	TotalBeforeTaxLocal decimal.Decimal          `json:"total_before_tax_local"`
	ImportTaxLocal      decimal.Decimal          `json:"import_tax_local"`
	IcmsLocal           decimal.Decimal          `json:"icms_local"`
	OtherTaxesLocal     decimal.Decimal          `json:"other_taxes_local"`
	TotalLocalCost      decimal.Decimal          `json:"total_local_cost"`
	Lines               []AllocationLineResponse `json:"lines"`
}

// ToShipmentResponse converts a domain Shipment to ShipmentResponse
func ToShipmentResponse(s *importation.Shipment) ShipmentResponse {
	items := make([]ShipmentItemResponse, len(s.Items))
	for i := range s.Items {
		items[i] = toShipmentItemResponse(&s.Items[i])
	}
	return ShipmentResponse{
		ID:                   s.ID,
		Reference:            s.Reference,
		SupplierName:         s.SupplierName,
		Currency:             s.Currency,
		ExchangeRate:         s.ExchangeRate,
		SubtotalForeign:      s.SubtotalForeign,
		FreightForeign:       s.FreightForeign,
		TotalForeign:         s.TotalForeign,
		ImportTaxRate:        s.ImportTaxRate,
		IcmsRate:             s.IcmsRate,
		OtherTaxes:           s.OtherTaxes,
		SubtotalLocal:        s.SubtotalLocal,
		FreightLocal:         s.FreightLocal,
		TotalBeforeTaxLocal:  s.TotalBeforeTaxLocal,
		ImportTaxLocal:       s.ImportTaxLocal,
		IcmsLocal:            s.IcmsLocal,
		TotalLocalCost:       s.TotalLocalCost,
		Status:               s.Status.String(),
		OrderDate:            s.OrderDate,
		ExpectedDeliveryDate: s.ExpectedDeliveryDate,
		ActualDeliveryDate:   s.ActualDeliveryDate,
		Notes:                s.Notes,
		Items:                items,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
		Version:              s.Version,
	}
}

func toShipmentItemResponse(item *importation.ShipmentItem) ShipmentItemResponse {
	return ShipmentItemResponse{
		ID:                    item.ID,
		LineNumber:            item.LineNumber,
		Description:           item.Description,
		SKU:                   item.SKU,
		ProductID:             item.Link.Ptr(),
		Quantity:              item.Quantity,
		UnitPriceForeign:      item.UnitPriceForeign,
		ItemTotalForeign:      item.ItemTotalForeign,
		AllocationShare:       item.AllocationShare,
		AllocatedFreightLocal: item.AllocatedFreightLocal,
		AllocatedImportTax:    item.AllocatedImportTax,
		AllocatedIcms:         item.AllocatedIcms,
		AllocatedOtherTaxes:   item.AllocatedOtherTaxes,
		UnitCostLocal:         item.UnitCostLocal,
		UnitCostForeign:       item.UnitCostForeign,
		TotalCostLocal:        item.TotalCostLocal,
	}
}

// ToShipmentListItemResponses converts shipments to their list shape
func ToShipmentListItemResponses(shipments []importation.Shipment) []ShipmentListItemResponse {
	responses := make([]ShipmentListItemResponse, len(shipments))
	for i := range shipments {
		s := &shipments[i]
		responses[i] = ShipmentListItemResponse{
			ID:                 s.ID,
			Reference:          s.Reference,
			SupplierName:       s.SupplierName,
			Status:             s.Status.String(),
			TotalForeign:       s.TotalForeign,
			TotalLocalCost:     s.TotalLocalCost,
			ItemCount:          s.ItemCount(),
			OrderDate:          s.OrderDate,
			ActualDeliveryDate: s.ActualDeliveryDate,
			UpdatedAt:          s.UpdatedAt,
		}
	}
	return responses
}

func toItemDrafts(items []ShipmentItemRequest) []importation.ItemDraft {
	drafts := make([]importation.ItemDraft, len(items))
	for i, item := range items {
		drafts[i] = importation.ItemDraft{
			Description:      item.Description,
			SKU:              item.SKU,
			Link:             importation.LinkFromPtr(item.ProductID),
			Quantity:         item.Quantity,
			UnitPriceForeign: item.UnitPriceForeign,
		}
	}
	return drafts
}

func (r CreateShipmentRequest) header() importation.ShipmentHeader {
	return importation.ShipmentHeader{
		Reference:            r.Reference,
		SupplierName:         r.SupplierName,
		Currency:             r.Currency,
		ExchangeRate:         r.ExchangeRate,
		FreightForeign:       r.FreightForeign,
		ImportTaxRate:        r.ImportTaxRate,
		IcmsRate:             r.IcmsRate,
		OtherTaxes:           r.OtherTaxes,
		OrderDate:            r.OrderDate,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		Notes:                r.Notes,
	}
}
