package importation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductLink says whether a shipment line feeds a catalog product.
// Unlinked lines are costed but never reach inventory.
type ProductLink struct {
	productID uuid.UUID
}

// Linked returns a link to the given product
func Linked(productID uuid.UUID) ProductLink {
	return ProductLink{productID: productID}
}

// Unlinked returns the empty link
func Unlinked() ProductLink {
	return ProductLink{}
}

// LinkFromPtr builds a link from an optional product id
func LinkFromPtr(id *uuid.UUID) ProductLink {
	if id == nil || *id == uuid.Nil {
		return Unlinked()
	}
	return Linked(*id)
}

// ProductID returns the linked product and whether the line is linked
func (l ProductLink) ProductID() (uuid.UUID, bool) {
	return l.productID, l.productID != uuid.Nil
}

// IsLinked reports whether the line is linked to a product
func (l ProductLink) IsLinked() bool {
	return l.productID != uuid.Nil
}

// Ptr returns the linked product id or nil
func (l ProductLink) Ptr() *uuid.UUID {
	if !l.IsLinked() {
		return nil
	}
	id := l.productID
	return &id
}

// ItemDraft is the caller-supplied part of a shipment line
type ItemDraft struct {
	Description      string
	SKU              string
	Link             ProductLink
	Quantity         int64
	UnitPriceForeign decimal.Decimal
}

func (d ItemDraft) validate(line int) error {
	if d.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", lineMsg(line, "quantity must be greater than zero"))
	}
	if d.UnitPriceForeign.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", lineMsg(line, "unit price cannot be negative"))
	}
	if strings.TrimSpace(d.Description) == "" && strings.TrimSpace(d.SKU) == "" {
		return shared.NewDomainError("INVALID_ITEM", lineMsg(line, "description or SKU is required"))
	}
	if len(d.Description) > 500 {
		return shared.NewDomainError("INVALID_ITEM", lineMsg(line, "description cannot exceed 500 characters"))
	}
	return nil
}

func lineMsg(line int, msg string) string {
	return fmt.Sprintf("Item %d: %s", line, msg)
}

// ShipmentItem is one costed line of a shipment
type ShipmentItem struct {
	shared.BaseEntity
	ShipmentID            uuid.UUID
	LineNumber            int
	Description           string
	SKU                   string
	Link                  ProductLink
	Quantity              int64
	UnitPriceForeign      decimal.Decimal
	ItemTotalForeign      decimal.Decimal
	AllocationShare       decimal.Decimal
	AllocatedFreightLocal decimal.Decimal
	AllocatedImportTax    decimal.Decimal
	AllocatedIcms         decimal.Decimal
	AllocatedOtherTaxes   decimal.Decimal
	UnitCostLocal         decimal.Decimal
	UnitCostForeign       decimal.Decimal
	TotalCostLocal        decimal.Decimal
}

func newShipmentItem(shipmentID uuid.UUID, line int, d ItemDraft) ShipmentItem {
	desc := strings.TrimSpace(d.Description)
	sku := strings.TrimSpace(d.SKU)
	if desc == "" {
		desc = sku
	}
	return ShipmentItem{
		BaseEntity:       shared.NewBaseEntity(),
		ShipmentID:       shipmentID,
		LineNumber:       line,
		Description:      desc,
		SKU:              sku,
		Link:             d.Link,
		Quantity:         d.Quantity,
		UnitPriceForeign: d.UnitPriceForeign,
	}
}

func (i *ShipmentItem) applyAllocation(a LineAllocation) {
	i.ItemTotalForeign = a.ItemTotalForeign
	i.AllocationShare = a.Share
	i.AllocatedFreightLocal = a.FreightLocal
	i.AllocatedImportTax = a.ImportTax
	i.AllocatedIcms = a.Icms
	i.AllocatedOtherTaxes = a.OtherTaxes
	i.UnitCostLocal = a.UnitCostLocal
	i.UnitCostForeign = a.UnitCostForeign
	i.TotalCostLocal = a.TotalCostLocal
}
