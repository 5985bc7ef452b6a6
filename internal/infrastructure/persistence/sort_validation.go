package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted and defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if trimmed := strings.TrimSpace(sortField); allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// sortSpec is the ORDER BY whitelist of one list query
type sortSpec struct {
	fields        map[string]bool
	fallbackField string
	// unsorted is used when the caller asked for no particular order
	unsorted string
}

// clause builds a safe ORDER BY clause. Only whitelisted column names and a
// normalized direction ever reach SQL.
func (s sortSpec) clause(orderBy, orderDir string) string {
	if strings.TrimSpace(orderBy) == "" {
		return s.unsorted
	}
	return ValidateSortField(orderBy, s.fields, s.fallbackField) + " " + ValidateSortOrder(orderDir)
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"sku":                true,
	"name":               true,
	"stock_quantity":     true,
	"average_cost_local": true,
}

// ShipmentSortFields contains allowed sort fields for shipments
var ShipmentSortFields = map[string]bool{
	"id":                     true,
	"created_at":             true,
	"updated_at":             true,
	"reference":              true,
	"supplier_name":          true,
	"status":                 true,
	"order_date":             true,
	"expected_delivery_date": true,
	"total_local_cost":       true,
}

var (
	productSort  = sortSpec{fields: ProductSortFields, fallbackField: "sku", unsorted: "sku ASC"}
	shipmentSort = sortSpec{fields: ShipmentSortFields, fallbackField: "created_at", unsorted: "created_at DESC"}
)
