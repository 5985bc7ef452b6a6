package dto

import (
	appimport "github.com/landedcost/backend/internal/application/importation"
	csvimport "github.com/landedcost/backend/internal/infrastructure/import"
)

// ItemImportResponse represents a parsed supplier invoice sheet
// @Description Shipment items parsed from a .csv or .xlsx sheet. Nothing is persisted.
type ItemImportResponse struct {
	Items         []appimport.ShipmentItemRequest `json:"items"`
	TotalRows     int                             `json:"total_rows" example:"40"`
	ValidRows     int                             `json:"valid_rows" example:"38"`
	ErrorRows     int                             `json:"error_rows" example:"2"`
	Errors        []csvimport.RowError            `json:"errors,omitempty"`
	IsTruncated   bool                            `json:"is_truncated,omitempty" example:"false"`
	UnmatchedSKUs []string                        `json:"unmatched_skus,omitempty"`
}

// NewItemImportResponse converts a parse result to its API shape
func NewItemImportResponse(r *appimport.ItemImportResult) ItemImportResponse {
	return ItemImportResponse{
		Items:         r.Items,
		TotalRows:     r.TotalRows,
		ValidRows:     r.ValidRows,
		ErrorRows:     r.TotalRows - r.ValidRows,
		Errors:        r.Errors,
		IsTruncated:   r.Truncated,
		UnmatchedSKUs: r.UnmatchedSKUs,
	}
}
