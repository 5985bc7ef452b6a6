package importation

import (
	"context"
	"errors"
	"strings"

	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	csvimport "github.com/landedcost/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// Canonical item sheet columns
const (
	ColumnDescription = "description"
	ColumnSKU         = "sku"
	ColumnQuantity    = "quantity"
	ColumnUnitPrice   = "unit_price"
)

const maxImportErrors = 100

var itemHeaderAliases = map[string]string{
	"descricao":          ColumnDescription,
	"descrição":          ColumnDescription,
	"item":               ColumnDescription,
	"product":            ColumnDescription,
	"produto":            ColumnDescription,
	"codigo":             ColumnSKU,
	"código":             ColumnSKU,
	"code":               ColumnSKU,
	"part_number":        ColumnSKU,
	"qty":                ColumnQuantity,
	"quantidade":         ColumnQuantity,
	"qtd":                ColumnQuantity,
	"price":              ColumnUnitPrice,
	"unit_price_foreign": ColumnUnitPrice,
	"preco":              ColumnUnitPrice,
	"preço":              ColumnUnitPrice,
	"preco_unitario":     ColumnUnitPrice,
	"preço_unitário":     ColumnUnitPrice,
}

// NormalizeItemHeader maps a sheet header to its canonical column name
func NormalizeItemHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(h))
	key = strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(key)
	if canonical, ok := itemHeaderAliases[key]; ok {
		return canonical
	}
	return key
}

// ItemImportResult is a parsed supplier invoice sheet
type ItemImportResult struct {
	Items         []ShipmentItemRequest `json:"items"`
	TotalRows     int                   `json:"total_rows"`
	ValidRows     int                   `json:"valid_rows"`
	Errors        []csvimport.RowError  `json:"errors,omitempty"`
	Truncated     bool                  `json:"truncated,omitempty"`
	UnmatchedSKUs []string              `json:"unmatched_skus,omitempty"`
}

// ItemImportService turns supplier invoice sheets into shipment item requests.
// It never writes anything.
type ItemImportService struct {
	productRepo inventory.ProductRepository
	maxBytes    int64
	logger      *zap.Logger
}

// NewItemImportService creates a new ItemImportService. maxBytes <= 0 disables the size limit.
func NewItemImportService(productRepo inventory.ProductRepository, maxBytes int64, logger *zap.Logger) *ItemImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemImportService{
		productRepo: productRepo,
		maxBytes:    maxBytes,
		logger:      logger,
	}
}

// ParseItems reads a .csv or .xlsx sheet. Invalid rows are reported and left
// out of Items. SKUs matching a product become product links; unknown SKUs
// stay unlinked and are listed in UnmatchedSKUs.
func (s *ItemImportService) ParseItems(ctx context.Context, fileName string, data []byte) (*ItemImportResult, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", csvimport.ErrFileTooLarge.Error())
	}

	reader, err := csvimport.Open(fileName, data, NormalizeItemHeader)
	if err != nil {
		return nil, importFileError(err)
	}
	if missing := csvimport.MissingHeaders(reader, []string{ColumnQuantity, ColumnUnitPrice}); len(missing) > 0 {
		return nil, shared.NewDomainError(csvimport.ErrCodeImportMissingHeader,
			"Missing required columns: "+strings.Join(missing, ", "))
	}
	if !reader.HasHeader(ColumnDescription) && !reader.HasHeader(ColumnSKU) {
		return nil, shared.NewDomainError(csvimport.ErrCodeImportMissingHeader,
			"Sheet needs a description or sku column")
	}

	rows, err := reader.ReadAllRows()
	if err != nil {
		return nil, importFileError(err)
	}

	validator := csvimport.NewFieldValidator([]csvimport.FieldRule{
		csvimport.Field(ColumnDescription).MaxLength(500).Build(),
		csvimport.Field(ColumnSKU).MaxLength(64).Build(),
		csvimport.Field(ColumnQuantity).Quantity().Required().Positive().Build(),
		csvimport.Field(ColumnUnitPrice).Decimal().Required().NonNegative().Build(),
	}, maxImportErrors)
	errs := validator.Errors()

	result := &ItemImportResult{Items: []ShipmentItemRequest{}}
	links := make(map[string]*inventory.Product)
	unmatched := make(map[string]struct{})

	for _, row := range rows {
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++

		description := row.Get(ColumnDescription)
		sku := row.Get(ColumnSKU)
		if description == "" && sku == "" {
			errs.AddValidationError(row.LineNumber, ColumnDescription, csvimport.ErrCodeImportRequiredField,
				"description or sku is required")
			continue
		}
		if !validator.ValidateRow(row) {
			continue
		}

		// validated above
		qty, _ := csvimport.ParseQuantity(row.Get(ColumnQuantity))
		price, _ := csvimport.ParseDecimal(row.Get(ColumnUnitPrice))

		item := ShipmentItemRequest{
			Description:      description,
			SKU:              sku,
			Quantity:         qty,
			UnitPriceForeign: price,
		}
		if sku != "" {
			product, err := s.lookup(ctx, links, sku)
			if err != nil {
				return nil, err
			}
			if product != nil {
				id := product.ID
				item.ProductID = &id
				if item.Description == "" {
					item.Description = product.Name
				}
			} else if _, seen := unmatched[sku]; !seen {
				unmatched[sku] = struct{}{}
				result.UnmatchedSKUs = append(result.UnmatchedSKUs, sku)
			}
		}

		result.Items = append(result.Items, item)
		result.ValidRows++
	}

	result.Errors = errs.Errors()
	result.Truncated = errs.IsTruncated()

	s.logger.Info("item sheet parsed",
		zap.String("file_name", fileName),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("valid_rows", result.ValidRows),
		zap.Int("errors", errs.TotalCount()),
		zap.Int("unmatched_skus", len(result.UnmatchedSKUs)),
	)
	return result, nil
}

func (s *ItemImportService) lookup(ctx context.Context, cache map[string]*inventory.Product, sku string) (*inventory.Product, error) {
	if p, ok := cache[sku]; ok {
		return p, nil
	}
	p, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			cache[sku] = nil
			return nil, nil
		}
		return nil, err
	}
	cache[sku] = p
	return p, nil
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile), errors.Is(err, csvimport.ErrNoDataRows):
		return shared.NewDomainError(csvimport.ErrCodeImportEmptyFile, err.Error())
	case errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewDomainError(csvimport.ErrCodeImportMissingHeader, err.Error())
	default:
		return shared.NewDomainError(csvimport.ErrCodeImportInvalidFile, err.Error())
	}
}
