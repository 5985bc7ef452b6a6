package inventory

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/inventory"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxExportRows caps the ledger rows written to a single export
const maxExportRows = 10000

// MovementExporter renders a product ledger to a spreadsheet
type MovementExporter interface {
	ExportMovements(w io.Writer, product ProductResponse, movements []StockMovementResponse) error
}

// ProductService handles product registration and the read side of the stock ledger
type ProductService struct {
	productRepo  inventory.ProductRepository
	movementRepo inventory.StockMovementRepository
	txScope      TransactionScope
	exporter     MovementExporter
	logger       *zap.Logger
	now          func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetExporter sets the spreadsheet exporter used by ExportMovements
func (s *ProductService) SetExporter(exporter MovementExporter) {
	s.exporter = exporter
}

// Create registers a product, optionally with an opening balance
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := inventory.NewProduct(req.SKU, req.Name)
	if err != nil {
		return nil, err
	}

	var opening *inventory.StockMovement
	if req.OpeningStock > 0 {
		ob := inventory.OpeningBalance{
			Quantity:           req.OpeningStock,
			AverageCostLocal:   valueOrZero(req.OpeningAverageCostLocal),
			AverageCostForeign: valueOrZero(req.OpeningAverageCostForeign),
		}
		opening, err = product.ApplyOpeningBalance(ob, s.now())
		if err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.ProductRepo().ExistsBySKU(ctx, product.SKU)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Product with SKU "+product.SKU+" already exists")
		}
		if err := repos.ProductRepo().Create(ctx, product); err != nil {
			return err
		}
		if opening != nil {
			return repos.MovementRepo().Create(ctx, opening)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.Int64("opening_stock", product.StockQuantity),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search

	products, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// ListMovements retrieves a page of a product's ledger, newest first
func (s *ProductService) ListMovements(ctx context.Context, productID uuid.UUID, filter MovementListFilter) ([]StockMovementResponse, int64, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, 0, err
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	movements, err := s.movementRepo.FindByProduct(ctx, productID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	return ToStockMovementResponses(movements), total, nil
}

// ExportMovements writes the product ledger as a spreadsheet to w
func (s *ProductService) ExportMovements(ctx context.Context, productID uuid.UUID, w io.Writer) error {
	if s.exporter == nil {
		return errors.New("movement exporter not configured")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	f := shared.DefaultFilter()
	f.PageSize = maxExportRows
	movements, err := s.movementRepo.FindByProduct(ctx, productID, f)
	if err != nil {
		return err
	}

	return s.exporter.ExportMovements(w, ToProductResponse(product), ToStockMovementResponses(movements))
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
