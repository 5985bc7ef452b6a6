package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/landedcost/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// FindByID finds a shipment by ID with its items
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*importation.Shipment, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a shipment and locks its row until the surrounding transaction ends
func (r *GormShipmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*importation.Shipment, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormShipmentRepository) find(query *gorm.DB, id uuid.UUID) (*importation.Shipment, error) {
	var model models.ShipmentModel
	if err := query.Preload("Items", preloadItems).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all shipments matching the filter, items included
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter importation.ShipmentFilter) ([]importation.Shipment, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(shipmentSort.clause(filter.OrderBy, filter.OrderDir))

	var rows []models.ShipmentModel
	if err := query.Preload("Items", preloadItems).Find(&rows).Error; err != nil {
		return nil, err
	}

	shipments := make([]importation.Shipment, len(rows))
	for i := range rows {
		shipments[i] = *rows[i].ToDomain()
	}
	return shipments, nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter importation.ShipmentFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByReference checks if a shipment with the given reference exists
func (r *GormShipmentRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ShipmentModel{}).
		Where("reference = ?", strings.TrimSpace(reference)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the shipment header followed by its items
func (r *GormShipmentRepository) Create(ctx context.Context, shipment *importation.Shipment) error {
	model := models.ShipmentModelFromDomain(shipment)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	if len(model.Items) == 0 {
		return nil
	}
	return db.Create(&model.Items).Error
}

// SaveWithLock saves header fields with optimistic locking (checks version).
// Items are written only through Create and ReplaceItems.
func (r *GormShipmentRepository) SaveWithLock(ctx context.Context, shipment *importation.Shipment) error {
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ? AND version = ?", shipment.ID, shipment.Version-1).
		Updates(map[string]interface{}{
			"supplier_name":          shipment.SupplierName,
			"currency":               shipment.Currency,
			"exchange_rate":          shipment.ExchangeRate,
			"subtotal_foreign":       shipment.SubtotalForeign,
			"freight_foreign":        shipment.FreightForeign,
			"total_foreign":          shipment.TotalForeign,
			"import_tax_rate":        shipment.ImportTaxRate,
			"icms_rate":              shipment.IcmsRate,
			"other_taxes":            shipment.OtherTaxes,
			"subtotal_local":         shipment.SubtotalLocal,
			"freight_local":          shipment.FreightLocal,
			"total_before_tax_local": shipment.TotalBeforeTaxLocal,
			"import_tax_local":       shipment.ImportTaxLocal,
			"icms_local":             shipment.IcmsLocal,
			"total_local_cost":       shipment.TotalLocalCost,
			"status":                 string(shipment.Status),
			"order_date":             shipment.OrderDate,
			"expected_delivery_date": shipment.ExpectedDeliveryDate,
			"actual_delivery_date":   shipment.ActualDeliveryDate,
			"notes":                  shipment.Notes,
			"version":                shipment.Version,
			"updated_at":             shipment.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeOptimisticLockFailed, "Shipment was modified by another transaction")
	}
	return nil
}

// ReplaceItems deletes every stored item of the shipment and inserts the given ones
func (r *GormShipmentRepository) ReplaceItems(ctx context.Context, shipmentID uuid.UUID, items []importation.ShipmentItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("shipment_id = ?", shipmentID).Delete(&models.ShipmentItemModel{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := models.ShipmentItemModelsFromDomain(items)
	return db.Create(&rows).Error
}

func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter importation.ShipmentFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(reference) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ importation.ShipmentRepository = (*GormShipmentRepository)(nil)

// GormShipmentDocumentRepository implements ShipmentDocumentRepository using GORM
type GormShipmentDocumentRepository struct {
	db *gorm.DB
}

// NewGormShipmentDocumentRepository creates a new GormShipmentDocumentRepository
func NewGormShipmentDocumentRepository(db *gorm.DB) *GormShipmentDocumentRepository {
	return &GormShipmentDocumentRepository{db: db}
}

// Create inserts document metadata
func (r *GormShipmentDocumentRepository) Create(ctx context.Context, doc *importation.ShipmentDocument) error {
	model := &models.ShipmentDocumentModel{}
	model.FromDomain(doc)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a document by ID
func (r *GormShipmentDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*importation.ShipmentDocument, error) {
	var model models.ShipmentDocumentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByShipment lists a shipment's documents, oldest first
func (r *GormShipmentDocumentRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]importation.ShipmentDocument, error) {
	var rows []models.ShipmentDocumentModel
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]importation.ShipmentDocument, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// Delete removes document metadata
func (r *GormShipmentDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShipmentDocumentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormShipmentDocumentRepository implements ShipmentDocumentRepository
var _ importation.ShipmentDocumentRepository = (*GormShipmentDocumentRepository)(nil)
