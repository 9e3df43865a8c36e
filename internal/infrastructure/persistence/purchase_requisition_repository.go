package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseRequisitionRepository implements PurchaseRequisitionRepository using GORM
type GormPurchaseRequisitionRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRequisitionRepository creates a new GormPurchaseRequisitionRepository
func NewGormPurchaseRequisitionRepository(db *gorm.DB) *GormPurchaseRequisitionRepository {
	return &GormPurchaseRequisitionRepository{db: db}
}

// FindByID finds a requisition with its lines and vendor preferences
func (r *GormPurchaseRequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseRequisition, error) {
	var requisition procurement.PurchaseRequisition
	if err := conn(ctx, r.db).
		Preload("Items.Vendors").
		Preload("Items").
		First(&requisition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &requisition, nil
}

// FindByIDForUpdate finds a requisition and row-locks it together with its
// lines for the duration of the ambient transaction
func (r *GormPurchaseRequisitionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*procurement.PurchaseRequisition, error) {
	db := conn(ctx, r.db)

	var requisition procurement.PurchaseRequisition
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&requisition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("requisition_id = ?", id).
		Order("created_at ASC").
		Find(&requisition.Items).Error; err != nil {
		return nil, err
	}
	for i := range requisition.Items {
		if err := db.
			Where("purchase_item_id = ?", requisition.Items[i].ID).
			Order("position ASC").
			Find(&requisition.Items[i].Vendors).Error; err != nil {
			return nil, err
		}
	}
	return &requisition, nil
}

// FindAll finds requisitions with filtering and pagination
func (r *GormPurchaseRequisitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseRequisition, error) {
	var requisitions []procurement.PurchaseRequisition
	query := r.applyFilter(conn(ctx, r.db).Model(&procurement.PurchaseRequisition{}), filter)
	if err := query.Preload("Items.Vendors").Preload("Items").Find(&requisitions).Error; err != nil {
		return nil, err
	}
	return requisitions, nil
}

// FindByStatus finds every requisition in the given status
func (r *GormPurchaseRequisitionRepository) FindByStatus(ctx context.Context, status procurement.RequisitionStatus) ([]procurement.PurchaseRequisition, error) {
	var requisitions []procurement.PurchaseRequisition
	if err := conn(ctx, r.db).
		Preload("Items.Vendors").
		Preload("Items").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&requisitions).Error; err != nil {
		return nil, err
	}
	return requisitions, nil
}

// Save creates or updates a requisition together with its lines and vendor
// preferences
func (r *GormPurchaseRequisitionRepository) Save(ctx context.Context, requisition *procurement.PurchaseRequisition) error {
	db := conn(ctx, r.db)

	if err := db.Omit("Items").Save(requisition).Error; err != nil {
		return err
	}
	return r.saveItems(db, requisition)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPurchaseRequisitionRepository) SaveWithLock(ctx context.Context, requisition *procurement.PurchaseRequisition) error {
	db := conn(ctx, r.db)

	var currentVersion int
	read := db.Model(&procurement.PurchaseRequisition{}).
		Where("id = ?", requisition.ID).
		Select("version").
		Scan(&currentVersion)
	if read.Error != nil {
		return read.Error
	}
	// Scan into a scalar reports a missing row through RowsAffected only.
	if read.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if currentVersion != requisition.Version {
		return shared.ErrConcurrencyConflict
	}

	requisition.Version++
	requisition.UpdatedAt = time.Now()

	result := db.Model(&procurement.PurchaseRequisition{}).
		Where("id = ? AND version = ?", requisition.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":       requisition.Status,
			"total_amount": requisition.TotalAmount,
			"document_url": requisition.DocumentURL,
			"version":      requisition.Version,
			"updated_at":   requisition.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	return r.saveItems(db, requisition)
}

// SaveItems persists the given requisition lines without touching the header
func (r *GormPurchaseRequisitionRepository) SaveItems(ctx context.Context, items []*procurement.PurchaseItem) error {
	db := conn(ctx, r.db)
	for _, item := range items {
		item.UpdatedAt = time.Now()
		if err := db.Omit("Vendors").Save(item).Error; err != nil {
			return err
		}
	}
	return nil
}

// Count counts requisitions matching the filter
func (r *GormPurchaseRequisitionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&procurement.PurchaseRequisition{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateRequisitionNumber generates a unique requisition number
// Format: REQ-YYYY-NNNNN (e.g. REQ-2026-00001)
func (r *GormPurchaseRequisitionRepository) GenerateRequisitionNumber(ctx context.Context) (string, error) {
	return generateDocumentNumber(conn(ctx, r.db), fmt.Sprintf("REQ-%d-", time.Now().Year()))
}

func (r *GormPurchaseRequisitionRepository) saveItems(db *gorm.DB, requisition *procurement.PurchaseRequisition) error {
	currentItemIDs := make([]uuid.UUID, len(requisition.Items))
	for i, item := range requisition.Items {
		currentItemIDs[i] = item.ID
	}

	removed := db.Where("requisition_id = ?", requisition.ID)
	if len(currentItemIDs) > 0 {
		removed = removed.Where("id NOT IN ?", currentItemIDs)
	}
	if err := removed.Delete(&procurement.PurchaseItem{}).Error; err != nil {
		return err
	}

	for i := range requisition.Items {
		item := &requisition.Items[i]
		item.RequisitionID = requisition.ID
		if err := db.Omit("Vendors").Save(item).Error; err != nil {
			return err
		}
		for j := range item.Vendors {
			item.Vendors[j].PurchaseItemID = item.ID
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "purchase_item_id"}, {Name: "vendor_id"}},
				DoNothing: true,
			}).Create(&item.Vendors[j]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *GormPurchaseRequisitionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, RequisitionSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormPurchaseRequisitionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("requisition_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}
	return query
}

// Ensure GormPurchaseRequisitionRepository implements PurchaseRequisitionRepository
var _ procurement.PurchaseRequisitionRepository = (*GormPurchaseRequisitionRepository)(nil)
