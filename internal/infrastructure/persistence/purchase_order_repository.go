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

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its vendor links
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := conn(ctx, r.db).
		Preload("VendorLinks").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByRequisitionID finds the order materialized for a requisition
func (r *GormPurchaseOrderRepository) FindByRequisitionID(ctx context.Context, requisitionID uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := conn(ctx, r.db).
		Preload("VendorLinks").
		First(&order, "requisition_id = ?", requisitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds purchase orders with filtering and pagination
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	query := r.applyFilter(conn(ctx, r.db).Model(&procurement.PurchaseOrder{}), filter)
	if err := query.Preload("VendorLinks").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindStale finds orders whose requisition has since left ACCEPTED,
// regardless of order status. A rejected requisition invalidates its
// order even after dispatch or partial delivery.
func (r *GormPurchaseOrderRepository) FindStale(ctx context.Context) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	if err := conn(ctx, r.db).
		Joins("JOIN purchase_requisitions ON purchase_requisitions.id = purchase_orders.requisition_id").
		Where("purchase_requisitions.status <> ?", procurement.RequisitionStatusAccepted).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order. Vendor links are denormalized
// separately through UpsertVendorLinks.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return conn(ctx, r.db).Omit("VendorLinks").Save(order).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	db := conn(ctx, r.db)

	var currentVersion int
	read := db.Model(&procurement.PurchaseOrder{}).
		Where("id = ?", order.ID).
		Select("version").
		Scan(&currentVersion)
	if read.Error != nil {
		return read.Error
	}
	// Scan into a scalar reports a missing row through RowsAffected only.
	if read.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if currentVersion != order.Version {
		return shared.ErrConcurrencyConflict
	}

	order.Version++
	order.UpdatedAt = time.Now()

	result := db.Model(&procurement.PurchaseOrder{}).
		Where("id = ? AND version = ?", order.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":        order.Status,
			"issued_at":     order.IssuedAt,
			"cancelled_at":  order.CancelledAt,
			"cancel_reason": order.CancelReason,
			"version":       order.Version,
			"updated_at":    order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// UpsertVendorLinks inserts the (order, item, vendor) triples, skipping ones
// that already exist
func (r *GormPurchaseOrderRepository) UpsertVendorLinks(ctx context.Context, links []procurement.PreferredVendorLink) error {
	if len(links) == 0 {
		return nil
	}
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "purchase_item_id"}, {Name: "vendor_id"}},
			DoNothing: true,
		}).
		Create(&links).Error
}

// Delete deletes a purchase order together with its vendor links
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)

	if err := db.Where("order_id = ?", id).Delete(&procurement.PreferredVendorLink{}).Error; err != nil {
		return err
	}
	result := db.Delete(&procurement.PurchaseOrder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&procurement.PurchaseOrder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks whether an order number is already taken
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&procurement.PurchaseOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber generates a unique order number
// Format: PO-YYYY-NNNNN (e.g. PO-2026-00001)
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return generateDocumentNumber(conn(ctx, r.db), fmt.Sprintf("PO-%d-", time.Now().Year()))
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "requisition_id":
			query = query.Where("requisition_id = ?", value)
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

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
