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
)

// GormPurchaseReceiveRepository implements PurchaseReceiveRepository using GORM
type GormPurchaseReceiveRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReceiveRepository creates a new GormPurchaseReceiveRepository
func NewGormPurchaseReceiveRepository(db *gorm.DB) *GormPurchaseReceiveRepository {
	return &GormPurchaseReceiveRepository{db: db}
}

// FindByID finds a receive event with its lines
func (r *GormPurchaseReceiveRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseReceive, error) {
	var receive procurement.PurchaseReceive
	if err := conn(ctx, r.db).
		Preload("Lines").
		First(&receive, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receive, nil
}

// FindAll finds receive events with filtering and pagination
func (r *GormPurchaseReceiveRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseReceive, error) {
	var receives []procurement.PurchaseReceive
	query := r.applyFilter(conn(ctx, r.db).Model(&procurement.PurchaseReceive{}), filter)
	if err := query.Preload("Lines").Find(&receives).Error; err != nil {
		return nil, err
	}
	return receives, nil
}

// FindByOrderID finds every receive event recorded against an order
func (r *GormPurchaseReceiveRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]procurement.PurchaseReceive, error) {
	var receives []procurement.PurchaseReceive
	if err := conn(ctx, r.db).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("received_date ASC").
		Find(&receives).Error; err != nil {
		return nil, err
	}
	return receives, nil
}

// Save creates or updates a receive event together with its lines
func (r *GormPurchaseReceiveRepository) Save(ctx context.Context, receive *procurement.PurchaseReceive) error {
	db := conn(ctx, r.db)

	if err := db.Omit("Lines").Save(receive).Error; err != nil {
		return err
	}

	currentLineIDs := make([]uuid.UUID, len(receive.Lines))
	for i, line := range receive.Lines {
		currentLineIDs[i] = line.ID
	}
	removed := db.Where("receive_id = ?", receive.ID)
	if len(currentLineIDs) > 0 {
		removed = removed.Where("id NOT IN ?", currentLineIDs)
	}
	if err := removed.Delete(&procurement.PurchaseReceiveItem{}).Error; err != nil {
		return err
	}

	for i := range receive.Lines {
		receive.Lines[i].ReceiveID = receive.ID
		if err := db.Save(&receive.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a receive event together with its lines
func (r *GormPurchaseReceiveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)

	if err := db.Where("receive_id = ?", id).Delete(&procurement.PurchaseReceiveItem{}).Error; err != nil {
		return err
	}
	result := db.Delete(&procurement.PurchaseReceive{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByOrderID deletes every receive event recorded against an order
func (r *GormPurchaseReceiveRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	db := conn(ctx, r.db)

	if err := db.Where("receive_id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).
			Model(&procurement.PurchaseReceive{}).
			Select("id").
			Where("order_id = ?", orderID)).
		Delete(&procurement.PurchaseReceiveItem{}).Error; err != nil {
		return err
	}
	return db.Where("order_id = ?", orderID).Delete(&procurement.PurchaseReceive{}).Error
}

// Count counts receive events matching the filter
func (r *GormPurchaseReceiveRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&procurement.PurchaseReceive{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateReceiveNumber generates a unique receive number
// Format: RCV-YYYY-NNNNN (e.g. RCV-2026-00001)
func (r *GormPurchaseReceiveRepository) GenerateReceiveNumber(ctx context.Context) (string, error) {
	return generateDocumentNumber(conn(ctx, r.db), fmt.Sprintf("RCV-%d-", time.Now().Year()))
}

func (r *GormPurchaseReceiveRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, ReceiveSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormPurchaseReceiveRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("receive_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("received_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("received_date <= ?", t)
			}
		}
	}
	return query
}

// Ensure GormPurchaseReceiveRepository implements PurchaseReceiveRepository
var _ procurement.PurchaseReceiveRepository = (*GormPurchaseReceiveRepository)(nil)
