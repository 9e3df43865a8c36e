package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/procurex/backend/internal/domain/procurement"
	"github.com/procurex/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Vendor, error) {
	var vendor procurement.Vendor
	if err := conn(ctx, r.db).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindByIDs finds the vendors with the given IDs. Unknown IDs are simply
// absent from the result.
func (r *GormVendorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.Vendor, error) {
	if len(ids) == 0 {
		return []procurement.Vendor{}, nil
	}
	var vendors []procurement.Vendor
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// FindAll finds vendors with filtering and pagination
func (r *GormVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Vendor, error) {
	var vendors []procurement.Vendor
	query := r.applyFilter(conn(ctx, r.db).Model(&procurement.Vendor{}), filter)
	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *procurement.Vendor) error {
	return conn(ctx, r.db).Save(vendor).Error
}

// Count counts vendors matching the filter
func (r *GormVendorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&procurement.Vendor{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormVendorRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, VendorSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormVendorRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "po_sending_status":
			query = query.Where("po_sending_status = ?", value)
		}
	}
	return query
}

// Ensure GormVendorRepository implements VendorRepository
var _ procurement.VendorRepository = (*GormVendorRepository)(nil)
