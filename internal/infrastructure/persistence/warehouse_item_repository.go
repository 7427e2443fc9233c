package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormWarehouseItemRepository implements WarehouseItemRepository using GORM
type GormWarehouseItemRepository struct {
	db *gorm.DB
}

// NewGormWarehouseItemRepository creates a new GormWarehouseItemRepository
func NewGormWarehouseItemRepository(db *gorm.DB) *GormWarehouseItemRepository {
	return &GormWarehouseItemRepository{db: db}
}

// FindBySKU finds a ledger entry by SKU
func (r *GormWarehouseItemRepository) FindBySKU(ctx context.Context, sku string) (*warehouse.WarehouseItem, error) {
	var item warehouse.WarehouseItem
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll finds ledger entries with filtering and pagination
func (r *GormWarehouseItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]warehouse.WarehouseItem, error) {
	var items []warehouse.WarehouseItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&warehouse.WarehouseItem{}),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a ledger entry
func (r *GormWarehouseItemRepository) Save(ctx context.Context, item *warehouse.WarehouseItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Count counts ledger entries matching the filter
func (r *GormWarehouseItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&warehouse.WarehouseItem{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormWarehouseItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, WarehouseItemSortFields, "sku")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" && filter.OrderDir == "" {
		// Ledger listings default to SKU order
		return query.Order("sku ASC")
	}
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormWarehouseItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sku LIKE ? OR name LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "location":
			query = query.Where("location = ?", value)
		}
	}

	return query
}

// Ensure GormWarehouseItemRepository implements WarehouseItemRepository
var _ warehouse.WarehouseItemRepository = (*GormWarehouseItemRepository)(nil)
