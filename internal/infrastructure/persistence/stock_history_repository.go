package persistence

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormStockHistoryRepository implements StockHistoryRepository using GORM.
// The table is append-only; entries are never updated or deleted.
type GormStockHistoryRepository struct {
	db *gorm.DB
}

// NewGormStockHistoryRepository creates a new GormStockHistoryRepository
func NewGormStockHistoryRepository(db *gorm.DB) *GormStockHistoryRepository {
	return &GormStockHistoryRepository{db: db}
}

// Append stores a new history entry
func (r *GormStockHistoryRepository) Append(ctx context.Context, entry *warehouse.StockHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindBySKU lists the history of one SKU, newest first
func (r *GormStockHistoryRepository) FindBySKU(ctx context.Context, sku string, filter shared.Filter) ([]warehouse.StockHistoryEntry, error) {
	var entries []warehouse.StockHistoryEntry
	query := r.db.WithContext(ctx).
		Model(&warehouse.StockHistoryEntry{}).
		Where("sku = ?", sku).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormStockHistoryRepository implements StockHistoryRepository
var _ warehouse.StockHistoryRepository = (*GormStockHistoryRepository)(nil)
