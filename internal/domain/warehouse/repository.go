package warehouse

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
)

// WarehouseItemRepository defines the interface for warehouse ledger persistence
type WarehouseItemRepository interface {
	// FindBySKU finds a ledger entry by SKU
	FindBySKU(ctx context.Context, sku string) (*WarehouseItem, error)

	// FindAll finds ledger entries with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]WarehouseItem, error)

	// Save creates or updates a ledger entry
	Save(ctx context.Context, item *WarehouseItem) error

	// Count counts ledger entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// StockHistoryRepository defines the interface for the append-only audit log
type StockHistoryRepository interface {
	// Append stores a new history entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *StockHistoryEntry) error

	// FindBySKU lists the history of one SKU, newest first
	FindBySKU(ctx context.Context, sku string, filter shared.Filter) ([]StockHistoryEntry, error)
}
