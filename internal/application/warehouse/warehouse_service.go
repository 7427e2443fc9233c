package warehouse

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/warehouse"
)

// WarehouseService exposes read access to the warehouse ledger and its
// audit log
type WarehouseService struct {
	items   warehouse.WarehouseItemRepository
	history warehouse.StockHistoryRepository
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(items warehouse.WarehouseItemRepository, history warehouse.StockHistoryRepository) *WarehouseService {
	return &WarehouseService{
		items:   items,
		history: history,
	}
}

// GetBySKU retrieves one ledger entry
func (s *WarehouseService) GetBySKU(ctx context.Context, sku string) (*WarehouseItemResponse, error) {
	item, err := s.items.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	response := ToWarehouseItemResponse(item)
	return &response, nil
}

// List retrieves ledger entries with filtering and pagination
func (s *WarehouseService) List(ctx context.Context, filter WarehouseItemListFilter) ([]WarehouseItemResponse, int64, error) {
	repoFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		repoFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		repoFilter.OrderDir = filter.OrderDir
	}
	repoFilter.Search = filter.Search
	if filter.Category != "" {
		repoFilter.Filters["category"] = filter.Category
	}

	items, err := s.items.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.items.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToWarehouseItemResponses(items), total, nil
}

// History retrieves the audit log of one SKU, newest first
func (s *WarehouseService) History(ctx context.Context, sku string, page, pageSize int) ([]StockHistoryResponse, error) {
	if _, err := s.items.FindBySKU(ctx, sku); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	entries, err := s.history.FindBySKU(ctx, sku, filter)
	if err != nil {
		return nil, err
	}
	return ToStockHistoryResponses(entries), nil
}
