package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/warehouse"
)

// ==================== Warehouse Ledger DTOs ====================

// WarehouseItemListFilter represents filter options for the ledger list
type WarehouseItemListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// WarehouseItemResponse represents a ledger entry in API responses
type WarehouseItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
	Category   string          `json:"category,omitempty"`
	Location   string          `json:"location,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// StockHistoryResponse represents one audit log record in API responses
type StockHistoryResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	OrderNumber string          `json:"order_number,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ==================== Reconciliation DTOs ====================

// ResolveDecisionRequest represents the answer to a pending price conflict
type ResolveDecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=UPDATE_PRICE KEEP_PRICE IGNORE"`
}

// PendingDecisionResponse represents a price conflict waiting for an answer
type PendingDecisionResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	SKU           string          `json:"sku"`
	ItemName      string          `json:"item_name"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	IncomingPrice decimal.Decimal `json:"incoming_price"`
	Quantity      decimal.Decimal `json:"quantity"`
	RequestedAt   time.Time       `json:"requested_at"`
}

// ReconcileRunResponse represents the state of one reconciliation run
type ReconcileRunResponse struct {
	OrderID     uuid.UUID                  `json:"order_id"`
	OrderNumber string                     `json:"order_number"`
	State       string                     `json:"state"`
	StartedAt   time.Time                  `json:"started_at"`
	FinishedAt  *time.Time                 `json:"finished_at,omitempty"`
	Result      *warehouse.ReconcileResult `json:"result,omitempty"`
	Error       string                     `json:"error,omitempty"`
}

// ==================== Converters ====================

// ToWarehouseItemResponse converts a domain ledger entry to a response DTO
func ToWarehouseItemResponse(item *warehouse.WarehouseItem) WarehouseItemResponse {
	return WarehouseItemResponse{
		ID:         item.GetID(),
		SKU:        item.SKU,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Price:      item.Price,
		TotalValue: item.TotalValue(),
		Category:   item.Category,
		Location:   item.Location,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
		Version:    item.GetVersion(),
	}
}

// ToWarehouseItemResponses converts a slice of ledger entries to response DTOs
func ToWarehouseItemResponses(items []warehouse.WarehouseItem) []WarehouseItemResponse {
	responses := make([]WarehouseItemResponse, len(items))
	for i := range items {
		responses[i] = ToWarehouseItemResponse(&items[i])
	}
	return responses
}

// ToStockHistoryResponse converts a domain audit record to a response DTO
func ToStockHistoryResponse(entry *warehouse.StockHistoryEntry) StockHistoryResponse {
	return StockHistoryResponse{
		ID:          entry.ID,
		SKU:         entry.SKU,
		Kind:        string(entry.Kind),
		Quantity:    entry.Quantity,
		Price:       entry.Price,
		Description: entry.Description,
		OrderID:     entry.OrderID,
		OrderNumber: entry.OrderNumber,
		CreatedAt:   entry.CreatedAt,
	}
}

// ToStockHistoryResponses converts a slice of audit records to response DTOs
func ToStockHistoryResponses(entries []warehouse.StockHistoryEntry) []StockHistoryResponse {
	responses := make([]StockHistoryResponse, len(entries))
	for i := range entries {
		responses[i] = ToStockHistoryResponse(&entries[i])
	}
	return responses
}
