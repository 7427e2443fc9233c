package warehouse

import (
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeWarehouseItem = "WarehouseItem"

// Event type constants
const (
	EventTypeStockMerged           = "WarehouseStockMerged"
	EventTypePriceConflictResolved = "WarehousePriceConflictResolved"
)

// StockMergedEvent is raised when a received quantity is folded into the ledger
type StockMergedEvent struct {
	shared.BaseDomainEvent
	SKU         string          `json:"sku"`
	Merged      decimal.Decimal `json:"merged"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Price       decimal.Decimal `json:"price"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
}

// NewStockMergedEvent creates a new StockMergedEvent
func NewStockMergedEvent(item *WarehouseItem, merged decimal.Decimal, orderID uuid.UUID, orderNumber string) *StockMergedEvent {
	return &StockMergedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMerged, AggregateTypeWarehouseItem, item.ID),
		SKU:             item.SKU,
		Merged:          merged,
		NewQuantity:     item.Quantity,
		Price:           item.Price,
		OrderID:         orderID,
		OrderNumber:     orderNumber,
	}
}

// EventType returns the event type name
func (e *StockMergedEvent) EventType() string {
	return EventTypeStockMerged
}

// PriceConflictResolvedEvent is raised when a price conflict is answered
type PriceConflictResolvedEvent struct {
	shared.BaseDomainEvent
	SKU           string          `json:"sku"`
	Decision      string          `json:"decision"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	IncomingPrice decimal.Decimal `json:"incoming_price"`
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
}

// NewPriceConflictResolvedEvent creates a new PriceConflictResolvedEvent
func NewPriceConflictResolvedEvent(item *WarehouseItem, conflict PriceConflict, decision PriceDecision) *PriceConflictResolvedEvent {
	return &PriceConflictResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePriceConflictResolved, AggregateTypeWarehouseItem, item.ID),
		SKU:             conflict.SKU,
		Decision:        string(decision),
		CurrentPrice:    conflict.CurrentPrice,
		IncomingPrice:   conflict.IncomingPrice,
		OrderID:         conflict.OrderID,
		OrderNumber:     conflict.OrderNumber,
	}
}

// EventType returns the event type name
func (e *PriceConflictResolvedEvent) EventType() string {
	return EventTypePriceConflictResolved
}
