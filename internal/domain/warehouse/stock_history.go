package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryKind classifies the origin of an inventory mutation
type HistoryKind string

const (
	// HistoryKindSupplierOrder marks a mutation caused by receiving a supplier order
	HistoryKindSupplierOrder HistoryKind = "supplier-order"
	// HistoryKindAdjustment marks a manual correction
	HistoryKindAdjustment HistoryKind = "adjustment"
)

// StockHistoryEntry is one record of the append-only inventory audit log.
// Entries are never mutated or deleted.
type StockHistoryEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SKU         string          `gorm:"type:varchar(64);not null;index"`
	Kind        HistoryKind     `gorm:"type:varchar(32);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Resulting quantity after the mutation
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Resulting price after the mutation
	Description string          `gorm:"type:varchar(500)"`
	OrderID     *uuid.UUID      `gorm:"type:uuid;index"` // Originating supplier order, if any
	OrderNumber string          `gorm:"type:varchar(50)"`
	CreatedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockHistoryEntry) TableName() string {
	return "stock_history"
}

// NewStockHistoryEntry creates an audit record for the state of a ledger
// entry after a mutation
func NewStockHistoryEntry(item *WarehouseItem, kind HistoryKind, description string, orderID *uuid.UUID, orderNumber string) *StockHistoryEntry {
	return &StockHistoryEntry{
		ID:          uuid.New(),
		SKU:         item.SKU,
		Kind:        kind,
		Quantity:    item.Quantity,
		Price:       item.Price,
		Description: description,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		CreatedAt:   time.Now(),
	}
}
