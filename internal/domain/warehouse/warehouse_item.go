package warehouse

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// WarehouseItem is the ledger entry for the current stock of one SKU.
// The SKU is the key shared with supplier order lines.
type WarehouseItem struct {
	shared.BaseAggregateRoot
	SKU      string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Quantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Price    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Current unit price used for valuation

	// Free-text classification, no invariants
	Category string `gorm:"type:varchar(100)"`
	Location string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (WarehouseItem) TableName() string {
	return "warehouse_items"
}

// NewWarehouseItem creates a new ledger entry for a SKU
func NewWarehouseItem(sku, name string, quantity, price decimal.Decimal) (*WarehouseItem, error) {
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be negative")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}

	return &WarehouseItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Quantity:          quantity,
		Price:             price,
	}, nil
}

// AddStock increases the stored quantity
func (i *WarehouseItem) AddStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}

	i.Quantity = i.Quantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// SetPrice sets the current unit price
func (i *WarehouseItem) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}

	i.Price = price
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// TotalValue returns the valuation of this entry (quantity * price)
func (i *WarehouseItem) TotalValue() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}
