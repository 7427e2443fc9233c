package order

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierOrderRepository defines the interface for supplier order persistence
type SupplierOrderRepository interface {
	// FindByID finds a supplier order by ID with lines and received items
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierOrder, error)

	// FindByOrderNumber finds a supplier order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*SupplierOrder, error)

	// FindAll finds supplier orders with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]SupplierOrder, error)

	// FindByStatus finds supplier orders by status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]SupplierOrder, error)

	// Save creates or updates a supplier order including lines and received items
	Save(ctx context.Context, o *SupplierOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *SupplierOrder) error

	// Delete removes a supplier order and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts supplier orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
}
