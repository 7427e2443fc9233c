package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierOrderRepository implements SupplierOrderRepository using GORM
type GormSupplierOrderRepository struct {
	db *gorm.DB
}

// NewGormSupplierOrderRepository creates a new GormSupplierOrderRepository
func NewGormSupplierOrderRepository(db *gorm.DB) *GormSupplierOrderRepository {
	return &GormSupplierOrderRepository{db: db}
}

// FindByID finds a supplier order by its ID with lines and received items
func (r *GormSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.SupplierOrder, error) {
	var o order.SupplierOrder
	if err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("ReceivedItems").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds a supplier order by its order number
func (r *GormSupplierOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.SupplierOrder, error) {
	var o order.SupplierOrder
	if err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("ReceivedItems").
		Where("order_number = ?", orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds supplier orders with filtering and pagination
func (r *GormSupplierOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.SupplierOrder, error) {
	var orders []order.SupplierOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.SupplierOrder{}),
		filter,
	)

	if err := query.Preload("Products").Preload("ReceivedItems").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds supplier orders by status
func (r *GormSupplierOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.SupplierOrder, error) {
	var orders []order.SupplierOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.SupplierOrder{}).Where("status = ?", status),
		filter,
	)

	if err := query.Preload("Products").Preload("ReceivedItems").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a supplier order including lines and received items
func (r *GormSupplierOrderRepository) Save(ctx context.Context, o *order.SupplierOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products", "ReceivedItems").Save(o).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, o)
	})
}

// SaveWithLock saves with optimistic locking. The aggregate's version has
// already been advanced by the domain operation; the persisted version must
// still be strictly below it or another writer got there first.
func (r *GormSupplierOrderRepository) SaveWithLock(ctx context.Context, o *order.SupplierOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var persistedVersion int
		if err := tx.Model(&order.SupplierOrder{}).
			Where("id = ?", o.ID).
			Select("version").
			Scan(&persistedVersion).Error; err != nil {
			return err
		}
		if persistedVersion == 0 {
			return shared.ErrNotFound
		}
		if persistedVersion >= o.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		o.UpdatedAt = time.Now()
		result := tx.Model(&order.SupplierOrder{}).
			Where("id = ? AND version = ?", o.ID, persistedVersion).
			Updates(map[string]interface{}{
				"supplier":         o.Supplier,
				"purchase_date":    o.PurchaseDate,
				"payment_date":     o.PaymentDate,
				"total_value":      o.TotalValue,
				"status":           o.Status,
				"close_reason":     o.CloseReason,
				"paid_at":          o.PaidAt,
				"last_received_at": o.LastReceivedAt,
				"tracking_carrier": o.TrackingCarrier,
				"tracking_number":  o.TrackingNumber,
				"version":          o.Version,
				"updated_at":       o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		return r.saveChildren(tx, o)
	})
}

// saveChildren synchronizes order lines and received items: rows no longer
// present on the aggregate are deleted, the rest are upserted.
func (r *GormSupplierOrderRepository) saveChildren(tx *gorm.DB, o *order.SupplierOrder) error {
	productIDs := make([]uuid.UUID, len(o.Products))
	for i, p := range o.Products {
		productIDs[i] = p.ID
	}
	if len(productIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, productIDs).
			Delete(&order.OrderProduct{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.OrderProduct{}).Error; err != nil {
			return err
		}
	}
	for i := range o.Products {
		o.Products[i].OrderID = o.ID
		if err := tx.Save(&o.Products[i]).Error; err != nil {
			return err
		}
	}

	receivedIDs := make([]uuid.UUID, len(o.ReceivedItems))
	for i, item := range o.ReceivedItems {
		receivedIDs[i] = item.ID
	}
	if len(receivedIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, receivedIDs).
			Delete(&order.ReceivedItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.ReceivedItem{}).Error; err != nil {
			return err
		}
	}
	for i := range o.ReceivedItems {
		o.ReceivedItems[i].OrderID = o.ID
		if err := tx.Save(&o.ReceivedItems[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a supplier order and its lines
func (r *GormSupplierOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&order.OrderProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&order.ReceivedItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&order.SupplierOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts supplier orders matching the filter
func (r *GormSupplierOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&order.SupplierOrder{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number is already taken
func (r *GormSupplierOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.SupplierOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormSupplierOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Ordering goes through a whitelist to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, SupplierOrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSupplierOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR supplier LIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "supplier":
			query = query.Where("supplier = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("purchase_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("purchase_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormSupplierOrderRepository implements SupplierOrderRepository
var _ order.SupplierOrderRepository = (*GormSupplierOrderRepository)(nil)
