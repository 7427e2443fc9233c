package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// SupplierOrderService handles supplier order business operations
type SupplierOrderService struct {
	orderRepo      order.SupplierOrderRepository
	eventPublisher shared.EventPublisher
}

// NewSupplierOrderService creates a new SupplierOrderService
func NewSupplierOrderService(orderRepo order.SupplierOrderRepository) *SupplierOrderService {
	return &SupplierOrderService{
		orderRepo: orderRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SupplierOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new supplier order in DRAFT status
func (s *SupplierOrderService) Create(ctx context.Context, req CreateSupplierOrderRequest) (*SupplierOrderResponse, error) {
	purchaseDate := time.Now()
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		var err error
		orderNumber, err = s.nextOrderNumber(ctx, purchaseDate)
		if err != nil {
			return nil, err
		}
	} else {
		exists, err := s.orderRepo.ExistsByOrderNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Order number %s is already taken", orderNumber))
		}
	}

	o, err := order.NewSupplierOrder(orderNumber, req.Supplier, purchaseDate)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Products {
		price, err := valueobject.NewMoneyEURFromLocalizedString(input.Price)
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid price for SKU %s: %s", input.SKU, input.Price))
		}
		if _, err := o.AddProduct(input.SKU, input.Name, input.Quantity, price); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, o)

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// nextOrderNumber derives an order number from the purchase date and
// resolves same-minute collisions with a numeric suffix
func (s *SupplierOrderService) nextOrderNumber(ctx context.Context, purchaseDate time.Time) (string, error) {
	base := order.GenerateOrderNumber(purchaseDate)
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.orderRepo.ExistsByOrderNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetByID retrieves a supplier order by ID
func (s *SupplierOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves a supplier order by its order number
func (s *SupplierOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// List retrieves supplier orders with filtering and pagination
func (s *SupplierOrderService) List(ctx context.Context, filter SupplierOrderListFilter) ([]SupplierOrderListItemResponse, int64, error) {
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
	if filter.Supplier != "" {
		repoFilter.Filters["supplier"] = filter.Supplier
	}

	var (
		orders []order.SupplierOrder
		err    error
	)
	if filter.Status != nil {
		if !filter.Status.IsValid() {
			return nil, 0, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown order status %s", *filter.Status))
		}
		repoFilter.Filters["status"] = string(*filter.Status)
		orders, err = s.orderRepo.FindByStatus(ctx, *filter.Status, repoFilter)
	} else {
		orders, err = s.orderRepo.FindAll(ctx, repoFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSupplierOrderListItemResponses(orders), total, nil
}

// AddProduct adds an ordered line to a draft order
func (s *SupplierOrderService) AddProduct(ctx context.Context, orderID uuid.UUID, req AddOrderProductRequest) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	price, err := valueobject.NewMoneyEURFromLocalizedString(req.Price)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid price: %s", req.Price))
	}
	if _, err := o.AddProduct(req.SKU, req.Name, req.Quantity, price); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// Confirm confirms a draft order towards the supplier
func (s *SupplierOrderService) Confirm(ctx context.Context, orderID uuid.UUID) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Confirm(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, o)

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// MarkInTransit marks a confirmed order as shipped by the supplier
func (s *SupplierOrderService) MarkInTransit(ctx context.Context, orderID uuid.UUID, req *SetTrackingRequest) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkInTransit(); err != nil {
		return nil, err
	}
	if req != nil {
		o.SetTracking(req.Carrier, req.Number)
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, o)

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// Receive records received goods for an order in transit
func (s *SupplierOrderService) Receive(ctx context.Context, orderID uuid.UUID, req ReceiveGoodsRequest) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if err := o.Receive(item.SKU, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, o)

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// Close closes an order manually, either parking it as a partial delivery
// or closing it out as fully received
func (s *SupplierOrderService) Close(ctx context.Context, orderID uuid.UUID, req CloseSupplierOrderRequest) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.ClosePartial(req.Reason, req.Final); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, o)

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// MarkPaid settles an order
func (s *SupplierOrderService) MarkPaid(ctx context.Context, orderID uuid.UUID, req MarkPaidRequest) (*SupplierOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkPaid(req.PaidAt); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, o)

	response := ToSupplierOrderResponse(o)
	return &response, nil
}

// Delete removes an order that has not received goods yet
func (s *SupplierOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !o.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete order in %s status", o.Status))
	}

	if err := s.orderRepo.Delete(ctx, o.GetID()); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, order.NewOrderDeletedEvent(o))
	}
	return nil
}

// Progress retrieves the receipt and payment progress of an order
func (s *SupplierOrderService) Progress(ctx context.Context, orderID uuid.UUID) (*OrderProgressResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderProgressResponse(o)
	return &response, nil
}

// publishDomainEvents publishes all domain events from the order
func (s *SupplierOrderService) publishDomainEvents(ctx context.Context, o *order.SupplierOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}
