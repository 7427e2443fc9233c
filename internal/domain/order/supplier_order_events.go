package order

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSupplierOrder = "SupplierOrder"

// Event type constants
const (
	EventTypeOrderCreated   = "SupplierOrderCreated"
	EventTypeOrderConfirmed = "SupplierOrderConfirmed"
	EventTypeOrderInTransit = "SupplierOrderInTransit"
	EventTypeOrderReceived  = "SupplierOrderReceived"
	EventTypeOrderClosed    = "SupplierOrderClosed"
	EventTypeOrderPaid      = "SupplierOrderPaid"
	EventTypeOrderDeleted   = "SupplierOrderDeleted"
)

// OrderCreatedEvent is raised when a new supplier order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Supplier    string          `json:"supplier"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *SupplierOrder) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Supplier:        o.Supplier,
		TotalValue:      o.TotalValue,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderConfirmedEvent is raised when a supplier order is confirmed
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Supplier    string          `json:"supplier"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(o *SupplierOrder) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Supplier:        o.Supplier,
		TotalValue:      o.TotalValue,
	}
}

// EventType returns the event type name
func (e *OrderConfirmedEvent) EventType() string {
	return EventTypeOrderConfirmed
}

// OrderInTransitEvent is raised when a supplier order is marked in transit
type OrderInTransitEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewOrderInTransitEvent creates a new OrderInTransitEvent
func NewOrderInTransitEvent(o *SupplierOrder) *OrderInTransitEvent {
	return &OrderInTransitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderInTransit, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
	}
}

// EventType returns the event type name
func (e *OrderInTransitEvent) EventType() string {
	return EventTypeOrderInTransit
}

// OrderReceivedEvent is raised when goods are received against an order
type OrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	SKU             string          `json:"sku"`
	Quantity        decimal.Decimal `json:"quantity"`
	IsFullyReceived bool            `json:"is_fully_received"`
}

// NewOrderReceivedEvent creates a new OrderReceivedEvent
func NewOrderReceivedEvent(o *SupplierOrder, sku string, quantity decimal.Decimal) *OrderReceivedEvent {
	return &OrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderReceived, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		SKU:             sku,
		Quantity:        quantity,
		IsFullyReceived: o.IsFullyReceived(),
	}
}

// EventType returns the event type name
func (e *OrderReceivedEvent) EventType() string {
	return EventTypeOrderReceived
}

// OrderClosedEvent is raised when an order is closed manually
type OrderClosedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
	Final       bool      `json:"final"`
	Status      Status    `json:"status"`
}

// NewOrderClosedEvent creates a new OrderClosedEvent
func NewOrderClosedEvent(o *SupplierOrder, reason string, final bool) *OrderClosedEvent {
	return &OrderClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderClosed, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
		Final:           final,
		Status:          o.Status,
	}
}

// EventType returns the event type name
func (e *OrderClosedEvent) EventType() string {
	return EventTypeOrderClosed
}

// OrderPaidEvent is raised when an order is marked as paid
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	PaidAt      *time.Time      `json:"paid_at"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *SupplierOrder) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PaidAt:          o.PaidAt,
		Amount:          o.PayProgress().TotalOwed,
	}
}

// EventType returns the event type name
func (e *OrderPaidEvent) EventType() string {
	return EventTypeOrderPaid
}

// OrderDeletedEvent is raised when an order is deleted
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewOrderDeletedEvent creates a new OrderDeletedEvent
func NewOrderDeletedEvent(o *SupplierOrder) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, AggregateTypeSupplierOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
	}
}

// EventType returns the event type name
func (e *OrderDeletedEvent) EventType() string {
	return EventTypeOrderDeleted
}
