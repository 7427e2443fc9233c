package order

import (
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the status of a supplier order
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusReceived  Status = "RECEIVED"
	StatusPartial   Status = "PARTIAL"
	StatusPaid      Status = "PAID"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusInTransit, StatusReceived, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusConfirmed
	case StatusConfirmed:
		return target == StatusInTransit
	case StatusInTransit:
		return target == StatusReceived || target == StatusPartial
	case StatusPartial:
		return target == StatusPartial || target == StatusReceived || target == StatusPaid
	case StatusReceived:
		return target == StatusPaid
	case StatusPaid:
		return false // Terminal state
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s Status) CanReceive() bool {
	return s == StatusInTransit || s == StatusPartial
}

// CanDelete returns true if an order in this status may be deleted.
// Received and paid orders hold fulfillment and financial history.
func (s Status) CanDelete() bool {
	return s != StatusReceived && s != StatusPaid
}

// PaymentTermDays is the payment term applied when an order is first
// closed as partial: payment is due this many days after purchase.
const PaymentTermDays = 30

// GenerateOrderNumber derives a human-readable order number from a timestamp
func GenerateOrderNumber(t time.Time) string {
	return "ORD-" + t.Format("20060102-1504")
}

// OrderProduct represents an ordered line in a supplier order.
// Quantity and price are the ordered commitment and never change after creation.
type OrderProduct struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"type:varchar(64);not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Unit price at order time
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * Price
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderProduct) TableName() string {
	return "supplier_order_products"
}

// NewOrderProduct creates a new order line
func NewOrderProduct(orderID uuid.UUID, sku, name string, quantity decimal.Decimal, price valueobject.Money) (*OrderProduct, error) {
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}

	return &OrderProduct{
		ID:        uuid.New(),
		OrderID:   orderID,
		SKU:       sku,
		Name:      name,
		Quantity:  quantity,
		Price:     price.Amount(),
		Amount:    quantity.Mul(price.Amount()),
		CreatedAt: time.Now(),
	}, nil
}

// ReceivedItem accumulates the received quantity for one SKU of an order.
// ReconciledQuantity is the watermark up to which the quantity has already
// been merged into the warehouse ledger.
type ReceivedItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_received_item_order_sku,priority:1"`
	SKU                string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_received_item_order_sku,priority:2"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReconciledQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceivedItem) TableName() string {
	return "supplier_order_received_items"
}

// UnreconciledQuantity returns the received quantity not yet merged into the ledger
func (r *ReceivedItem) UnreconciledQuantity() decimal.Decimal {
	delta := r.Quantity.Sub(r.ReconciledQuantity)
	if delta.IsNegative() {
		return decimal.Zero
	}
	return delta
}

// SupplierOrder represents a purchase commitment to an external goods supplier.
// It is the aggregate root governing the order lifecycle from creation to payment.
type SupplierOrder struct {
	shared.BaseAggregateRoot
	OrderNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Supplier       string          `gorm:"type:varchar(200);not null;index"`
	PurchaseDate   time.Time       `gorm:"not null;index"`
	PaymentDate    *time.Time      `gorm:"index"`
	Products       []OrderProduct  `gorm:"foreignKey:OrderID;references:ID"`
	ReceivedItems  []ReceivedItem  `gorm:"foreignKey:OrderID;references:ID"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Sum of all lines, fixed at creation
	Status         Status          `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	CloseReason    string          `gorm:"type:varchar(500)"`
	PaidAt         *time.Time
	LastReceivedAt *time.Time

	// Shipment tracking is free-form; no invariants enforced here
	TrackingCarrier string `gorm:"type:varchar(100)"`
	TrackingNumber  string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SupplierOrder) TableName() string {
	return "supplier_orders"
}

// NewSupplierOrder creates a new supplier order in DRAFT status
func NewSupplierOrder(orderNumber, supplier string, purchaseDate time.Time) (*SupplierOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order number cannot be empty")
	}
	if supplier == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Supplier cannot be empty")
	}
	if purchaseDate.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Purchase date is required")
	}

	o := &SupplierOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Supplier:          supplier,
		PurchaseDate:      purchaseDate,
		Products:          make([]OrderProduct, 0),
		ReceivedItems:     make([]ReceivedItem, 0),
		TotalValue:        decimal.Zero,
		Status:            StatusDraft,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AddProduct adds an ordered line to the order
// Only allowed in DRAFT status
func (o *SupplierOrder) AddProduct(sku, name string, quantity decimal.Decimal, price valueobject.Money) (*OrderProduct, error) {
	if o.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add products to a non-draft order")
	}
	for _, p := range o.Products {
		if p.SKU == sku {
			return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("SKU %s already exists in order", sku))
		}
	}

	product, err := NewOrderProduct(o.ID, sku, name, quantity, price)
	if err != nil {
		return nil, err
	}

	o.Products = append(o.Products, *product)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return product, nil
}

// Confirm transitions the order from DRAFT to CONFIRMED
// Requires at least one ordered line
func (o *SupplierOrder) Confirm() error {
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Products) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot confirm order without products")
	}

	o.Status = StatusConfirmed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// MarkInTransit transitions the order from CONFIRMED to IN_TRANSIT
func (o *SupplierOrder) MarkInTransit() error {
	if !o.Status.CanTransitionTo(StatusInTransit) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark order in %s status as in transit", o.Status))
	}

	o.Status = StatusInTransit
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderInTransitEvent(o))

	return nil
}

// SetTracking records free-form shipment tracking info
func (o *SupplierOrder) SetTracking(carrier, number string) {
	o.TrackingCarrier = carrier
	o.TrackingNumber = number
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Receive adds a received quantity for one SKU and re-derives the order status.
// The received quantity for a SKU never exceeds its ordered quantity.
func (o *SupplierOrder) Receive(sku string, delta decimal.Decimal) error {
	if !o.Status.CanReceive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive goods for order in %s status", o.Status))
	}
	if delta.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Receive quantity must be positive")
	}

	product := o.Product(sku)
	if product == nil {
		return shared.NewDomainError("PRODUCT_NOT_IN_ORDER", fmt.Sprintf("SKU %s does not belong to order %s", sku, o.OrderNumber))
	}

	current := o.ReceivedQuantity(sku)
	newQuantity := current.Add(delta)
	if newQuantity.GreaterThan(product.Quantity) {
		return shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %s of %s, only %s remaining", delta.String(), sku, product.Quantity.Sub(current).String()))
	}

	now := time.Now()
	o.upsertReceivedItem(sku, newQuantity, now)
	o.LastReceivedAt = &now
	o.deriveStatus()
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderReceivedEvent(o, sku, delta))

	return nil
}

// ClosePartial closes the order manually. With final set the order becomes
// RECEIVED (close-out of a partial delivery); otherwise it becomes PARTIAL
// and the payment date is fixed at purchase date + 30 days on first entry.
func (o *SupplierOrder) ClosePartial(reason string, final bool) error {
	target := StatusPartial
	if final {
		target = StatusReceived
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close order in %s status as %s", o.Status, target))
	}

	o.Status = target
	o.CloseReason = reason
	if target == StatusPartial && o.PaymentDate == nil {
		due := o.PurchaseDate.AddDate(0, 0, PaymentTermDays)
		o.PaymentDate = &due
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderClosedEvent(o, reason, final))

	return nil
}

// MarkPaid transitions the order to PAID
// Valid only from RECEIVED or PARTIAL
func (o *SupplierOrder) MarkPaid(paidAt *time.Time) error {
	if !o.Status.CanTransitionTo(StatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark order in %s status as paid", o.Status))
	}

	now := time.Now()
	if paidAt == nil {
		paidAt = &now
	}
	o.Status = StatusPaid
	o.PaidAt = paidAt
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// CanDelete returns true if the order may be deleted in its current status
func (o *SupplierOrder) CanDelete() bool {
	return o.Status.CanDelete()
}

// upsertReceivedItem sets the accumulated received quantity for a SKU.
// A resulting zero quantity removes the entry.
func (o *SupplierOrder) upsertReceivedItem(sku string, quantity decimal.Decimal, receivedAt time.Time) {
	for idx := range o.ReceivedItems {
		if o.ReceivedItems[idx].SKU == sku {
			if quantity.IsZero() {
				o.ReceivedItems = append(o.ReceivedItems[:idx], o.ReceivedItems[idx+1:]...)
				return
			}
			o.ReceivedItems[idx].Quantity = quantity
			o.ReceivedItems[idx].ReceivedAt = receivedAt
			return
		}
	}
	if quantity.IsZero() {
		return
	}
	o.ReceivedItems = append(o.ReceivedItems, ReceivedItem{
		ID:                 uuid.New(),
		OrderID:            o.ID,
		SKU:                sku,
		Quantity:           quantity,
		ReconciledQuantity: decimal.Zero,
		ReceivedAt:         receivedAt,
	})
}

// deriveStatus derives the order status from received totals.
// RECEIVED when everything ordered arrived, PARTIAL when something did,
// otherwise the status is left unchanged.
func (o *SupplierOrder) deriveStatus() {
	totalOrdered := o.TotalOrderedQuantity()
	totalReceived := o.TotalReceivedQuantity()

	switch {
	case totalOrdered.IsPositive() && totalReceived.Equal(totalOrdered):
		o.Status = StatusReceived
	case totalReceived.IsPositive():
		o.Status = StatusPartial
	}
}

// recalculateTotal recalculates the fixed order total from its lines
func (o *SupplierOrder) recalculateTotal() {
	total := decimal.Zero
	for _, p := range o.Products {
		total = total.Add(p.Amount)
	}
	o.TotalValue = total
}

// Product returns the ordered line for a SKU, or nil
func (o *SupplierOrder) Product(sku string) *OrderProduct {
	for idx := range o.Products {
		if o.Products[idx].SKU == sku {
			return &o.Products[idx]
		}
	}
	return nil
}

// ReceivedQuantity returns the accumulated received quantity for a SKU
func (o *SupplierOrder) ReceivedQuantity(sku string) decimal.Decimal {
	for idx := range o.ReceivedItems {
		if o.ReceivedItems[idx].SKU == sku {
			return o.ReceivedItems[idx].Quantity
		}
	}
	return decimal.Zero
}

// TotalOrderedQuantity returns the total ordered quantity across all lines
func (o *SupplierOrder) TotalOrderedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, p := range o.Products {
		total = total.Add(p.Quantity)
	}
	return total
}

// TotalReceivedQuantity returns the total received quantity across all SKUs
func (o *SupplierOrder) TotalReceivedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, r := range o.ReceivedItems {
		total = total.Add(r.Quantity)
	}
	return total
}

// TotalSpent returns the value of the received portion, priced at the
// ordered unit prices
func (o *SupplierOrder) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, r := range o.ReceivedItems {
		if p := o.Product(r.SKU); p != nil {
			total = total.Add(r.Quantity.Mul(p.Price))
		}
	}
	return total
}

// IsFullyReceived returns true if every ordered unit has been received
func (o *SupplierOrder) IsFullyReceived() bool {
	ordered := o.TotalOrderedQuantity()
	return ordered.IsPositive() && o.TotalReceivedQuantity().Equal(ordered)
}

// HasReceivedAnyGoods returns true if any quantity has been received
func (o *SupplierOrder) HasReceivedAnyGoods() bool {
	return o.TotalReceivedQuantity().IsPositive()
}

// UnreconciledItems returns the received items with quantity above the
// reconciliation watermark, in receiving order
func (o *SupplierOrder) UnreconciledItems() []ReceivedItem {
	items := make([]ReceivedItem, 0)
	for _, r := range o.ReceivedItems {
		if r.UnreconciledQuantity().IsPositive() {
			items = append(items, r)
		}
	}
	return items
}

// MarkReconciled advances the reconciliation watermark for a SKU by the
// given quantity. Called by the reconciliation engine after each per-SKU
// merge commits.
func (o *SupplierOrder) MarkReconciled(sku string, quantity decimal.Decimal) error {
	for idx := range o.ReceivedItems {
		if o.ReceivedItems[idx].SKU == sku {
			newMark := o.ReceivedItems[idx].ReconciledQuantity.Add(quantity)
			if newMark.GreaterThan(o.ReceivedItems[idx].Quantity) {
				return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Reconciled quantity for %s would exceed received quantity", sku))
			}
			o.ReceivedItems[idx].ReconciledQuantity = newMark
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No received item for SKU %s", sku))
}

// AdvanceReconciledTo raises the reconciliation watermark for a SKU to the
// given mark and reports whether it moved. A mark at or below the current
// watermark is a no-op: watermarks only grow, so advances recorded against
// an older copy of the order can be replayed onto a fresher one.
func (o *SupplierOrder) AdvanceReconciledTo(sku string, mark decimal.Decimal) (bool, error) {
	for idx := range o.ReceivedItems {
		if o.ReceivedItems[idx].SKU != sku {
			continue
		}
		if mark.LessThanOrEqual(o.ReceivedItems[idx].ReconciledQuantity) {
			return false, nil
		}
		if mark.GreaterThan(o.ReceivedItems[idx].Quantity) {
			return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Reconciled quantity for %s would exceed received quantity", sku))
		}
		o.ReceivedItems[idx].ReconciledQuantity = mark
		o.UpdatedAt = time.Now()
		o.IncrementVersion()
		return true, nil
	}
	return false, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No received item for SKU %s", sku))
}

// Progress describes receipt progress in units
type Progress struct {
	ReceivedUnits decimal.Decimal
	TotalUnits    decimal.Decimal
	Percentage    decimal.Decimal
}

// PaymentProgress describes payment progress in money. While an order is
// PARTIAL the amount owed is the received value; once RECEIVED or PAID it
// is the full order value.
type PaymentProgress struct {
	PaidAmount decimal.Decimal
	TotalOwed  decimal.Decimal
	Percentage decimal.Decimal
}

// ReceiveProgress returns the receipt progress of the order
func (o *SupplierOrder) ReceiveProgress() Progress {
	total := o.TotalOrderedQuantity()
	received := o.TotalReceivedQuantity()
	pct := decimal.Zero
	if total.IsPositive() {
		pct = received.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return Progress{ReceivedUnits: received, TotalUnits: total, Percentage: pct}
}

// PayProgress returns the payment progress of the order
func (o *SupplierOrder) PayProgress() PaymentProgress {
	owed := o.TotalValue
	if o.Status == StatusPartial {
		owed = o.TotalSpent()
	}
	paid := decimal.Zero
	if o.Status == StatusPaid {
		paid = owed
	}
	pct := decimal.Zero
	if owed.IsPositive() {
		pct = paid.Div(owed).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return PaymentProgress{PaidAmount: paid, TotalOwed: owed, Percentage: pct}
}
