package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/order"
)

// ==================== Supplier Order DTOs ====================

// CreateSupplierOrderRequest represents a request to create a supplier order
type CreateSupplierOrderRequest struct {
	Supplier     string                    `json:"supplier" binding:"required,min=1,max=200"`
	OrderNumber  string                    `json:"order_number" binding:"omitempty,max=50"`
	PurchaseDate *time.Time                `json:"purchase_date"`
	Products     []CreateOrderProductInput `json:"products"`
}

// CreateOrderProductInput represents an ordered line in the create request.
// Price is a decimal string; both "." and "," are accepted as the decimal
// separator.
type CreateOrderProductInput struct {
	SKU      string          `json:"sku" binding:"required,min=1,max=64"`
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,dpositive"`
	Price    string          `json:"price" binding:"required"`
}

// AddOrderProductRequest represents a request to add a line to a draft order
type AddOrderProductRequest struct {
	SKU      string          `json:"sku" binding:"required,min=1,max=64"`
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,dpositive"`
	Price    string          `json:"price" binding:"required"`
}

// SetTrackingRequest represents a request to attach shipment tracking
type SetTrackingRequest struct {
	Carrier string `json:"carrier" binding:"required,min=1,max=100"`
	Number  string `json:"number" binding:"required,min=1,max=100"`
}

// ReceiveItemInput represents one received quantity delta for a SKU
type ReceiveItemInput struct {
	SKU      string          `json:"sku" binding:"required,min=1,max=64"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,dpositive"`
}

// ReceiveGoodsRequest represents a request to record received goods
type ReceiveGoodsRequest struct {
	Items []ReceiveItemInput `json:"items" binding:"required,min=1"`
}

// CloseSupplierOrderRequest represents a request to close an order manually.
// With Final set the order is closed out as fully received; otherwise it is
// parked as a partial delivery.
type CloseSupplierOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
	Final  bool   `json:"final"`
}

// MarkPaidRequest represents a request to settle an order
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// SupplierOrderListFilter represents filter options for the order list
type SupplierOrderListFilter struct {
	Search   string        `form:"search"`
	Supplier string        `form:"supplier"`
	Status   *order.Status `form:"status"`
	Page     int           `form:"page" binding:"omitempty,min=1"`
	PageSize int           `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string        `form:"order_by"`
	OrderDir string        `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderProductResponse represents an ordered line in API responses
type OrderProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	OrderedQuantity   decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Price             decimal.Decimal `json:"price"`
	Amount            decimal.Decimal `json:"amount"`
}

// ReceivedItemResponse represents an accumulated receipt in API responses
type ReceivedItemResponse struct {
	SKU                string          `json:"sku"`
	Quantity           decimal.Decimal `json:"quantity"`
	ReconciledQuantity decimal.Decimal `json:"reconciled_quantity"`
	ReceivedAt         time.Time       `json:"received_at"`
}

// ProgressResponse represents receipt progress in units
type ProgressResponse struct {
	ReceivedUnits decimal.Decimal `json:"received_units"`
	TotalUnits    decimal.Decimal `json:"total_units"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// PaymentProgressResponse represents payment progress in money
type PaymentProgressResponse struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	Percentage decimal.Decimal `json:"percentage"`
}

// SupplierOrderResponse represents a supplier order in API responses
type SupplierOrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	OrderNumber     string                  `json:"order_number"`
	Supplier        string                  `json:"supplier"`
	PurchaseDate    time.Time               `json:"purchase_date"`
	PaymentDate     *time.Time              `json:"payment_date,omitempty"`
	Products        []OrderProductResponse  `json:"products"`
	ReceivedItems   []ReceivedItemResponse  `json:"received_items"`
	TotalValue      decimal.Decimal         `json:"total_value"`
	TotalSpent      decimal.Decimal         `json:"total_spent"`
	Status          string                  `json:"status"`
	CloseReason     string                  `json:"close_reason,omitempty"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	LastReceivedAt  *time.Time              `json:"last_received_at,omitempty"`
	TrackingCarrier string                  `json:"tracking_carrier,omitempty"`
	TrackingNumber  string                  `json:"tracking_number,omitempty"`
	ReceiveProgress ProgressResponse        `json:"receive_progress"`
	PayProgress     PaymentProgressResponse `json:"pay_progress"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Version         int                     `json:"version"`
}

// SupplierOrderListItemResponse represents a supplier order in list responses (less detail)
type SupplierOrderListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Supplier        string          `json:"supplier"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	LineCount       int             `json:"line_count"`
	TotalValue      decimal.Decimal `json:"total_value"`
	Status          string          `json:"status"`
	ReceivePercent  decimal.Decimal `json:"receive_percent"`
	LastReceivedAt  *time.Time      `json:"last_received_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderProgressResponse bundles both progress views of one order
type OrderProgressResponse struct {
	OrderNumber     string                  `json:"order_number"`
	Status          string                  `json:"status"`
	ReceiveProgress ProgressResponse        `json:"receive_progress"`
	PayProgress     PaymentProgressResponse `json:"pay_progress"`
}

// ==================== Converters ====================

// ToSupplierOrderResponse converts a domain supplier order to a response DTO
func ToSupplierOrderResponse(o *order.SupplierOrder) SupplierOrderResponse {
	products := make([]OrderProductResponse, len(o.Products))
	for i := range o.Products {
		products[i] = toOrderProductResponse(o, &o.Products[i])
	}
	received := make([]ReceivedItemResponse, len(o.ReceivedItems))
	for i, item := range o.ReceivedItems {
		received[i] = ReceivedItemResponse{
			SKU:                item.SKU,
			Quantity:           item.Quantity,
			ReconciledQuantity: item.ReconciledQuantity,
			ReceivedAt:         item.ReceivedAt,
		}
	}

	return SupplierOrderResponse{
		ID:              o.GetID(),
		OrderNumber:     o.OrderNumber,
		Supplier:        o.Supplier,
		PurchaseDate:    o.PurchaseDate,
		PaymentDate:     o.PaymentDate,
		Products:        products,
		ReceivedItems:   received,
		TotalValue:      o.TotalValue,
		TotalSpent:      o.TotalSpent(),
		Status:          string(o.Status),
		CloseReason:     o.CloseReason,
		PaidAt:          o.PaidAt,
		LastReceivedAt:  o.LastReceivedAt,
		TrackingCarrier: o.TrackingCarrier,
		TrackingNumber:  o.TrackingNumber,
		ReceiveProgress: toProgressResponse(o.ReceiveProgress()),
		PayProgress:     toPaymentProgressResponse(o.PayProgress()),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.GetVersion(),
	}
}

func toOrderProductResponse(o *order.SupplierOrder, p *order.OrderProduct) OrderProductResponse {
	received := o.ReceivedQuantity(p.SKU)
	return OrderProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		OrderedQuantity:   p.Quantity,
		ReceivedQuantity:  received,
		RemainingQuantity: p.Quantity.Sub(received),
		Price:             p.Price,
		Amount:            p.Amount,
	}
}

func toProgressResponse(p order.Progress) ProgressResponse {
	return ProgressResponse{
		ReceivedUnits: p.ReceivedUnits,
		TotalUnits:    p.TotalUnits,
		Percentage:    p.Percentage,
	}
}

func toPaymentProgressResponse(p order.PaymentProgress) PaymentProgressResponse {
	return PaymentProgressResponse{
		PaidAmount: p.PaidAmount,
		TotalOwed:  p.TotalOwed,
		Percentage: p.Percentage,
	}
}

// ToSupplierOrderListItemResponse converts a domain supplier order to a list item DTO
func ToSupplierOrderListItemResponse(o *order.SupplierOrder) SupplierOrderListItemResponse {
	return SupplierOrderListItemResponse{
		ID:             o.GetID(),
		OrderNumber:    o.OrderNumber,
		Supplier:       o.Supplier,
		PurchaseDate:   o.PurchaseDate,
		PaymentDate:    o.PaymentDate,
		LineCount:      len(o.Products),
		TotalValue:     o.TotalValue,
		Status:         string(o.Status),
		ReceivePercent: o.ReceiveProgress().Percentage,
		LastReceivedAt: o.LastReceivedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToSupplierOrderListItemResponses converts a slice of domain orders to list item DTOs
func ToSupplierOrderListItemResponses(orders []order.SupplierOrder) []SupplierOrderListItemResponse {
	responses := make([]SupplierOrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToSupplierOrderListItemResponse(&orders[i])
	}
	return responses
}

// ToOrderProgressResponse converts an order's progress views to a DTO
func ToOrderProgressResponse(o *order.SupplierOrder) OrderProgressResponse {
	return OrderProgressResponse{
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		ReceiveProgress: toProgressResponse(o.ReceiveProgress()),
		PayProgress:     toPaymentProgressResponse(o.PayProgress()),
	}
}
