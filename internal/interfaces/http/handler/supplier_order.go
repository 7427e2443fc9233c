package handler

import (
	"errors"
	"net/http"

	orderapp "github.com/backoffice/backend/internal/application/order"
	csvimport "github.com/backoffice/backend/internal/infrastructure/import"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxImportFileSize is the upper bound for uploaded CSV files
const maxImportFileSize = 10 * 1024 * 1024

// SupplierOrderHandler handles supplier order API endpoints
type SupplierOrderHandler struct {
	BaseHandler
	orderService  *orderapp.SupplierOrderService
	importService *orderapp.OrderImportService
}

// NewSupplierOrderHandler creates a new SupplierOrderHandler
func NewSupplierOrderHandler(orderService *orderapp.SupplierOrderService, importService *orderapp.OrderImportService) *SupplierOrderHandler {
	return &SupplierOrderHandler{
		orderService:  orderService,
		importService: importService,
	}
}

// RegisterRoutes registers supplier order routes
func (h *SupplierOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.POST("/import", h.Import)
		orders.GET("/number/:order_number", h.GetByOrderNumber)
		orders.GET("/:id", h.GetByID)
		orders.DELETE("/:id", h.Delete)
		orders.GET("/:id/progress", h.Progress)
		orders.POST("/:id/products", h.AddProduct)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/transit", h.MarkInTransit)
		orders.POST("/:id/receive", h.Receive)
		orders.POST("/:id/close", h.Close)
		orders.POST("/:id/pay", h.MarkPaid)
	}
}

// parseOrderID extracts and validates the order ID path parameter
func (h *SupplierOrderHandler) parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, false
	}
	return orderID, true
}

// Create godoc
// @ID           createSupplierOrder
// @Summary      Create a new supplier order
// @Description  Create a new supplier order in DRAFT status with optional ordered lines
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CreateSupplierOrderRequest true "Supplier order creation request"
// @Success      201 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /orders [post]
func (h *SupplierOrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateSupplierOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getSupplierOrderById
// @Summary      Get supplier order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *SupplierOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	o, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// GetByOrderNumber godoc
// @ID           getSupplierOrderByOrderNumber
// @Summary      Get supplier order by order number
// @Tags         orders
// @Produce      json
// @Param        order_number path string true "Order Number"
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/number/{order_number} [get]
func (h *SupplierOrderHandler) GetByOrderNumber(c *gin.Context) {
	orderNumber := c.Param("order_number")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	o, err := h.orderService.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// List godoc
// @ID           listSupplierOrders
// @Summary      List supplier orders
// @Description  Retrieve a paginated list of supplier orders with optional filtering
// @Tags         orders
// @Produce      json
// @Param        search query string false "Search term (order number, supplier)"
// @Param        supplier query string false "Supplier name"
// @Param        status query string false "Order status" Enums(DRAFT, CONFIRMED, IN_TRANSIT, RECEIVED, PARTIAL, PAID)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]orderapp.SupplierOrderListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /orders [get]
func (h *SupplierOrderHandler) List(c *gin.Context) {
	var filter orderapp.SupplierOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// AddProduct godoc
// @ID           addSupplierOrderProduct
// @Summary      Add an ordered line to a draft order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.AddOrderProductRequest true "Ordered line to add"
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/products [post]
func (h *SupplierOrderHandler) AddProduct(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	var req orderapp.AddOrderProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.orderService.AddProduct(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// Confirm godoc
// @ID           confirmSupplierOrder
// @Summary      Confirm a supplier order
// @Description  Transition an order from DRAFT to CONFIRMED
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/confirm [post]
func (h *SupplierOrderHandler) Confirm(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	o, err := h.orderService.Confirm(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// MarkInTransit godoc
// @ID           markSupplierOrderInTransit
// @Summary      Mark a supplier order as in transit
// @Description  Transition an order from CONFIRMED to IN_TRANSIT, optionally attaching shipment tracking
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.SetTrackingRequest false "Shipment tracking"
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/transit [post]
func (h *SupplierOrderHandler) MarkInTransit(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	// Tracking is optional; an empty body marks the order in transit
	// without it.
	var tracking *orderapp.SetTrackingRequest
	if c.Request.ContentLength > 0 {
		var req orderapp.SetTrackingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		tracking = &req
	}

	o, err := h.orderService.MarkInTransit(c.Request.Context(), orderID, tracking)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// Receive godoc
// @ID           receiveSupplierOrder
// @Summary      Record received goods for a supplier order
// @Description  Record received quantity deltas per SKU; the order moves to RECEIVED or PARTIAL
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.ReceiveGoodsRequest true "Received quantities"
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/receive [post]
func (h *SupplierOrderHandler) Receive(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	var req orderapp.ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.orderService.Receive(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// Close godoc
// @ID           closeSupplierOrder
// @Summary      Close a supplier order manually
// @Description  Close an order with a reason; final closes it as fully received, otherwise it parks as PARTIAL
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.CloseSupplierOrderRequest true "Close request"
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/close [post]
func (h *SupplierOrderHandler) Close(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	var req orderapp.CloseSupplierOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.orderService.Close(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// MarkPaid godoc
// @ID           markSupplierOrderPaid
// @Summary      Settle a supplier order
// @Description  Mark a fully received order as PAID
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.MarkPaidRequest false "Payment details"
// @Success      200 {object} APIResponse[orderapp.SupplierOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/pay [post]
func (h *SupplierOrderHandler) MarkPaid(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	var req orderapp.MarkPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	o, err := h.orderService.MarkPaid(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, o)
}

// Delete godoc
// @ID           deleteSupplierOrder
// @Summary      Delete a supplier order
// @Description  Delete a supplier order (only allowed in DRAFT status)
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id} [delete]
func (h *SupplierOrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Progress godoc
// @ID           getSupplierOrderProgress
// @Summary      Get receipt and payment progress for an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.OrderProgressResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id}/progress [get]
func (h *SupplierOrderHandler) Progress(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	progress, err := h.orderService.Progress(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, progress)
}

// Import godoc
// @ID           importSupplierOrders
// @Summary      Import supplier orders from a CSV file
// @Description  Parse and import a CSV file of order lines; rows sharing an order number fold into one order
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file to import"
// @Success      200 {object} APIResponse[orderapp.OrderImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Router       /orders/import [post]
func (h *SupplierOrderHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum size of 10MB")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	result, err := h.importService.Import(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrEmptyFile):
			h.BadRequest(c, "CSV file is empty")
		case errors.Is(err, csvimport.ErrInvalidEncoding):
			h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
		case errors.Is(err, csvimport.ErrMissingHeader):
			h.BadRequest(c, err.Error())
		case errors.Is(err, csvimport.ErrNoDataRows):
			h.BadRequest(c, "CSV file has no data rows")
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.Success(c, result)
}
