package handler

import (
	warehouseapp "github.com/backoffice/backend/internal/application/warehouse"
	"github.com/gin-gonic/gin"
)

// WarehouseHandler handles warehouse ledger API endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouseService *warehouseapp.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *warehouseapp.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
	}
}

// RegisterRoutes registers warehouse ledger routes
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouse := rg.Group("/warehouse")
	{
		warehouse.GET("/items", h.List)
		warehouse.GET("/items/:sku", h.GetBySKU)
		warehouse.GET("/items/:sku/history", h.History)
	}
}

// historyQuery represents pagination parameters for the stock history endpoint
type historyQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List godoc
// @ID           listWarehouseItems
// @Summary      List warehouse ledger entries
// @Description  Retrieve a paginated list of warehouse ledger entries with optional filtering
// @Tags         warehouse
// @Produce      json
// @Param        search query string false "Search term (SKU, name)"
// @Param        category query string false "Category"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(sku)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]warehouseapp.WarehouseItemResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /warehouse/items [get]
func (h *WarehouseHandler) List(c *gin.Context) {
	var filter warehouseapp.WarehouseItemListFilter
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

	items, total, err := h.warehouseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetBySKU godoc
// @ID           getWarehouseItemBySku
// @Summary      Get a warehouse ledger entry by SKU
// @Tags         warehouse
// @Produce      json
// @Param        sku path string true "SKU"
// @Success      200 {object} APIResponse[warehouseapp.WarehouseItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /warehouse/items/{sku} [get]
func (h *WarehouseHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	item, err := h.warehouseService.GetBySKU(c.Request.Context(), sku)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// History godoc
// @ID           getWarehouseItemHistory
// @Summary      Get the stock history of a SKU
// @Description  Retrieve the append-only stock history of one SKU, newest first
// @Tags         warehouse
// @Produce      json
// @Param        sku path string true "SKU"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]warehouseapp.StockHistoryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /warehouse/items/{sku}/history [get]
func (h *WarehouseHandler) History(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	var query historyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	entries, err := h.warehouseService.History(c.Request.Context(), sku, query.Page, query.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}
