package handler

import (
	warehouseapp "github.com/backoffice/backend/internal/application/warehouse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReconciliationHandler handles inventory reconciliation API endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconcileService *warehouseapp.ReconcileService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconcileService *warehouseapp.ReconcileService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconcileService: reconcileService,
	}
}

// RegisterRoutes registers reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reconciliation := rg.Group("/reconciliation")
	{
		reconciliation.POST("/orders/:id", h.Start)
		reconciliation.GET("/orders/:id", h.GetRun)
		reconciliation.DELETE("/orders/:id", h.Cancel)
		reconciliation.GET("/decisions", h.ListPending)
		reconciliation.POST("/decisions/:id", h.Resolve)
	}
}

// Start godoc
// @ID           startReconciliation
// @Summary      Start a reconciliation run for an order
// @Description  Launch a background run that merges the order's received goods into the warehouse ledger
// @Tags         reconciliation
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      202 {object} APIResponse[warehouseapp.ReconcileRunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /reconciliation/orders/{id} [post]
func (h *ReconciliationHandler) Start(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	run, err := h.reconcileService.Start(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Accepted(c, run)
}

// GetRun godoc
// @ID           getReconciliationRun
// @Summary      Get the state of the last reconciliation run of an order
// @Tags         reconciliation
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[warehouseapp.ReconcileRunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reconciliation/orders/{id} [get]
func (h *ReconciliationHandler) GetRun(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	run, err := h.reconcileService.GetRun(orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// Cancel godoc
// @ID           cancelReconciliation
// @Summary      Cancel an active reconciliation run
// @Description  Abort a running reconciliation; SKUs merged so far stay in the ledger
// @Tags         reconciliation
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /reconciliation/orders/{id} [delete]
func (h *ReconciliationHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.reconcileService.Cancel(orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListPending godoc
// @ID           listPendingDecisions
// @Summary      List price conflicts waiting for a decision
// @Tags         reconciliation
// @Produce      json
// @Success      200 {object} APIResponse[[]warehouseapp.PendingDecisionResponse]
// @Router       /reconciliation/decisions [get]
func (h *ReconciliationHandler) ListPending(c *gin.Context) {
	h.Success(c, h.reconcileService.ListPending())
}

// Resolve godoc
// @ID           resolvePendingDecision
// @Summary      Answer a pending price conflict
// @Description  Resolve a price conflict with UPDATE_PRICE, KEEP_PRICE or IGNORE and resume its run
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        id path string true "Decision ID" format(uuid)
// @Param        request body warehouseapp.ResolveDecisionRequest true "Decision"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /reconciliation/decisions/{id} [post]
func (h *ReconciliationHandler) Resolve(c *gin.Context) {
	decisionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid decision ID format")
		return
	}

	var req warehouseapp.ResolveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.reconcileService.Resolve(decisionID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
