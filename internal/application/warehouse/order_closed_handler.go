package warehouse

import (
	"context"

	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
)

// OrderClosedHandler starts a reconciliation run whenever an order is
// closed out, so received goods flow into the warehouse ledger without a
// separate manual call. A run already in flight for the order, or an order
// closed with nothing received, is logged and skipped.
type OrderClosedHandler struct {
	reconcileService *ReconcileService
	logger           *zap.Logger
}

// NewOrderClosedHandler creates a new OrderClosedHandler
func NewOrderClosedHandler(reconcileService *ReconcileService, logger *zap.Logger) *OrderClosedHandler {
	return &OrderClosedHandler{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// Handle starts reconciliation for the closed order
func (h *OrderClosedHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if _, err := h.reconcileService.Start(ctx, e.AggregateID()); err != nil {
		h.logger.Warn("reconciliation not started for closed order",
			zap.String("order_id", e.AggregateID().String()),
			zap.Error(err),
		)
	}
	return nil
}

// EventTypes subscribes the handler to order close-outs only
func (h *OrderClosedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderClosed}
}

var _ shared.EventHandler = (*OrderClosedHandler)(nil)
