package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceDecision is the outcome of a price-conflict review
type PriceDecision string

const (
	// DecisionUpdatePrice merges the quantity and adopts the incoming order price
	DecisionUpdatePrice PriceDecision = "UPDATE_PRICE"
	// DecisionKeepPrice merges the quantity and keeps the ledger price
	DecisionKeepPrice PriceDecision = "KEEP_PRICE"
	// DecisionIgnore leaves the ledger entry untouched
	DecisionIgnore PriceDecision = "IGNORE"
)

// IsValid checks if the decision is a valid PriceDecision
func (d PriceDecision) IsValid() bool {
	switch d {
	case DecisionUpdatePrice, DecisionKeepPrice, DecisionIgnore:
		return true
	}
	return false
}

// PriceConflict describes a mismatch between the ledger price of a SKU and
// the price on an incoming order line
type PriceConflict struct {
	SKU           string          `json:"sku"`
	ItemName      string          `json:"item_name"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	IncomingPrice decimal.Decimal `json:"incoming_price"`
	Quantity      decimal.Decimal `json:"quantity"`
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
}

// DecisionRequester is the boundary to whoever resolves price conflicts.
// RequestPriceDecision blocks until a decision arrives or ctx is cancelled;
// the reconciliation run is suspended for its duration.
type DecisionRequester interface {
	RequestPriceDecision(ctx context.Context, conflict PriceConflict) (PriceDecision, error)
}

// DecisionRequesterFunc adapts a function to the DecisionRequester interface
type DecisionRequesterFunc func(ctx context.Context, conflict PriceConflict) (PriceDecision, error)

// RequestPriceDecision calls f
func (f DecisionRequesterFunc) RequestPriceDecision(ctx context.Context, conflict PriceConflict) (PriceDecision, error) {
	return f(ctx, conflict)
}

// ReconcileResult summarizes one reconciliation run
type ReconcileResult struct {
	Merged            []string `json:"merged"`             // SKUs folded into the ledger
	Ignored           []string `json:"ignored"`            // SKUs left out by an IGNORE decision
	Skipped           []string `json:"skipped"`            // SKUs not matching any order line
	ConflictsResolved int      `json:"conflicts_resolved"` // Price conflicts that required a decision
}

// Reconciler merges received supplier order quantities into the warehouse
// ledger, one SKU at a time. The ledger is shared across all orders, so runs
// are serialized behind a single lock; within a run each SKU commits
// independently and a failure or cancellation abandons only the queue tail.
type Reconciler struct {
	items          WarehouseItemRepository
	history        StockHistoryRepository
	decisions      DecisionRequester
	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	mu sync.Mutex
}

// NewReconciler creates a new Reconciler
func NewReconciler(items WarehouseItemRepository, history StockHistoryRepository, decisions DecisionRequester, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		items:     items,
		history:   history,
		decisions: decisions,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for ledger events
func (r *Reconciler) SetEventPublisher(publisher shared.EventPublisher) {
	r.eventPublisher = publisher
}

// Reconcile folds the order's unreconciled received quantities into the
// ledger. The watermark on each received item advances after its merge
// commits, so re-running over unchanged receipts is a no-op. The caller is
// responsible for persisting the order afterwards, also when an error is
// returned: merges applied before the error stay committed.
func (r *Reconciler) Reconcile(ctx context.Context, o *order.SupplierOrder) (*ReconcileResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &ReconcileResult{
		Merged:  make([]string, 0),
		Ignored: make([]string, 0),
		Skipped: make([]string, 0),
	}

	items := o.UnreconciledItems()
	if len(items) == 0 {
		return result, nil
	}

	r.logger.Info("starting inventory reconciliation",
		zap.String("order_number", o.OrderNumber),
		zap.Int("pending_skus", len(items)),
	)

	for _, received := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		delta := received.UnreconciledQuantity()
		product := o.Product(received.SKU)
		if product == nil {
			// A received SKU without an order line should not happen; one bad
			// record must not abort the rest of the batch.
			r.logger.Warn("received SKU has no matching order line, skipping",
				zap.String("order_number", o.OrderNumber),
				zap.String("sku", received.SKU),
			)
			result.Skipped = append(result.Skipped, received.SKU)
			continue
		}

		if err := r.mergeSKU(ctx, o, product, received.SKU, delta, result); err != nil {
			return result, err
		}

		if err := o.MarkReconciled(received.SKU, delta); err != nil {
			return result, err
		}
	}

	r.logger.Info("inventory reconciliation finished",
		zap.String("order_number", o.OrderNumber),
		zap.Int("merged", len(result.Merged)),
		zap.Int("ignored", len(result.Ignored)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("conflicts_resolved", result.ConflictsResolved),
	)

	return result, nil
}

// mergeSKU folds one received quantity into the ledger entry for its SKU
func (r *Reconciler) mergeSKU(ctx context.Context, o *order.SupplierOrder, product *order.OrderProduct, sku string, delta decimal.Decimal, result *ReconcileResult) error {
	existing, err := r.items.FindBySKU(ctx, sku)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	orderID := o.GetID()
	description := fmt.Sprintf("Received %s x %s from order %s", delta.String(), sku, o.OrderNumber)

	switch {
	case existing != nil && !existing.Price.Equal(product.Price) && product.Price.IsPositive():
		// Price conflict: inventory valuation must not change without a
		// human decision. This is the only branch that suspends.
		conflict := PriceConflict{
			SKU:           sku,
			ItemName:      existing.Name,
			CurrentPrice:  existing.Price,
			IncomingPrice: product.Price,
			Quantity:      delta,
			OrderID:       orderID,
			OrderNumber:   o.OrderNumber,
		}
		decision, err := r.decisions.RequestPriceDecision(ctx, conflict)
		if err != nil {
			return err
		}
		result.ConflictsResolved++
		r.publish(ctx, NewPriceConflictResolvedEvent(existing, conflict, decision))

		switch decision {
		case DecisionUpdatePrice:
			if err := existing.SetPrice(product.Price); err != nil {
				return err
			}
			if err := existing.AddStock(delta); err != nil {
				return err
			}
		case DecisionKeepPrice:
			if err := existing.AddStock(delta); err != nil {
				return err
			}
		case DecisionIgnore:
			result.Ignored = append(result.Ignored, sku)
			return nil
		default:
			return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown price decision %q", decision))
		}

		if err := r.commit(ctx, existing, delta, description, orderID, o.OrderNumber); err != nil {
			return err
		}

	case existing != nil:
		if err := existing.AddStock(delta); err != nil {
			return err
		}
		if product.Price.IsPositive() {
			if err := existing.SetPrice(product.Price); err != nil {
				return err
			}
		}
		if err := r.commit(ctx, existing, delta, description, orderID, o.OrderNumber); err != nil {
			return err
		}

	default:
		item, err := NewWarehouseItem(sku, product.Name, delta, product.Price)
		if err != nil {
			return err
		}
		if err := r.commit(ctx, item, delta, description, orderID, o.OrderNumber); err != nil {
			return err
		}
	}

	result.Merged = append(result.Merged, sku)
	return nil
}

// commit persists a ledger entry and appends the audit record for it
func (r *Reconciler) commit(ctx context.Context, item *WarehouseItem, delta decimal.Decimal, description string, orderID uuid.UUID, orderNumber string) error {
	if err := r.items.Save(ctx, item); err != nil {
		return err
	}
	entry := NewStockHistoryEntry(item, HistoryKindSupplierOrder, description, &orderID, orderNumber)
	if err := r.history.Append(ctx, entry); err != nil {
		return err
	}
	r.publish(ctx, NewStockMergedEvent(item, delta, orderID, orderNumber))
	return nil
}

// publish sends a ledger event when a publisher is wired
func (r *Reconciler) publish(ctx context.Context, event shared.DomainEvent) {
	if r.eventPublisher == nil {
		return
	}
	_ = r.eventPublisher.Publish(ctx, event)
}
