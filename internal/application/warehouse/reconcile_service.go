package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/warehouse"
)

// RunState describes the lifecycle of one reconciliation run
type RunState string

const (
	RunStateRunning          RunState = "RUNNING"
	RunStateAwaitingDecision RunState = "AWAITING_DECISION"
	RunStateCompleted        RunState = "COMPLETED"
	RunStateFailed           RunState = "FAILED"
	RunStateCancelled        RunState = "CANCELLED"
)

// finishedRunRetention is how long finished runs stay queryable through
// GetRun before they are dropped from the registry.
const finishedRunRetention = 24 * time.Hour

// watermarkSaveAttempts bounds the optimistic-lock retries when persisting
// the watermarks of a finished run.
const watermarkSaveAttempts = 3

// reconcileRun tracks one background reconciliation of one order
type reconcileRun struct {
	orderID     uuid.UUID
	orderNumber string
	state       RunState
	startedAt   time.Time
	finishedAt  *time.Time
	result      *warehouse.ReconcileResult
	err         error
	cancel      context.CancelFunc
}

// pendingDecision is a price conflict parked until someone answers it
type pendingDecision struct {
	id          uuid.UUID
	conflict    warehouse.PriceConflict
	requestedAt time.Time
	answer      chan warehouse.PriceDecision
}

// ReconcileService runs inventory reconciliations in the background and
// holds price conflicts open until a decision arrives over the API. It is
// the DecisionRequester of the domain reconciler: a conflict suspends the
// run goroutine on a channel that Resolve feeds.
type ReconcileService struct {
	orders     order.SupplierOrderRepository
	reconciler *warehouse.Reconciler
	logger     *zap.Logger

	mu      sync.RWMutex
	runs    map[uuid.UUID]*reconcileRun
	pending map[uuid.UUID]*pendingDecision
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	orders order.SupplierOrderRepository,
	items warehouse.WarehouseItemRepository,
	history warehouse.StockHistoryRepository,
	logger *zap.Logger,
) *ReconcileService {
	s := &ReconcileService{
		orders:  orders,
		logger:  logger,
		runs:    make(map[uuid.UUID]*reconcileRun),
		pending: make(map[uuid.UUID]*pendingDecision),
	}
	s.reconciler = warehouse.NewReconciler(items, history, s, logger)
	return s
}

// SetEventPublisher sets the publisher for ledger events
func (s *ReconcileService) SetEventPublisher(publisher shared.EventPublisher) {
	s.reconciler.SetEventPublisher(publisher)
}

// Start launches a reconciliation run for one order. Only one run per
// order can be active; a second Start while the first is live is rejected.
func (s *ReconcileService) Start(ctx context.Context, orderID uuid.UUID) (*ReconcileRunResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.HasReceivedAnyGoods() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order %s has no received goods to reconcile", o.OrderNumber))
	}

	s.mu.Lock()
	if existing, ok := s.runs[orderID]; ok && existing.isActive() {
		s.mu.Unlock()
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Reconciliation for order %s is already running", o.OrderNumber))
	}
	s.evictFinishedRunsLocked(time.Now())

	// The run outlives the request; it is cancelled through Cancel, not by
	// the caller disconnecting.
	runCtx, cancel := context.WithCancel(context.Background())
	run := &reconcileRun{
		orderID:     orderID,
		orderNumber: o.OrderNumber,
		state:       RunStateRunning,
		startedAt:   time.Now(),
		cancel:      cancel,
	}
	s.runs[orderID] = run
	// Snapshot the response before the run goroutine can touch the run
	response := s.toRunResponse(run)
	s.mu.Unlock()

	go s.execute(runCtx, run, o)

	return &response, nil
}

// evictFinishedRunsLocked drops finished runs older than the retention
// window. The caller must hold s.mu for writing.
func (s *ReconcileService) evictFinishedRunsLocked(now time.Time) {
	for id, run := range s.runs {
		if run.finishedAt != nil && now.Sub(*run.finishedAt) > finishedRunRetention {
			delete(s.runs, id)
		}
	}
}

func (r *reconcileRun) isActive() bool {
	return r.state == RunStateRunning || r.state == RunStateAwaitingDecision
}

// execute drives one run to completion and persists the order watermarks,
// also after a failure: merges committed before the error must not be
// replayed on the next run.
func (s *ReconcileService) execute(ctx context.Context, run *reconcileRun, o *order.SupplierOrder) {
	result, err := s.reconciler.Reconcile(ctx, o)

	if saveErr := s.persistWatermarks(context.Background(), o); saveErr != nil {
		s.logger.Error("failed to persist reconciliation watermarks",
			zap.String("order_number", o.OrderNumber),
			zap.Error(saveErr),
		)
		if err == nil {
			err = saveErr
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	run.finishedAt = &now
	run.result = result
	run.err = err

	switch {
	case err == nil:
		run.state = RunStateCompleted
	case ctx.Err() != nil:
		run.state = RunStateCancelled
	default:
		run.state = RunStateFailed
		s.logger.Error("inventory reconciliation failed",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}

// persistWatermarks replays the run's watermark advances onto a fresh copy
// of the order and saves it under the optimistic lock. The run may have
// been parked on a price decision for a long time; goods received in the
// meantime live on the persisted order, not on the run's snapshot, and
// must survive the save.
func (s *ReconcileService) persistWatermarks(ctx context.Context, snapshot *order.SupplierOrder) error {
	var lastErr error
	for attempt := 0; attempt < watermarkSaveAttempts; attempt++ {
		o, err := s.orders.FindByID(ctx, snapshot.GetID())
		if err != nil {
			return err
		}

		advanced := false
		for _, r := range snapshot.ReceivedItems {
			if r.ReconciledQuantity.IsZero() {
				continue
			}
			raised, err := o.AdvanceReconciledTo(r.SKU, r.ReconciledQuantity)
			if err != nil {
				return err
			}
			advanced = advanced || raised
		}
		if !advanced {
			return nil
		}

		if err := s.orders.SaveWithLock(ctx, o); err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "CONCURRENT_MODIFICATION" {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

// RequestPriceDecision parks the conflict until Resolve answers it or the
// run is cancelled. It is called from the run goroutine while the domain
// reconciler holds the ledger lock.
func (s *ReconcileService) RequestPriceDecision(ctx context.Context, conflict warehouse.PriceConflict) (warehouse.PriceDecision, error) {
	p := &pendingDecision{
		id:          uuid.New(),
		conflict:    conflict,
		requestedAt: time.Now(),
		answer:      make(chan warehouse.PriceDecision, 1),
	}

	s.mu.Lock()
	s.pending[p.id] = p
	if run, ok := s.runs[conflict.OrderID]; ok {
		run.state = RunStateAwaitingDecision
	}
	s.mu.Unlock()

	s.logger.Info("price conflict awaiting decision",
		zap.String("decision_id", p.id.String()),
		zap.String("order_number", conflict.OrderNumber),
		zap.String("sku", conflict.SKU),
	)

	defer func() {
		s.mu.Lock()
		delete(s.pending, p.id)
		if run, ok := s.runs[conflict.OrderID]; ok && run.state == RunStateAwaitingDecision {
			run.state = RunStateRunning
		}
		s.mu.Unlock()
	}()

	select {
	case decision := <-p.answer:
		return decision, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolve answers one pending price conflict and resumes its run
func (s *ReconcileService) Resolve(decisionID uuid.UUID, req ResolveDecisionRequest) error {
	decision := warehouse.PriceDecision(req.Decision)
	if !decision.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown price decision %q", req.Decision))
	}

	s.mu.RLock()
	p, ok := s.pending[decisionID]
	s.mu.RUnlock()
	if !ok {
		return shared.NewDomainError("NOT_FOUND", "No pending decision with this id")
	}

	select {
	case p.answer <- decision:
		return nil
	default:
		return shared.NewDomainError("ALREADY_EXISTS", "Decision has already been answered")
	}
}

// ListPending lists all price conflicts waiting for an answer
func (s *ReconcileService) ListPending() []PendingDecisionResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	responses := make([]PendingDecisionResponse, 0, len(s.pending))
	for _, p := range s.pending {
		responses = append(responses, PendingDecisionResponse{
			ID:            p.id,
			OrderID:       p.conflict.OrderID,
			OrderNumber:   p.conflict.OrderNumber,
			SKU:           p.conflict.SKU,
			ItemName:      p.conflict.ItemName,
			CurrentPrice:  p.conflict.CurrentPrice,
			IncomingPrice: p.conflict.IncomingPrice,
			Quantity:      p.conflict.Quantity,
			RequestedAt:   p.requestedAt,
		})
	}
	return responses
}

// GetRun reports the state of the last reconciliation run of one order
func (s *ReconcileService) GetRun(orderID uuid.UUID) (*ReconcileRunResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[orderID]
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "No reconciliation run for this order")
	}
	response := s.toRunResponse(run)
	return &response, nil
}

// Cancel aborts an active run. SKUs merged so far stay in the ledger.
func (s *ReconcileService) Cancel(orderID uuid.UUID) error {
	s.mu.RLock()
	run, ok := s.runs[orderID]
	s.mu.RUnlock()

	if !ok {
		return shared.NewDomainError("NOT_FOUND", "No reconciliation run for this order")
	}
	if !run.isActive() {
		return shared.NewDomainError("INVALID_STATE", "Reconciliation run is not active")
	}

	run.cancel()
	return nil
}

// toRunResponse must be called with at least a read lock held
func (s *ReconcileService) toRunResponse(run *reconcileRun) ReconcileRunResponse {
	response := ReconcileRunResponse{
		OrderID:     run.orderID,
		OrderNumber: run.orderNumber,
		State:       string(run.state),
		StartedAt:   run.startedAt,
		FinishedAt:  run.finishedAt,
		Result:      run.result,
	}
	if run.err != nil {
		response.Error = run.err.Error()
	}
	return response
}
