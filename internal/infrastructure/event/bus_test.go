package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/order"
	"github.com/backoffice/backend/internal/domain/shared"
)

// recordingHandler collects the events it receives
type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newOrderEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	o, err := order.NewSupplierOrder("ORD-20260110-0930", "Acme Supplies", time.Now())
	require.NoError(t, err)
	return order.NewOrderCreatedEvent(o)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("typed handler receives only its type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		created := &recordingHandler{types: []string{order.EventTypeOrderCreated}}
		paid := &recordingHandler{types: []string{order.EventTypeOrderPaid}}
		bus.Subscribe(created)
		bus.Subscribe(paid)

		require.NoError(t, bus.Publish(context.Background(), newOrderEvent(t)))

		assert.Len(t, created.received, 1)
		assert.Empty(t, paid.received)
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		all := &recordingHandler{}
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(context.Background(), newOrderEvent(t), newOrderEvent(t)))

		assert.Len(t, all.received, 2)
	})

	t.Run("handler error does not fail publish or other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{order.EventTypeOrderCreated}, err: errors.New("handler broken")}
		healthy := &recordingHandler{types: []string{order.EventTypeOrderCreated}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newOrderEvent(t)))
		assert.Len(t, healthy.received, 1)
	})

	t.Run("panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{panics: true})

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), newOrderEvent(t))
		})
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{order.EventTypeOrderCreated}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newOrderEvent(t)))
	require.Len(t, handler.received, 1)

	bus.Unsubscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), newOrderEvent(t)))
	assert.Len(t, handler.received, 1)
}

func TestLoggingHandler(t *testing.T) {
	handler := NewLoggingHandler(zap.NewNop())
	assert.Empty(t, handler.EventTypes())
	assert.NoError(t, handler.Handle(context.Background(), newOrderEvent(t)))
}
