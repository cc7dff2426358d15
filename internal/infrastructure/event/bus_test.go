package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "PurchaseOrder", uuid.New(), uuid.New()),
	}
}

type recordingHandler struct {
	eventTypes []string
	err        error
	panicWith  any
	mu         sync.Mutex
	handled    []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T, logger *zap.Logger) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(logger)
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("routes by event type", func(t *testing.T) {
		bus := startedBus(t, zap.NewNop())
		submitted := &recordingHandler{eventTypes: []string{"PurchaseOrderSubmitted"}}
		paid := &recordingHandler{eventTypes: []string{"PurchaseOrderPaid"}}
		bus.Subscribe(submitted)
		bus.Subscribe(paid)

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("PurchaseOrderSubmitted"),
			newTestEvent("PurchaseOrderSubmitted"),
		))

		assert.Equal(t, 2, submitted.count())
		assert.Zero(t, paid.count())
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := startedBus(t, zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{"PurchaseOrderPaid"}}
		bus.Subscribe(handler, "InvoiceRecorded")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("PurchaseOrderPaid"), newTestEvent("InvoiceRecorded")))

		assert.Equal(t, 1, handler.count())
	})

	t.Run("failing handler does not block the others", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := startedBus(t, zap.New(core))
		failing := &recordingHandler{err: errors.New("history write failed")}
		healthy := &recordingHandler{}
		bus.Subscribe(failing, "PurchaseOrderIssued")
		bus.Subscribe(healthy, "PurchaseOrderIssued")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("PurchaseOrderIssued")))

		assert.Equal(t, 1, healthy.count())
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Event handler failed", logs.All()[0].Message)
	})

	t.Run("panicking handler is contained", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := startedBus(t, zap.New(core))
		bus.Subscribe(&recordingHandler{panicWith: "boom"}, "PurchaseOrderCancelled")
		healthy := &recordingHandler{}
		bus.Subscribe(healthy, "PurchaseOrderCancelled")

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), newTestEvent("PurchaseOrderCancelled"))
		})
		assert.Equal(t, 1, healthy.count())
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("drops events when not running", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler, "PurchaseOrderCreated")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("PurchaseOrderCreated")))
		assert.Zero(t, handler.count())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler, "PurchaseOrderApproved")
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PurchaseOrderApproved")))
	assert.Zero(t, handler.count())
}

func TestInMemoryEventBus_Stop(t *testing.T) {
	t.Run("stops cleanly when idle", func(t *testing.T) {
		bus := startedBus(t, zap.NewNop())
		require.NoError(t, bus.Stop(context.Background()))

		handler := &recordingHandler{}
		bus.Subscribe(handler, "PurchaseOrderPaid")
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("PurchaseOrderPaid")))
		assert.Zero(t, handler.count())
	})

	t.Run("gives up when the context expires", func(t *testing.T) {
		bus := startedBus(t, zap.NewNop())
		release := make(chan struct{})
		entered := make(chan struct{})
		bus.Subscribe(blockingHandler{entered: entered, release: release}, "PurchaseOrderReceived")

		go func() { _ = bus.Publish(context.Background(), newTestEvent("PurchaseOrderReceived")) }()
		<-entered

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := bus.Stop(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		close(release)
	})
}

type blockingHandler struct {
	entered chan struct{}
	release chan struct{}
}

func (h blockingHandler) Handle(context.Context, shared.DomainEvent) error {
	close(h.entered)
	<-h.release
	return nil
}

func (h blockingHandler) EventTypes() []string { return nil }
