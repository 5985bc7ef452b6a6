package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestShipment(t *testing.T) *importation.Shipment {
	t.Helper()
	s, err := importation.NewShipment(importation.ShipmentHeader{
		Reference:      "PO-2024-001",
		Currency:       "USD",
		ExchangeRate:   decimal.NewFromInt(5),
		FreightForeign: decimal.NewFromInt(100),
	}, []importation.ItemDraft{
		{Description: "Valve", Quantity: 10, UnitPriceForeign: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)
	return s
}

func receivedEvent(t *testing.T) *importation.ShipmentReceivedEvent {
	return importation.NewShipmentReceivedEvent(newTestShipment(t), 1, time.Now())
}

func createdEvent(t *testing.T) *importation.ShipmentCreatedEvent {
	return importation.NewShipmentCreatedEvent(newTestShipment(t))
}

// recordingHandler collects the events it receives
type recordingHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

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

func TestInMemoryEventBus_PublishRoutesByType(t *testing.T) {
	bus := startedBus(t, zap.NewNop())

	receipts := newRecordingHandler(importation.EventTypeShipmentReceived)
	creations := newRecordingHandler(importation.EventTypeShipmentCreated)
	bus.Subscribe(receipts)
	bus.Subscribe(creations)

	received := receivedEvent(t)
	require.NoError(t, bus.Publish(context.Background(), received, createdEvent(t), createdEvent(t)))

	assert.Equal(t, 1, receipts.count())
	assert.Same(t, received, receipts.handled[0])
	assert.Equal(t, 2, creations.count())
	assert.Equal(t, int64(3), bus.Stats().Published)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := startedBus(t, zap.NewNop())

	h := newRecordingHandler(importation.EventTypeShipmentCreated)
	bus.Subscribe(h, importation.EventTypeShipmentReceived)

	require.NoError(t, bus.Publish(context.Background(), createdEvent(t), receivedEvent(t)))

	require.Equal(t, 1, h.count())
	assert.Equal(t, importation.EventTypeShipmentReceived, h.handled[0].EventType())
}

func TestInMemoryEventBus_WildcardSeesEverything(t *testing.T) {
	bus := startedBus(t, zap.NewNop())

	all := newRecordingHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), createdEvent(t), receivedEvent(t)))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := startedBus(t, zap.New(core))

	failing := newRecordingHandler(importation.EventTypeShipmentReceived)
	failing.err = errors.New("metrics backend down")
	panicking := newRecordingHandler(importation.EventTypeShipmentReceived)
	panicking.panicWith = "boom"
	healthy := newRecordingHandler(importation.EventTypeShipmentReceived)

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), receivedEvent(t))

	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.Stats().Failed)
	assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t, zap.NewNop())

	h := newRecordingHandler(importation.EventTypeShipmentCreated)
	bus.Subscribe(h)
	_ = bus.Publish(context.Background(), createdEvent(t))

	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), createdEvent(t))

	assert.Equal(t, 1, h.count())
	assert.Zero(t, bus.Stats().Handlers)
}

func TestInMemoryEventBus_DropsWhenNotRunning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	h := newRecordingHandler(importation.EventTypeShipmentCreated)
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), createdEvent(t)))
	assert.Zero(t, h.count())
	assert.Equal(t, 1, logs.FilterMessage("event bus not running, dropping events").Len())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := startedBus(t, zap.NewNop())

	h := newRecordingHandler(importation.EventTypeShipmentCreated)
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(context.Background(), createdEvent(t)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	require.NoError(t, bus.Publish(context.Background(), createdEvent(t)))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StopHonorsContext(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	bus.inflight.Add(1)
	defer bus.inflight.Done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Stop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func toHandlers(hs ...*recordingHandler) []shared.EventHandler {
	out := make([]shared.EventHandler, len(hs))
	for i, h := range hs {
		out[i] = h
	}
	return out
}
