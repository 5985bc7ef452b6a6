package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/landedcost/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_ProcessesOnce(t *testing.T) {
	inner := new(MockEventHandler)
	event := receivedEvent(t)
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())

	for range 3 {
		require.NoError(t, h.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	stats := h.Metrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(2), stats.EventsDuplicate)
}

func TestIdempotentHandler_KeysArePrefixed(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := createdEvent(t)

	store.On("MarkProcessed", mock.Anything, "event:"+event.EventID().String(), 24*time.Hour).Return(true, nil)
	inner.On("Handle", mock.Anything, event).Return(nil)

	h := NewIdempotentHandler(inner, store, nil)
	require.NoError(t, h.Handle(context.Background(), event))

	store.AssertExpectations(t)
}

func TestIdempotentHandler_HandlerErrorKeepsKey(t *testing.T) {
	store := newStore(t)
	inner := new(MockEventHandler)
	event := receivedEvent(t)
	handlerErr := errors.New("recorder unavailable")
	inner.On("Handle", mock.Anything, event).Return(handlerErr).Once()

	h := NewIdempotentHandler(inner, store, zap.NewNop())

	assert.ErrorIs(t, h.Handle(context.Background(), event), handlerErr)
	assert.NoError(t, h.Handle(context.Background(), event))

	processed, err := store.IsProcessed(context.Background(), "event:"+event.EventID().String())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, int64(1), h.Metrics().EventsFailed.Load())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := receivedEvent(t)

	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis timeout"))
	inner.On("Handle", mock.Anything, event).Return(nil)

	h := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), event))
	inner.AssertNumberOfCalls(t, "Handle", 1)
	assert.Equal(t, int64(1), h.Metrics().EventsProcessed.Load())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := receivedEvent(t)
	inner.On("Handle", mock.Anything, event).Return(nil).Twice()

	h := NewIdempotentHandler(inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_CustomTTL(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := receivedEvent(t)

	store.On("MarkProcessed", mock.Anything, mock.Anything, 90*time.Minute).Return(true, nil)
	inner.On("Handle", mock.Anything, event).Return(nil)

	h := NewIdempotentHandler(inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: 90 * time.Minute}),
	)
	require.NoError(t, h.Handle(context.Background(), event))

	store.AssertExpectations(t)
}

func TestIdempotentHandler_DelegatesEventTypes(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{importation.EventTypeShipmentReceived})

	h := NewIdempotentHandler(inner, nil, nil)

	assert.Equal(t, []string{importation.EventTypeShipmentReceived}, h.EventTypes())
	assert.Same(t, inner, h.Unwrap())
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := newStore(t)
	metrics := &IdempotencyMetrics{}
	event := receivedEvent(t)

	first := new(MockEventHandler)
	first.On("Handle", mock.Anything, event).Return(nil)
	second := new(MockEventHandler)

	// both decorators share the store, so the second sees a duplicate
	a := NewIdempotentHandler(first, store, zap.NewNop(), WithIdempotencyMetrics(metrics))
	b := NewIdempotentHandler(second, store, zap.NewNop(), WithIdempotencyMetrics(metrics))

	require.NoError(t, a.Handle(context.Background(), event))
	require.NoError(t, b.Handle(context.Background(), event))

	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, metrics.Stats())
	second.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestIdempotentHandler_ConcurrentDelivery(t *testing.T) {
	inner := new(MockEventHandler)
	event := receivedEvent(t)
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(context.Background(), event)
		}()
	}
	wg.Wait()

	inner.AssertExpectations(t)
	assert.Equal(t, int64(19), h.Metrics().EventsDuplicate.Load())
}
