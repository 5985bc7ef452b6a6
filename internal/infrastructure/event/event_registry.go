package event

import (
	"fmt"
	"slices"

	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ShipmentEventTypes lists every event the shipment aggregate raises
func ShipmentEventTypes() []string {
	return []string{
		importation.EventTypeShipmentCreated,
		importation.EventTypeShipmentStatusChanged,
		importation.EventTypeShipmentItemsReplaced,
		importation.EventTypeShipmentReceived,
		importation.EventTypeShipmentReceiptReversed,
	}
}

// IsKnownEventType reports whether eventType is raised by any aggregate
func IsKnownEventType(eventType string) bool {
	return slices.Contains(ShipmentEventTypes(), eventType)
}

// SubscribeIdempotent wraps each handler with the idempotency decorator and
// subscribes it to the bus. Handlers declaring an unknown event type are rejected
// before anything is subscribed.
func SubscribeIdempotent(
	bus shared.EventSubscriber,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	handlers []shared.EventHandler,
	opts ...IdempotentHandlerOption,
) ([]*IdempotentHandler, error) {
	for _, h := range handlers {
		for _, t := range h.EventTypes() {
			if !IsKnownEventType(t) {
				return nil, fmt.Errorf("handler %T subscribes to unknown event type %q", h, t)
			}
		}
	}

	wrapped := make([]*IdempotentHandler, 0, len(handlers))
	for _, h := range handlers {
		ih := NewIdempotentHandler(h, store, logger, opts...)
		bus.Subscribe(ih)
		wrapped = append(wrapped, ih)
	}
	return wrapped, nil
}
