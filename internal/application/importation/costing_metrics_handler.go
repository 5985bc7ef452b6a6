package importation

import (
	"context"
	"fmt"

	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/landedcost/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CostingRecorder records costing metrics
type CostingRecorder interface {
	RecordShipmentCreated(ctx context.Context, items int)
	RecordShipmentReceived(ctx context.Context, movements int, totalLocalCost decimal.Decimal)
	RecordShipmentReversed(ctx context.Context, movements int)
}

// CostingMetricsHandler turns shipment events into costing metrics
type CostingMetricsHandler struct {
	recorder CostingRecorder
	logger   *zap.Logger
}

// NewCostingMetricsHandler creates a new CostingMetricsHandler
func NewCostingMetricsHandler(recorder CostingRecorder, logger *zap.Logger) *CostingMetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostingMetricsHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CostingMetricsHandler) EventTypes() []string {
	return []string{
		importation.EventTypeShipmentCreated,
		importation.EventTypeShipmentReceived,
		importation.EventTypeShipmentReceiptReversed,
	}
}

// Handle records the metric matching the event
func (h *CostingMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *importation.ShipmentCreatedEvent:
		h.recorder.RecordShipmentCreated(ctx, e.ItemCount)
	case *importation.ShipmentReceivedEvent:
		h.recorder.RecordShipmentReceived(ctx, e.Movements, e.TotalLocalCost)
		h.logger.Debug("recorded shipment receipt",
			zap.String("shipment_id", e.ShipmentID.String()),
			zap.Int("movements", e.Movements),
		)
	case *importation.ShipmentReceiptReversedEvent:
		h.recorder.RecordShipmentReversed(ctx, e.Movements)
		h.logger.Debug("recorded shipment reversal",
			zap.String("shipment_id", e.ShipmentID.String()),
			zap.Int("movements", e.Movements),
		)
	default:
		return fmt.Errorf("costing metrics handler: unexpected event type %T", event)
	}
	return nil
}

var _ shared.EventHandler = (*CostingMetricsHandler)(nil)
