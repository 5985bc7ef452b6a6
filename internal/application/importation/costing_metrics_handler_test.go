package importation

import (
	"context"
	"testing"

	"github.com/landedcost/backend/internal/domain/importation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func costedShipment(t *testing.T) *importation.Shipment {
	t.Helper()
	sh, err := importation.NewShipment(importation.ShipmentHeader{
		Reference:    "IMP-900",
		ExchangeRate: dec("2"),
	}, []importation.ItemDraft{
		{Description: "A", Quantity: 2, UnitPriceForeign: dec("10")},
		{Description: "B", Quantity: 1, UnitPriceForeign: dec("5")},
	})
	require.NoError(t, err)
	return sh
}

func TestCostingMetricsHandler_EventTypes(t *testing.T) {
	h := NewCostingMetricsHandler(new(MockCostingRecorder), nil)
	assert.ElementsMatch(t, []string{
		importation.EventTypeShipmentCreated,
		importation.EventTypeShipmentReceived,
		importation.EventTypeShipmentReceiptReversed,
	}, h.EventTypes())
}

func TestCostingMetricsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	sh := costedShipment(t)

	t.Run("created", func(t *testing.T) {
		recorder := new(MockCostingRecorder)
		recorder.On("RecordShipmentCreated", ctx, 2).Once()

		err := NewCostingMetricsHandler(recorder, nil).Handle(ctx, importation.NewShipmentCreatedEvent(sh))

		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})

	t.Run("received", func(t *testing.T) {
		recorder := new(MockCostingRecorder)
		recorder.On("RecordShipmentReceived", ctx, 2, mock.MatchedBy(func(total decimal.Decimal) bool {
			return total.Equal(dec("50"))
		})).Once()

		err := NewCostingMetricsHandler(recorder, nil).Handle(ctx, importation.NewShipmentReceivedEvent(sh, 2, sh.UpdatedAt))

		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})

	t.Run("reversed", func(t *testing.T) {
		recorder := new(MockCostingRecorder)
		recorder.On("RecordShipmentReversed", ctx, 1).Once()

		err := NewCostingMetricsHandler(recorder, nil).Handle(ctx, importation.NewShipmentReceiptReversedEvent(sh, 1, sh.UpdatedAt))

		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})

	t.Run("unexpected event", func(t *testing.T) {
		recorder := new(MockCostingRecorder)
		t2, err := sh.ChangeStatus(importation.StatusCustoms, sh.UpdatedAt)
		require.NoError(t, err)

		err = NewCostingMetricsHandler(recorder, nil).Handle(ctx, importation.NewShipmentStatusChangedEvent(sh, t2))

		assert.Error(t, err)
		recorder.AssertNotCalled(t, "RecordShipmentCreated", mock.Anything, mock.Anything)
	})
}
