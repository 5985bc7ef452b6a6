package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/landedcost/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewCostingMetrics_NilMeter(t *testing.T) {
	cm, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, cm)
	assert.Equal(t, "NewCostingMetrics: meter cannot be nil", err.Error())
}

func TestCostingMetrics_NoopMeter(t *testing.T) {
	cm, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	cm.RecordShipmentCreated(ctx, 0)
	cm.RecordShipmentReceived(ctx, 3, decimal.NewFromInt(1068))
	cm.RecordShipmentReversed(ctx, 3)
	cm.RecordStockValuation(ctx, decimal.NewFromInt(12000), 4)
}

func TestCostingMetrics_RecordsReceiptsAndReversals(t *testing.T) {
	reader, provider := newManualMeter(t)
	cm, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	cm.RecordShipmentCreated(ctx, 2)
	cm.RecordShipmentReceived(ctx, 2, decimal.RequireFromString("1068.00"))
	cm.RecordShipmentReceived(ctx, 1, decimal.RequireFromString("250.50"))
	cm.RecordShipmentReversed(ctx, 2)

	metrics := collect(t, reader)

	assert.Equal(t, int64(1), sumInt64(t, metrics["landed_shipment_created_total"]))
	assert.Equal(t, int64(2), sumInt64(t, metrics["landed_shipment_received_total"]))
	assert.Equal(t, int64(1), sumInt64(t, metrics["landed_shipment_reversed_total"]))
	assert.Equal(t, int64(5), sumInt64(t, metrics["landed_stock_movement_total"]))

	hist, ok := metrics["landed_shipment_cost_local"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 1318.5, hist.DataPoints[0].Sum, 0.0001)
}

type fakeValuationProvider struct {
	value decimal.Decimal
	count int64
	err   error
	calls chan struct{}
}

func (f *fakeValuationProvider) GetStockValueLocal(context.Context) (decimal.Decimal, error) {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return f.value, f.err
}

func (f *fakeValuationProvider) GetProductsInStock(context.Context) (int64, error) {
	return f.count, nil
}

func TestCostingMetrics_PeriodicCollection(t *testing.T) {
	reader, provider := newManualMeter(t)
	valuation := &fakeValuationProvider{
		value: decimal.RequireFromString("18000.50"),
		count: 3,
		calls: make(chan struct{}, 1),
	}
	cm, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{
		Meter:             provider.Meter("test"),
		Logger:            zap.NewNop(),
		ValuationProvider: valuation,
	})
	require.NoError(t, err)

	cm.StartPeriodicCollection(context.Background(), time.Hour)
	defer cm.Stop()

	select {
	case <-valuation.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("valuation provider was not queried")
	}

	require.Eventually(t, func() bool {
		metrics := collect(t, reader)
		gauge, ok := metrics["landed_products_in_stock"].Data.(metricdata.Gauge[int64])
		return ok && len(gauge.DataPoints) == 1 && gauge.DataPoints[0].Value == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCostingMetrics_StopIsIdempotent(t *testing.T) {
	cm, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{
		Meter:             noop.NewMeterProvider().Meter("test"),
		ValuationProvider: &fakeValuationProvider{err: errors.New("db down"), calls: make(chan struct{}, 1)},
	})
	require.NoError(t, err)

	cm.StartPeriodicCollection(context.Background(), time.Hour)
	cm.Stop()
	cm.Stop()
}
