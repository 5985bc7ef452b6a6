package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// CostingMetrics tracks shipment receipts, reversals and stock valuation.
type CostingMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	shipmentsCreatedTotal  *Counter
	shipmentsReceivedTotal *Counter
	shipmentsReversedTotal *Counter
	stockMovementsTotal    *Counter

	// Histogram of landed cost per received shipment, in local currency
	landedCost *Histogram

	// Gauge metrics (point-in-time values)
	stockValueLocal *FloatGauge
	productsInStock *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	valuationProvider StockValuationProvider
}

// StockValuationProvider supplies inventory totals for periodic gauge collection.
type StockValuationProvider interface {
	// GetStockValueLocal returns the sum of stock quantity times average local cost
	GetStockValueLocal(ctx context.Context) (decimal.Decimal, error)

	// GetProductsInStock returns how many products have stock above zero
	GetProductsInStock(ctx context.Context) (int64, error)
}

// CostingMetricsConfig holds configuration for costing metrics.
type CostingMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	ValuationProvider StockValuationProvider
}

// LandedCostBuckets are bucket boundaries for shipment landed cost in local currency.
var LandedCostBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}

// NewCostingMetrics creates a new CostingMetrics instance.
func NewCostingMetrics(cfg CostingMetricsConfig) (*CostingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CostingMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		valuationProvider: cfg.ValuationProvider,
	}

	var err error

	cm.shipmentsCreatedTotal, err = NewCounter(
		cfg.Meter,
		"landed_shipment_created_total",
		"Total number of shipments registered",
		"{shipments}",
	)
	if err != nil {
		return nil, err
	}

	cm.shipmentsReceivedTotal, err = NewCounter(
		cfg.Meter,
		"landed_shipment_received_total",
		"Total number of shipments posted to inventory",
		"{shipments}",
	)
	if err != nil {
		return nil, err
	}

	cm.shipmentsReversedTotal, err = NewCounter(
		cfg.Meter,
		"landed_shipment_reversed_total",
		"Total number of shipment receipts reversed",
		"{shipments}",
	)
	if err != nil {
		return nil, err
	}

	cm.stockMovementsTotal, err = NewCounter(
		cfg.Meter,
		"landed_stock_movement_total",
		"Total number of stock ledger rows written by shipments",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	cm.landedCost, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "landed_shipment_cost_local",
		Description: "Landed cost of received shipments in local currency",
		Unit:        "{currency}",
		Boundaries:  LandedCostBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.stockValueLocal, err = NewFloatGauge(
		cfg.Meter,
		"landed_stock_value_local",
		"Current stock valuation at weighted average local cost",
		"{currency}",
	)
	if err != nil {
		return nil, err
	}

	cm.productsInStock, err = NewGauge(
		cfg.Meter,
		"landed_products_in_stock",
		"Number of products with stock on hand",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// RecordShipmentCreated counts a registered shipment.
func (cm *CostingMetrics) RecordShipmentCreated(ctx context.Context, items int) {
	cm.shipmentsCreatedTotal.Inc(ctx, AttrHasItems.Bool(items > 0))
}

// RecordShipmentReceived counts a receipt and its ledger rows and records its landed cost.
func (cm *CostingMetrics) RecordShipmentReceived(ctx context.Context, movements int, totalLocalCost decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrInventoryEffect.String("receive")}
	cm.shipmentsReceivedTotal.Inc(ctx, attrs...)
	cm.stockMovementsTotal.Add(ctx, int64(movements), attrs...)
	cm.landedCost.Record(ctx, totalLocalCost.InexactFloat64())
}

// RecordShipmentReversed counts a reversal and its compensating ledger rows.
func (cm *CostingMetrics) RecordShipmentReversed(ctx context.Context, movements int) {
	attrs := []attribute.KeyValue{AttrInventoryEffect.String("reverse")}
	cm.shipmentsReversedTotal.Inc(ctx, attrs...)
	cm.stockMovementsTotal.Add(ctx, int64(movements), attrs...)
}

// RecordStockValuation records the valuation gauges.
func (cm *CostingMetrics) RecordStockValuation(ctx context.Context, value decimal.Decimal, productsInStock int64) {
	cm.stockValueLocal.Record(ctx, value.InexactFloat64())
	cm.productsInStock.Record(ctx, productsInStock)
}

// StartPeriodicCollection starts collecting valuation gauges every interval
// (default: 5 minutes). It does not block; use Stop to end collection.
func (cm *CostingMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go cm.runPeriodicCollection(ctx, interval)
	})
}

func (cm *CostingMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cm.collectValuation(ctx)

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("Stopping periodic costing metrics collection")
			return
		case <-ctx.Done():
			cm.logger.Info("Context cancelled, stopping periodic costing metrics collection")
			return
		case <-ticker.C:
			cm.collectValuation(ctx)
		}
	}
}

func (cm *CostingMetrics) collectValuation(ctx context.Context) {
	if cm.valuationProvider == nil {
		cm.logger.Debug("No valuation provider configured, skipping stock valuation collection")
		return
	}

	value, err := cm.valuationProvider.GetStockValueLocal(ctx)
	if err != nil {
		cm.logger.Warn("Failed to get stock valuation", zap.Error(err))
		return
	}
	count, err := cm.valuationProvider.GetProductsInStock(ctx)
	if err != nil {
		cm.logger.Warn("Failed to count products in stock", zap.Error(err))
		return
	}
	cm.RecordStockValuation(ctx, value, count)
}

// Stop stops the periodic collection.
func (cm *CostingMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewCostingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
