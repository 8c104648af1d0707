// internal/metrics/collector.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the engine's prometheus metrics. Each collector registers
// its vectors on a private registry so tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	transferCounter      *prometheus.CounterVec
	transferDuration     *prometheus.HistogramVec
	feeCounter           *prometheus.CounterVec
	conversionCounter    *prometheus.CounterVec
	distributionDuration prometheus.Histogram
	liquidityReserve     prometheus.Gauge
}

// NewCollector creates and registers a metrics collector.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transferCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fco",
				Name:      "transfers_total",
				Help:      "Total number of transfers processed by the engine",
			},
			[]string{"status", "direction"},
		),
		transferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fco",
				Name:      "transfer_duration_seconds",
				Help:      "Transfer interception duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{"direction"},
		),
		feeCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fco",
				Name:      "fees_collected_total",
				Help:      "Total fee units collected per category",
			},
			[]string{"category"},
		),
		conversionCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fco",
				Name:      "conversions_total",
				Help:      "Conversion attempts by outcome",
			},
			[]string{"outcome"},
		),
		distributionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fco",
				Name:      "distribution_duration_seconds",
				Help:      "Fee distribution duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		liquidityReserve: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fco",
				Name:      "liquidity_reserve_units",
				Help:      "Ledger units accumulated in the liquidity reserve",
			},
		),
	}

	c.registry.MustRegister(
		c.transferCounter,
		c.transferDuration,
		c.feeCounter,
		c.conversionCounter,
		c.distributionDuration,
		c.liquidityReserve,
	)
	return c
}

// Registry exposes the private registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordTransfer records one intercepted transfer.
func (c *Collector) RecordTransfer(direction string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.transferCounter.WithLabelValues(status, direction).Inc()
	c.transferDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// RecordFee records collected fee units for one category.
func (c *Collector) RecordFee(category string, amount uint64) {
	c.feeCounter.WithLabelValues(category).Add(float64(amount))
}

// RecordConversion records a conversion attempt outcome.
func (c *Collector) RecordConversion(outcome string, duration time.Duration) {
	c.conversionCounter.WithLabelValues(outcome).Inc()
	c.distributionDuration.Observe(duration.Seconds())
}

// UpdateLiquidityReserve updates the reserve gauge.
func (c *Collector) UpdateLiquidityReserve(units uint64) {
	c.liquidityReserve.Set(float64(units))
}
