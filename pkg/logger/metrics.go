package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics shared across the refresh pipeline.
// Metrics are auto-registered via promauto and exposed on /metrics.

var (
	// RefreshCyclesTotal counts completed refresh cycles by outcome
	RefreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycles_total",
			Help: "Total number of refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	// CycleDuration observes end-to-end refresh cycle duration
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_cycle_duration_seconds",
			Help:    "Duration of a full refresh cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// AlertsTotal counts generated alerts by severity
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_generated_total",
			Help: "Total number of alerts generated by severity",
		},
		[]string{"severity"},
	)

	// FetchErrorsTotal counts upstream fetch failures by provider
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_errors_total",
			Help: "Total number of market data fetch failures",
		},
		[]string{"provider"},
	)

	// MissingSeriesTotal counts instruments absent from a fetched batch
	MissingSeriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missing_series_total",
			Help: "Total number of instruments with no data in a cycle",
		},
		[]string{"symbol"},
	)
)
