package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks completed scan cycles.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_scan_cycles_total",
		Help: "Total number of scan cycles",
	})

	// CyclesInterruptedTotal tracks cycles cut short by shutdown.
	CyclesInterruptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_scan_cycles_interrupted_total",
		Help: "Total number of scan cycles interrupted by cancellation",
	})

	// CycleDurationSeconds tracks full cycle latency.
	CycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triarb_scan_cycle_duration_seconds",
		Help:    "Duration of a full scan cycle",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s .. ~205s
	})

	// TrianglesEvaluatedTotal tracks evaluated triangles.
	TrianglesEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_triangles_evaluated_total",
		Help: "Total number of triangles evaluated",
	})

	// OpportunitiesPerCycle tracks reported opportunities per cycle.
	OpportunitiesPerCycle = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triarb_opportunities_per_cycle",
		Help:    "Number of opportunities reported per scan cycle",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})

	// StorageErrorsTotal tracks sink failures.
	StorageErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_storage_errors_total",
		Help: "Total number of failed opportunity deliveries",
	})

	// ScannerState tracks the current state (0=scanning, 1=idle).
	ScannerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "triarb_scanner_state",
		Help: "Scanner state (0=scanning, 1=idle)",
	})
)
