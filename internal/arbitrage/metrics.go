package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SimulationsTotal tracks simulated cycles by outcome.
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triarb_simulations_total",
			Help: "Total number of simulated swap cycles by outcome",
		},
		[]string{"outcome"},
	)

	// SimulationDurationSeconds tracks the latency of a single cycle quote.
	SimulationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triarb_simulation_duration_seconds",
		Help:    "Duration of a single swap cycle simulation",
		Buckets: prometheus.DefBuckets,
	})

	// CandidatesFoundTotal tracks triangles with at least one profitable cycle.
	CandidatesFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_candidates_found_total",
		Help: "Total number of triangles with a profitable cycle",
	})

	// OpportunitiesReportedTotal tracks candidates that cleared the threshold.
	OpportunitiesReportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_opportunities_reported_total",
		Help: "Total number of arbitrage opportunities reported",
	})

	// OpportunitiesSuppressedTotal tracks profitable candidates below the threshold.
	OpportunitiesSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_opportunities_suppressed_total",
		Help: "Total number of profitable candidates below the reporting threshold",
	})

	// ProfitValue tracks candidate profits in valuation units.
	ProfitValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triarb_profit_value",
		Help:    "Candidate profit in valuation units",
		Buckets: []float64{0.1, 1, 5, 10, 25, 50, 100, 250, 1000, 5000},
	})
)
