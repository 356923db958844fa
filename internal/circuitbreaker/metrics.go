package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BreakerState reports the current breaker state (0=closed, 1=open, 2=half-open).
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "triarb_quote_breaker_state",
		Help: "Quote circuit breaker state (0=closed, 1=open, 2=half-open)",
	})

	// BreakerStateChanges tracks the number of times the circuit breaker changed state.
	BreakerStateChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_quote_breaker_state_changes_total",
		Help: "Total number of quote circuit breaker state changes",
	})

	// BreakerTripsTotal tracks how often the breaker opened.
	BreakerTripsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_quote_breaker_trips_total",
		Help: "Total number of times the quote circuit breaker opened",
	})

	// BreakerRejectionsTotal tracks calls rejected while open.
	BreakerRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_quote_breaker_rejections_total",
		Help: "Total number of quote calls rejected by the circuit breaker",
	})
)
