package quote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// QuotesTotal tracks provider calls by result.
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triarb_quotes_total",
			Help: "Total number of quote requests by result",
		},
		[]string{"result"},
	)

	// QuoteDurationSeconds tracks quote latency.
	QuoteDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triarb_quote_duration_seconds",
		Help:    "Duration of quote requests",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
