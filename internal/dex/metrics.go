package dex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ConnectFailuresTotal tracks failed RPC dial attempts.
	ConnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_rpc_connect_failures_total",
		Help: "Total number of failed RPC connection attempts",
	})

	// ConnectRetriesTotal tracks backoff retries of the RPC dial.
	ConnectRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_rpc_connect_retries_total",
		Help: "Total number of RPC connection retries",
	})

	// ContractCallsTotal tracks contract calls by method and result.
	ContractCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triarb_contract_calls_total",
			Help: "Total number of read-only contract calls",
		},
		[]string{"method", "result"},
	)

	// ContractCallDurationSeconds tracks contract call latency.
	ContractCallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triarb_contract_call_duration_seconds",
			Help:    "Duration of read-only contract calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)
)
