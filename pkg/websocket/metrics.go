package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveClients tracks connected WebSocket clients.
	ActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "triarb_ws_active_clients",
		Help: "Number of connected WebSocket clients",
	})

	// BroadcastsTotal tracks broadcast calls.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_ws_broadcasts_total",
		Help: "Total number of WebSocket broadcasts",
	})

	// MessagesSentTotal tracks messages written to clients.
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_ws_messages_sent_total",
		Help: "Total number of WebSocket messages written to clients",
	})

	// MessagesDroppedTotal tracks messages dropped by reason.
	MessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triarb_ws_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped",
		},
		[]string{"reason"},
	)

	// ConnectionDuration tracks WebSocket client lifetime.
	ConnectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triarb_ws_connection_duration_seconds",
		Help:    "Duration of WebSocket client connections",
		Buckets: []float64{1, 10, 60, 300, 600, 1800, 3600, 14400, 86400},
	})
)
