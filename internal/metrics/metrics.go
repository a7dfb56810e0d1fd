package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parlor_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parlor_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_connections_total",
			Help: "Total WebSocket connections accepted",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parlor_connections_active",
			Help: "Currently open WebSocket connections",
		},
	)

	// Chat metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_messages_total",
			Help: "Total room messages relayed",
		},
	)

	PrivateMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_private_messages_total",
			Help: "Total private messages relayed",
		},
	)

	ReadReceipts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_read_receipts_total",
			Help: "Total read receipts recorded",
		},
	)

	RoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_room_joins_total",
			Help: "Total room joins and switches",
		},
	)

	MessagesEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_messages_evicted_total",
			Help: "Total messages evicted from room logs",
		},
	)

	// Delivery metrics
	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_deliveries_dropped_total",
			Help: "Outbound events dropped due to a full or closed send buffer",
		},
	)

	EventsRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parlor_events_rate_limited_total",
			Help: "Inbound events discarded by per-connection rate limiting",
		},
	)
)
