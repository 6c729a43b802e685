package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harbor_notifications_created_total",
		Help: "Total number of notifications persisted, by type",
	}, []string{"type"})

	// NotificationsDeduped counts notifications suppressed by the dedup window.
	NotificationsDeduped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harbor_notifications_deduped_total",
		Help: "Total number of notifications suppressed by the dedup window, by type",
	}, []string{"type"})

	// DeliveriesTotal counts real-time delivery attempts by outcome.
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harbor_deliveries_total",
		Help: "Total number of real-time delivery attempts, by outcome",
	}, []string{"outcome"})

	// CascadeNodesDeleted counts comment nodes soft-deleted by subtree cascades.
	CascadeNodesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harbor_cascade_nodes_deleted_total",
		Help: "Total number of comment nodes soft-deleted by cascades",
	})

	// CounterResyncs counts counter resync operations by content type.
	CounterResyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harbor_counter_resyncs_total",
		Help: "Total number of derived-counter resyncs, by content type",
	}, []string{"content_type"})

	// WebSocketConnections is the gauge of active websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "harbor_websocket_connections",
		Help: "Number of active WebSocket connections",
	})
)
