package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection Metrics
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connections_active",
		Help: "The current number of open WebSocket connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_connections_total",
		Help: "The total number of WebSocket connections accepted.",
	})
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_received_total",
		Help: "The total number of frames read from clients.",
	})

	// Session Metrics
	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_sessions",
		Help: "The number of sessions known to the registry.",
	})
	HostRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_host_registrations_total",
		Help: "The total number of register_pc messages accepted.",
	})

	// Relay Metrics
	Forwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_messages_forwarded_total",
		Help: "Frames delivered, by direction (broadcast, unicast).",
	}, []string{"direction"})
	Dropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_messages_dropped_total",
		Help: "Frames not delivered, by reason.",
	}, []string{"reason"})

	// Auth Metrics
	ControlRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_control_requests_total",
		Help: "request_control outcomes (granted, failed, limited).",
	}, []string{"outcome"})

	// Store Metrics
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_store_errors_total",
		Help: "Session store failures, by operation.",
	}, []string{"op"})
)
