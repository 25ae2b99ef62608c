// Package metrics provides Prometheus metrics collection for the chatrelay application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the current number of live WebSocket connections
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_connections_active",
		Help: "Current number of live WebSocket connections",
	})

	// ActiveRooms tracks the current number of rooms with at least one subscriber
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_rooms_active",
		Help: "Current number of rooms with at least one subscriber",
	})

	// RoomSubscribers tracks the total number of room subscriptions
	RoomSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_room_subscribers",
		Help: "Total number of active room subscriptions",
	})

	// AdmissionRejects tracks rejected connection attempts by reason
	AdmissionRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatrelay_admission_rejects_total",
		Help: "Total number of rejected connection attempts by reason",
	}, []string{"reason"})

	// MessagesReceived tracks the total number of payloads read from clients
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_messages_received_total",
		Help: "Total number of payloads received from clients",
	})

	// MessagesRelayed tracks the total number of messages published to rooms
	MessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_messages_relayed_total",
		Help: "Total number of messages published to room subscribers",
	})

	// MessagesPersisted tracks the total number of messages written to the store
	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_messages_persisted_total",
		Help: "Total number of messages durably persisted",
	})

	// MessageErrors tracks dropped payloads (malformed or failing validation)
	MessageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_message_errors_total",
		Help: "Total number of inbound payloads dropped as malformed or invalid",
	})

	// PersistFailures tracks message store write failures
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_persist_failures_total",
		Help: "Total number of message store write failures",
	})

	// DeliveryDrops tracks deliveries skipped because a subscriber could not accept them
	DeliveryDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_delivery_drops_total",
		Help: "Total number of deliveries dropped to unresponsive subscribers",
	})

	// HTTPRequestDuration tracks HTTP request duration by endpoint and method
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatrelay_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})

	// MongoDBOperationDuration tracks the latency of MongoDB operations
	MongoDBOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatrelay_mongodb_operation_duration_seconds",
		Help:    "Duration of MongoDB operations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
