package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Currently connected websocket clients",
		},
	)
	WSDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_delivered_total",
			Help: "Events queued to websocket clients",
		},
		[]string{"type"},
	)
	WSDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_dropped_total",
			Help: "Events dropped because a client's send queue was full",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(WSConnections)
	prometheus.MustRegister(WSDelivered)
	prometheus.MustRegister(WSDropped)
}
