// Package metrics defines mcptrace's Prometheus metrics. The monitor
// command registers them and serves them behind its opt-in --metrics-addr
// listener; no code in this repository updates them, so every served
// value stays at zero.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters and gauges a proxy reports. It is additive
// instrumentation over ipc.ProxyStats, not a second source of truth.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	BytesTransferred   prometheus.Counter
	ActiveConnections  prometheus.Gauge
	BufferedEvents     prometheus.Gauge
	ReconnectAttempts  prometheus.Counter
	EventsDroppedTotal prometheus.Counter
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mcptrace",
				Name:      "requests_total",
				Help:      "Total number of JSON-RPC lines observed, by direction",
			},
			[]string{"direction"}, // direction=request/response/stderr
		),
		BytesTransferred: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "mcptrace",
				Name:      "bytes_transferred_total",
				Help:      "Total bytes forwarded between client and child",
			},
		),
		ActiveConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mcptrace",
				Name:      "active_connections",
				Help:      "Number of active proxy<->monitor IPC connections",
			},
		),
		BufferedEvents: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mcptrace",
				Name:      "buffered_events",
				Help:      "Events currently held in the buffered client's overflow buffer",
			},
		),
		ReconnectAttempts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "mcptrace",
				Name:      "reconnect_attempts_total",
				Help:      "Total reconnect attempts made by the buffered client",
			},
		),
		EventsDroppedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "mcptrace",
				Name:      "events_dropped_total",
				Help:      "Events dropped because the overflow buffer was at capacity",
			},
		),
	}
}

// Handler returns the promhttp handler serving /metrics for the given
// registry, wired up by the caller behind --metrics-addr.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
