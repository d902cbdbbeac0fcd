// Package metrics exposes Prometheus metrics for the mock server: request
// counts and latencies on the serving path, and log-bus drop counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the collectors used by the serving path and the
// control API.
type Registry struct {
	reg *prometheus.Registry

	// RequestsTotal counts served requests by method and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes request wall time in seconds by method.
	RequestDuration *prometheus.HistogramVec

	// LogRecordsDropped counts access-log records dropped on slow
	// subscribers.
	LogRecordsDropped prometheus.Counter

	// ServerUp is 1 while the mock server is running.
	ServerUp prometheus.Gauge
}

// New creates a Registry with all collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staticmock_requests_total",
			Help: "Requests served by the mock server, by method and status code.",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staticmock_request_duration_seconds",
			Help:    "Request wall time from accept to response flush.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		LogRecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staticmock_log_records_dropped_total",
			Help: "Access-log records dropped because a subscriber lagged.",
		}),
		ServerUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "staticmock_server_up",
			Help: "1 while the mock server is running, 0 otherwise.",
		}),
	}
	reg.MustRegister(r.RequestsTotal, r.RequestDuration, r.LogRecordsDropped, r.ServerUp)
	return r
}

// Handler returns the /metrics endpoint handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
