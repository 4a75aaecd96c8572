// Package metrics exposes Prometheus collectors for the site and the
// operator tooling.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry. All methods are safe on a nil
// receiver so callers can run without metrics.
type Registry struct {
	reg            *prometheus.Registry
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	postEvents     *prometheus.CounterVec
	migrationItems *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etgc_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "etgc_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		postEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etgc_post_events_total",
			Help: "Post lifecycle events by type.",
		}, []string{"event"}),
		migrationItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etgc_media_migration_items_total",
			Help: "Media migration items by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.postEvents,
		r.migrationItems,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Registry) PostEvent(event string) {
	if r == nil {
		return
	}
	r.postEvents.WithLabelValues(event).Inc()
}

func (r *Registry) MigrationOutcome(outcome string) {
	if r == nil {
		return
	}
	r.migrationItems.WithLabelValues(outcome).Inc()
}

// Gatherer exposes the registry for tests and push gateways.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}
