package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	requestCount        *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	errorCount          *prometheus.CounterVec
	gateDecisions       *prometheus.CounterVec
	realtimeSubscribers prometheus.Gauge
}

// NewMetrics registers the collectors on a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total number of failed requests by error code",
		}, []string{"route", "method", "code"}),
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_gate_decisions_total",
			Help:      "Page navigation decisions by route class and outcome",
		}, []string{"class", "outcome"}),
		realtimeSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_subscribers",
			Help:      "Number of open gallery change streams",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(route, method, code).Inc()
}

// RecordGateDecision counts a page navigation decision.
func (m *Metrics) RecordGateDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "redirect"
	if allowed {
		outcome = "allow"
	}
	m.gateDecisions.WithLabelValues(class, outcome).Inc()
}

// SubscriberOpened tracks a new realtime stream.
func (m *Metrics) SubscriberOpened() {
	if m == nil {
		return
	}
	m.realtimeSubscribers.Inc()
}

// SubscriberClosed tracks a finished realtime stream.
func (m *Metrics) SubscriberClosed() {
	if m == nil {
		return
	}
	m.realtimeSubscribers.Dec()
}
