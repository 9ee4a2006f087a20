// Package metrics exposes Prometheus collectors for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solana_gateway"

// Metrics owns a private registry so tests can create isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	keypairs     prometheus.Counter
	signatures   *prometheus.CounterVec
	verification *prometheus.CounterVec
	instructions *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}, []string{"method", "path"}),
		keypairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keys",
			Name:      "keypairs_generated_total",
			Help:      "Total number of keypairs generated.",
		}),
		signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keys",
			Name:      "signatures_total",
			Help:      "Total number of signing requests by result.",
		}, []string{"result"}),
		verification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keys",
			Name:      "verifications_total",
			Help:      "Total number of verification requests by result.",
		}, []string{"result"}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "instructions",
			Name:      "built_total",
			Help:      "Total number of instruction build requests by kind and result.",
		}, []string{"kind", "result"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.keypairs,
		m.signatures,
		m.verification,
		m.instructions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest records one completed request. path should be a route
// template, not the raw URL, to bound label cardinality.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordKeypair() {
	m.keypairs.Inc()
}

// RecordSignature records a signing outcome: "ok" or an error code.
func (m *Metrics) RecordSignature(result string) {
	m.signatures.WithLabelValues(result).Inc()
}

// RecordVerification records "valid", "invalid" or an error code.
func (m *Metrics) RecordVerification(result string) {
	m.verification.WithLabelValues(result).Inc()
}

// RecordInstruction records an instruction build of kind with result "ok" or
// an error code.
func (m *Metrics) RecordInstruction(kind, result string) {
	m.instructions.WithLabelValues(kind, result).Inc()
}
