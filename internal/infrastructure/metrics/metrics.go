// Package metrics exposes Prometheus counters for request handling, resource
// resolution and schema validation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mcp"

// Metrics owns a private registry so tests and multiple servers never collide
// on the default one.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "JSON-RPC requests handled, by method and outcome.",
		}, []string{"method", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_resolutions_total",
			Help:      "Resource URI resolutions, by resource and outcome.",
		}, []string{"resource", "outcome"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_validations_total",
			Help:      "Acceptance-criteria validations, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.resolutions,
		m.validations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest counts one handled JSON-RPC request.
func (m *Metrics) ObserveRequest(method, outcome string) {
	m.requests.WithLabelValues(method, outcome).Inc()
}

// ObserveResolution counts one resource resolution. Unresolved URIs have no
// resource name.
func (m *Metrics) ObserveResolution(resource, outcome string) {
	if resource == "" {
		resource = "none"
	}
	m.resolutions.WithLabelValues(resource, outcome).Inc()
}

// ObserveValidation counts one validation result.
func (m *Metrics) ObserveValidation(result string) {
	m.validations.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
