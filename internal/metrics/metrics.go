// Package metrics exposes Prometheus instrumentation for the console.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors registered for the application.
type Metrics struct {
	registry *prometheus.Registry

	// APIRequests counts handled HTTP requests by method, route and status.
	APIRequests *prometheus.CounterVec
	// LifecycleTransitions counts review state machine transitions by kind.
	LifecycleTransitions *prometheus.CounterVec
	// NotificationDecisions counts threshold gate outcomes.
	NotificationDecisions *prometheus.CounterVec
	// AlertStoreErrors counts failed alert index calls by kind.
	AlertStoreErrors *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertview_api_requests_total",
			Help: "Handled HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		LifecycleTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertview_lifecycle_transitions_total",
			Help: "Review lifecycle transitions by kind.",
		}, []string{"kind"}),
		NotificationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertview_notification_decisions_total",
			Help: "Threshold gate outcomes for incoming alerts.",
		}, []string{"outcome"}),
		AlertStoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertview_alertstore_errors_total",
			Help: "Failed alert index calls by error kind.",
		}, []string{"kind"}),
	}
	registry.MustRegister(
		m.APIRequests,
		m.LifecycleTransitions,
		m.NotificationDecisions,
		m.AlertStoreErrors,
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
