// Package metrics exposes Prometheus collectors for the suite server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "suite"

// Metrics groups the server's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	routeRequests *prometheus.CounterVec
	authDecisions *prometheus.CounterVec
	workflowRuns  *prometheus.CounterVec
	notifications prometheus.Counter
	uiSessions    prometheus.Gauge
	notifySubs    prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		routeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_requests_total",
			Help:      "Loader invocations by route pattern and status code.",
		}, []string{"route", "status"}),
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_decisions_total",
			Help:      "Permission checks by outcome.",
		}, []string{"outcome"}),
		workflowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_runs_total",
			Help:      "Workflow invocations by workflow and outcome.",
		}, []string{"workflow", "outcome"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notifications delivered to subscribers.",
		}),
		uiSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ui_sessions",
			Help:      "Live UI state containers.",
		}),
		notifySubs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notification_subscribers",
			Help:      "Connected notification feed sockets.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.routeRequests,
		m.authDecisions,
		m.workflowRuns,
		m.notifications,
		m.uiSessions,
		m.notifySubs,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RouteRequest(route, status string) {
	if m == nil {
		return
	}
	m.routeRequests.WithLabelValues(route, status).Inc()
}

func (m *Metrics) AuthDecision(outcome string) {
	if m == nil {
		return
	}
	m.authDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WorkflowRun(workflow, outcome string) {
	if m == nil {
		return
	}
	m.workflowRuns.WithLabelValues(workflow, outcome).Inc()
}

func (m *Metrics) NotificationSent() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

func (m *Metrics) SetUISessions(n int) {
	if m == nil {
		return
	}
	m.uiSessions.Set(float64(n))
}

func (m *Metrics) SetNotifySubscribers(n int) {
	if m == nil {
		return
	}
	m.notifySubs.Set(float64(n))
}
