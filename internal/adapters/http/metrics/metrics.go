package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Workflow outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // validation or precondition failure, nothing written
	OutcomePartial  = "partial"  // some steps or members written before a failure
	OutcomeFailed   = "failed"
)

// Metrics holds the Prometheus collectors exposed on /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	workflows *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

// New creates Metrics on a private registry with the Go runtime and process
// collectors attached.
// POST: Returns Metrics ready to record and serve
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chemistmap",
			Name:      "workflow_total",
			Help:      "Mutating workflows by name and outcome.",
		}, []string{"workflow", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chemistmap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.workflows,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveWorkflow counts one run of workflow with the given outcome.
func (m *Metrics) ObserveWorkflow(workflow, outcome string) {
	if m == nil {
		return
	}
	m.workflows.WithLabelValues(workflow, outcome).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, RouteLabel(path), strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RouteLabel reduces a request path to its first segment so member and
// admin ids do not become label values.
func RouteLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "/"
	}
	first, _, _ := strings.Cut(trimmed, "/")
	return "/" + first
}
