// Package metrics records Prometheus metrics for function invocations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invocations are bounded by the backend timeout, so buckets stop at 30s.
var defaultBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// OutcomeSuccess labels an invocation that produced a decoded response.
const OutcomeSuccess = "success"

// Metrics holds the collectors for lurl invocations on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	InvocationsTotal   *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec
	FunctionStatus     *prometheus.CounterVec
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		InvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lurl_invocations_total",
			Help: "Total function invocations by backend and outcome.",
		}, []string{"backend", "outcome"}),

		InvocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lurl_invocation_duration_seconds",
			Help:    "Function invocation latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"backend"}),

		FunctionStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lurl_function_responses_total",
			Help: "Decoded function responses by status class.",
		}, []string{"status_class"}),
	}

	reg.MustRegister(
		m.InvocationsTotal,
		m.InvocationDuration,
		m.FunctionStatus,
	)

	return m
}

// ObserveInvocation records one Fetch. statusCode is ignored when err is set.
// A nil receiver records nothing.
func (m *Metrics) ObserveInvocation(backend string, duration time.Duration, statusCode int, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(errors.GetType(err))
	}
	m.InvocationsTotal.WithLabelValues(backend, outcome).Inc()
	m.InvocationDuration.WithLabelValues(backend).Observe(duration.Seconds())

	if err == nil {
		m.FunctionStatus.WithLabelValues(StatusClass(statusCode)).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// StatusClass returns a bounded label such as "2xx" for a status code.
// Codes outside 100-599 map to "other".
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}
