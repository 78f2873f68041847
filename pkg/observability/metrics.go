// Package observability exposes the application's Prometheus metrics,
// replacing the CloudWatch sink this method surface originally targeted.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors the mediator pipeline and the
// backend dispatcher feed. One instance is constructed at startup and
// threaded through every behavior/adapter constructor.
type Metrics struct {
	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	opLatency       *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	business        *prometheus.GaugeVec
	backendLatency  *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ctxmemory_command_duration_seconds",
			Help:    "Duration of mediator command execution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command", "status"}),
		commandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctxmemory_command_total",
			Help: "Count of mediator command executions.",
		}, []string{"command", "status"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ctxmemory_operation_latency_seconds",
			Help:    "Latency of arbitrary named operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ctxmemory_errors_total",
			Help: "Count of errors by type and code.",
		}, []string{"error_type", "error_code"}),
		business: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ctxmemory_business_metric",
			Help: "Ad hoc business metrics keyed by name.",
		}, []string{"metric"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ctxmemory_backend_call_duration_seconds",
			Help:    "Per-backend call latency as seen by the dispatcher.",
			Buckets: []float64{.001, .003, .005, .01, .02, .05, .1, .2, .5, 1},
		}, []string{"backend", "outcome"}),
	}
	if registerer != nil {
		registerer.MustRegister(m.commandDuration, m.commandTotal, m.opLatency, m.errors, m.business, m.backendLatency)
	}
	return m
}

func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.commandDuration.WithLabelValues(commandName, status).Observe(duration.Seconds())
	m.commandTotal.WithLabelValues(commandName, status).Inc()
}

func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration) {
	m.opLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

func (m *Metrics) RecordError(ctx context.Context, errorType, errorCode string) {
	m.errors.WithLabelValues(errorType, errorCode).Inc()
}

func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricName string, value float64) {
	m.business.WithLabelValues(metricName).Set(value)
}

// RecordBackendCall feeds the per-backend latency histogram the dispatcher
// and the store-context handler both report into.
func (m *Metrics) RecordBackendCall(backend, outcome string, duration time.Duration) {
	m.backendLatency.WithLabelValues(backend, outcome).Observe(duration.Seconds())
}
