package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handler steps, used to label failures
const (
	stepParse   = "parse"
	stepFetch   = "fetch"
	stepDecode  = "decode"
	stepAnalyze = "analyze"
	stepStore   = "store"
)

type HandlerMetrics struct {
	registry *prometheus.Registry

	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	stepFailures       *prometheus.CounterVec
	inFlight           prometheus.Gauge
}

func NewHandlerMetrics() *HandlerMetrics {
	registry := prometheus.NewRegistry()

	invocationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textract_ingest",
			Name:      "invocations_total",
			Help:      "Total handler invocations by status.",
		},
		[]string{"status"},
	)
	invocationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textract_ingest",
			Name:      "invocation_duration_seconds",
			Help:      "Handler invocation duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"status"},
	)
	stepFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textract_ingest",
			Name:      "step_failures_total",
			Help:      "Handler failures by the step that failed.",
		},
		[]string{"step"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "textract_ingest",
			Name:      "in_flight",
			Help:      "Number of in-flight handler invocations.",
		},
	)

	registry.MustRegister(invocationsTotal, invocationDuration, stepFailures, inFlight)

	return &HandlerMetrics{
		registry:           registry,
		invocationsTotal:   invocationsTotal,
		invocationDuration: invocationDuration,
		stepFailures:       stepFailures,
		inFlight:           inFlight,
	}
}

func (m *HandlerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HandlerMetrics) StartInvocation() {
	m.inFlight.Inc()
}

func (m *HandlerMetrics) FinishInvocation(duration time.Duration, failedStep string) {
	m.inFlight.Dec()

	status := "success"
	if failedStep != "" {
		status = "error"
		m.stepFailures.WithLabelValues(failedStep).Inc()
	}

	m.invocationsTotal.WithLabelValues(status).Inc()
	m.invocationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

//
// end of file
//
