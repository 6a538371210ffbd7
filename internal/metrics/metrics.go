// Package metrics provides Prometheus collectors for evaluations and HTTP
// requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/gocalc/internal/evaluator"
)

const namespace = "gocalc"

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide.
type Metrics struct {
	reg *prometheus.Registry

	Evaluations        *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}

	m.Evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluations_total",
		Help:      "Evaluations by operation and outcome",
	}, []string{"operation", "outcome"})

	m.EvaluationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Evaluation duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	}, []string{"operation"})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by status code",
	}, []string{"code"})

	m.HTTPDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1.0, 3.0, 10.0},
	})

	m.reg.MustRegister(m.Evaluations, m.EvaluationDuration, m.HTTPRequests, m.HTTPDuration)
	return m
}

// ObserveEvaluation records one finished evaluation.
func (m *Metrics) ObserveEvaluation(op evaluator.Operation, ok bool, took time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.Evaluations.WithLabelValues(op.String(), outcome).Inc()
	m.EvaluationDuration.WithLabelValues(op.String()).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Middleware counts requests by status and records their duration.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(strconv.Itoa(status)).Inc()
		m.HTTPDuration.Observe(time.Since(start).Seconds())
	})
}
