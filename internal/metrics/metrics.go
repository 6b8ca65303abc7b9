// Package metrics exposes Prometheus instrumentation for the onboarding
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	Submissions *prometheus.CounterVec
	Payments    *prometheus.CounterVec
}

// New registers and returns the service metrics.
func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboard",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "onboard",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboard",
		Name:      "wizard_submissions_total",
		Help:      "Wizard submissions by outcome.",
	}, []string{"tier", "outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboard",
		Name:      "payment_verifications_total",
		Help:      "Professional payment verifications by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(requests, latency, submissions, payments)
	return &Metrics{
		Requests:    requests,
		LatencyMS:   latency,
		Submissions: submissions,
		Payments:    payments,
	}
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler with request counting and latency observation.
func (m *Metrics) Instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		m.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	})
}
