// Package observability wires Prometheus metrics for the API and the
// background jobs.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and the collectors the application records into.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	sweepProcessed prometheus.Counter
	sweepRemoved   prometheus.Counter
	sweepErrors    prometheus.Counter
	advanceMonths  prometheus.Counter
}

// NewMetrics initialises the registry and base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hanapbahay_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hanapbahay_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	sweepProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hanapbahay_termination_sweep_processed_total",
		Help: "Bookings scanned by the termination countdown sweep.",
	})
	sweepRemoved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hanapbahay_termination_sweep_removed_total",
		Help: "Bookings resolved to completed by the sweep.",
	})
	sweepErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hanapbahay_termination_sweep_errors_total",
		Help: "Per-booking failures during the sweep.",
	})
	advanceMonths := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hanapbahay_advance_months_used_total",
		Help: "Advance deposit months consumed across all bookings.",
	})
	registry.MustRegister(requests, duration, sweepProcessed, sweepRemoved, sweepErrors, advanceMonths)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		sweepProcessed:  sweepProcessed,
		sweepRemoved:    sweepRemoved,
		sweepErrors:     sweepErrors,
		advanceMonths:   advanceMonths,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveSweep records the counters of one sweep run.
func (m *Metrics) ObserveSweep(processed, removed, errs int) {
	if m == nil {
		return
	}
	m.sweepProcessed.Add(float64(processed))
	m.sweepRemoved.Add(float64(removed))
	m.sweepErrors.Add(float64(errs))
}

// ObserveAdvanceMonths records consumed advance months.
func (m *Metrics) ObserveAdvanceMonths(n int) {
	if m == nil {
		return
	}
	m.advanceMonths.Add(float64(n))
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
