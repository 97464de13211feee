package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exposed on /metrics
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BookingsTotal   *prometheus.CounterVec
	UnpaidBookings  prometheus.Counter
	SessionRepairs  prometheus.Counter
	GateRedirects   *prometheus.CounterVec
	RateLimited     *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry so that several
// App instances can live in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rental_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_bookings_total",
			Help: "Booking submissions by outcome.",
		}, []string{"outcome"}),
		UnpaidBookings: factory.NewCounter(prometheus.CounterOpts{
			Name: "rental_bookings_unpaid_total",
			Help: "Bookings created on the API whose payment call failed.",
		}),
		SessionRepairs: factory.NewCounter(prometheus.CounterOpts{
			Name: "rental_session_repairs_total",
			Help: "Persisted sessions cleared because they were corrupt or partial.",
		}),
		GateRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_gate_redirects_total",
			Help: "Access gate redirects by decision.",
		}, []string{"decision"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_rate_limited_total",
			Help: "Requests rejected by the rate limiter by category.",
		}, []string{"category"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		route := routeName(r)
		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(wrapper.statusCode)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routeName keeps label cardinality bounded by using the mux path template
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
