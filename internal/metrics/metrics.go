// Package metrics holds the Prometheus collectors shared by the batch tools and the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to this program so tests and repeated server starts never collide
// with the global default registry.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RowsTotal counts spreadsheet rows handled per step (plz, geocode, resolve, details, scrape)
	// and result (updated, skipped, failed, fallback).
	RowsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volksfeste_rows_total",
			Help: "Spreadsheet rows handled by a batch step.",
		},
		[]string{"step", "result"},
	)

	// FetchesTotal counts outbound requests by source (cache, network) and result.
	FetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volksfeste_fetches_total",
			Help: "Outbound page and API fetches.",
		},
		[]string{"source", "result"},
	)

	HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volksfeste_http_requests_total",
			Help: "Total number of dashboard HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "volksfeste_http_request_duration_seconds",
			Help:    "Duration of dashboard HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Row records the outcome of one row in a batch step.
func Row(step, result string) {
	RowsTotal.WithLabelValues(step, result).Inc()
}

// Fetch records one outbound fetch.
func Fetch(source, result string) {
	FetchesTotal.WithLabelValues(source, result).Inc()
}

// Summary returns the row counters of one step keyed by result.
func Summary(step string) map[string]float64 {
	out := make(map[string]float64)

	families, err := Registry.Gather()
	if err != nil {
		return out
	}

	for _, mf := range families {
		if mf.GetName() != "volksfeste_rows_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var metricStep, result string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "step":
					metricStep = lp.GetValue()
				case "result":
					result = lp.GetValue()
				}
			}
			if metricStep == step {
				out[result] += m.GetCounter().GetValue()
			}
		}
	}

	return out
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// unmatchedRoute labels requests that no route handled
const unmatchedRoute = "unmatched"

// routePattern returns the chi route that served r
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// Middleware records request counts and durations per route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)
		HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration.Seconds())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}
