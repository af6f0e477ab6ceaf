// Package metrics exposes Prometheus instrumentation for the HTTP layer, the
// pipeline and the upload store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/fileconv/internal/core"
)

const namespace = "fileconv"

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	storedFiles   prometheus.Gauge
	uploadedFiles prometheus.Counter
	uploadedBytes prometheus.Counter
	rateLimited   *prometheus.CounterVec
}

// New creates and registers every collector, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline evaluations by target format and outcome.",
		}, []string{"format", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of successful pipeline evaluations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		storedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_files",
			Help:      "Uploads currently held in memory.",
		}),
		uploadedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_files_total",
			Help:      "Files accepted for upload.",
		}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes accepted for upload.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}, []string{"limiter"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.runs,
		m.runDuration,
		m.storedFiles,
		m.uploadedFiles,
		m.uploadedBytes,
		m.rateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRun implements core.RunObserver.
func (m *Metrics) ObserveRun(format core.Format, outcome string, d time.Duration) {
	m.runs.WithLabelValues(string(format), outcome).Inc()
	if outcome == core.OutcomeOK {
		m.runDuration.WithLabelValues(string(format)).Observe(d.Seconds())
	}
}

// SetStoredFiles implements core.RunObserver.
func (m *Metrics) SetStoredFiles(n int) {
	m.storedFiles.Set(float64(n))
}

// ObserveUpload counts accepted files and their total size.
func (m *Metrics) ObserveUpload(files int, bytes int64) {
	m.uploadedFiles.Add(float64(files))
	m.uploadedBytes.Add(float64(bytes))
}

// RateLimited counts a request rejected by the named limiter.
func (m *Metrics) RateLimited(limiter string) {
	m.rateLimited.WithLabelValues(limiter).Inc()
}

// Middleware records request count and latency. Routes are labelled by their
// chi pattern so ids in paths do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
