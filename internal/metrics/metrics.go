// Package metrics exposes Prometheus metrics for the HTTP API, the stores, AI calls and
// queued jobs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "interview_tracker"

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Question store mutations by operation
	StoreChanges *prometheus.CounterVec

	// AI metrics
	AIRequests *prometheus.CounterVec
	AIDuration *prometheus.HistogramVec

	// Job metrics
	Jobs        *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, including Go runtime and
// process metrics
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		StoreChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "question_changes_total",
				Help:      "Questions written to the store, by operation",
			},
			[]string{"operation"},
		),
		AIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ai_requests_total",
				Help:      "AI provider calls by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		AIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "AI provider call duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"kind"},
		),
		Jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "jobs_processed_total",
				Help:      "Queued jobs by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "job_duration_seconds",
				Help:      "Job handler duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.StoreChanges,
		c.AIRequests,
		c.AIDuration,
		c.Jobs,
		c.JobDuration,
	)
	return c
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveStoreChange counts count questions written by op
func (c *Collector) ObserveStoreChange(op string, count int) {
	if count <= 0 {
		return
	}
	c.StoreChanges.WithLabelValues(op).Add(float64(count))
}

// ObserveAI records one provider call
func (c *Collector) ObserveAI(kind, outcome string, elapsed time.Duration) {
	c.AIRequests.WithLabelValues(kind, outcome).Inc()
	c.AIDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveJob records one job outcome
func (c *Collector) ObserveJob(jobType, outcome string, elapsed time.Duration) {
	c.Jobs.WithLabelValues(jobType, outcome).Inc()
	if elapsed > 0 {
		c.JobDuration.WithLabelValues(jobType).Observe(elapsed.Seconds())
	}
}

// Middleware records request counts and durations labelled by route template
func Middleware(c *Collector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			route := "unknown"
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
			c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture response status
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}
