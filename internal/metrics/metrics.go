// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperJobsTotal           *prometheus.CounterVec
	scraperItemsTotal          *prometheus.CounterVec
	scraperJobDurationSeconds  prometheus.Histogram
	scraperActiveDetailWorkers prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_jobs_total",
				Help: "Total number of scrape jobs reaching a terminal state, labeled by status.",
			},
			[]string{"status"},
		)

		scraperItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_items_total",
				Help: "Total number of detail items processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scraperJobDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_job_duration_seconds",
				Help:    "Histogram of end-to-end job durations.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		)

		scraperActiveDetailWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_active_detail_workers",
				Help: "Number of detail fetch tasks currently executing.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveJob increments the terminal job counter for the given status.
func ObserveJob(status string) {
	if scraperJobsTotal != nil {
		scraperJobsTotal.WithLabelValues(status).Inc()
	}
}

// ObserveItem increments the item counter for the given outcome.
func ObserveItem(outcome string) {
	if scraperItemsTotal != nil {
		scraperItemsTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveJobDuration records an end-to-end job duration.
func ObserveJobDuration(d time.Duration) {
	if scraperJobDurationSeconds != nil {
		scraperJobDurationSeconds.Observe(d.Seconds())
	}
}

// IncActiveDetailWorkers increments the active detail worker gauge.
func IncActiveDetailWorkers() {
	if scraperActiveDetailWorkers != nil {
		scraperActiveDetailWorkers.Inc()
	}
}

// DecActiveDetailWorkers decrements the active detail worker gauge.
func DecActiveDetailWorkers() {
	if scraperActiveDetailWorkers != nil {
		scraperActiveDetailWorkers.Dec()
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
