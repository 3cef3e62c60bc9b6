// Package metrics provides Prometheus metrics collection for the plate service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// OptimizationsTotal tracks finished optimization jobs by terminal status.
	OptimizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plate_optimizations_total",
			Help: "Total number of plate optimization jobs",
		},
		[]string{"status"},
	)

	// OptimizationDuration tracks optimization run duration. Runs span
	// seconds to many minutes, so buckets reach far past the HTTP range.
	OptimizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plate_optimization_duration_seconds",
			Help:    "Plate optimization duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 600, 1800},
		},
	)

	// SolutionsFound tracks improving solutions reported during search.
	SolutionsFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plate_solutions_found_total",
			Help: "Total number of improving solutions found during search",
		},
	)

	// ActiveJobs tracks optimization jobs currently running.
	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plate_active_jobs",
			Help: "Number of optimization jobs currently running",
		},
	)

	// QueuedJobs tracks optimization jobs waiting for a worker.
	QueuedJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plate_queued_jobs",
			Help: "Number of optimization jobs waiting for a worker",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordOptimization records metrics for a finished optimization job.
func RecordOptimization(duration time.Duration, status string) {
	OptimizationDuration.Observe(duration.Seconds())
	OptimizationsTotal.WithLabelValues(status).Inc()
}

// IncSolutionsFound increments the improving-solutions counter.
func IncSolutionsFound() { SolutionsFound.Inc() }

// IncActiveJobs increments the running-jobs gauge.
func IncActiveJobs() { ActiveJobs.Inc() }

// DecActiveJobs decrements the running-jobs gauge.
func DecActiveJobs() { ActiveJobs.Dec() }

// SetQueuedJobs updates the queued-jobs gauge.
func SetQueuedJobs(n int) { QueuedJobs.Set(float64(n)) }
