package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// CourseGenerations counts finished generation runs by outcome
	// ("active" or "error").
	CourseGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_generations_total",
			Help: "Completed course generation runs by final status",
		},
		[]string{"status"},
	)

	// ModulesGenerated counts per-module content generations by outcome.
	ModulesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modules_generated_total",
			Help: "Module content generations by outcome",
		},
		[]string{"outcome"},
	)

	// GeneratorRequests counts upstream generator calls by classified
	// outcome (ok, rate_limited, unavailable, bad_request, error).
	GeneratorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_requests_total",
			Help: "Upstream generator requests by classified outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(CourseGenerations)
	prometheus.MustRegister(ModulesGenerated)
	prometheus.MustRegister(GeneratorRequests)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
