package monitoring

import (
	"strconv"
	"sync"
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

	GradesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seclink_grades_recorded_total",
			Help: "Grades written, by letter and resubmission policy",
		},
		[]string{"letter", "policy"},
	)

	OverallComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seclink_overall_grade_computations_total",
			Help: "Overall grade recomputations, by resulting letter and scale",
		},
		[]string{"letter", "scale"},
	)

	MaterialOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seclink_learning_material_operations_total",
			Help: "Learning material uploads, downloads and deletions",
		},
		[]string{"op"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			GradesRecorded,
			OverallComputations,
			MaterialOperations,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
