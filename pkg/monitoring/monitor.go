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
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// JoinAttempts counts access code redemptions by outcome:
	// ok, malformed, invalid, inactive, error.
	JoinAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "module_join_attempts_total",
			Help: "Access code redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	ConsentSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consent_submissions_total",
			Help: "Consent records written, by waiver status",
		},
		[]string{"waiver_status"},
	)

	AccessCodeRegenerations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_code_regenerations_total",
			Help: "Access codes replaced by instructors",
		},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)
)

func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		JoinAttempts,
		ConsentSubmissions,
		AccessCodeRegenerations,
		RateLimited,
	)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
