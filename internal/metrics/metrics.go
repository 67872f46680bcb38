package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	uploadedFilesTotal  prometheus.Counter
	failedFilesTotal    prometheus.Counter
)

// InitMetrics registers the collectors. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evidence_http_requests_total",
			Help: "HTTP requests processed, labeled by method, path and status.",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evidence_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		uploadedFilesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evidence_uploaded_files_total",
			Help: "Files stored successfully.",
		})

		failedFilesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evidence_failed_files_total",
			Help: "Files rejected or failed during upload.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, uploadedFilesTotal, failedFilesTotal)
	})
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if httpRequestsTotal == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordUpload accounts one batch's per-file outcomes.
func RecordUpload(uploaded, failed int) {
	if uploadedFilesTotal == nil {
		return
	}
	uploadedFilesTotal.Add(float64(uploaded))
	failedFilesTotal.Add(float64(failed))
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
