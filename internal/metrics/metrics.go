package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	// HTTPRequestsTotal counts requests by route template, method and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route", "method"},
	)
)

// Resume Pipeline Metrics
var (
	// AnalysesTotal counts reviews by result (model or fallback)
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analyses_total",
			Help: "Total resume analyses by result (model/fallback)",
		},
		[]string{"result"},
	)

	// AnalysisDuration tracks the time spent waiting on the reviewer model
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_analysis_duration_seconds",
			Help:    "Resume analysis duration in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// UploadBytesTotal counts stored bytes by object kind (pdf/image)
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_upload_bytes_total",
			Help: "Total bytes uploaded to the file bucket by kind",
		},
		[]string{"kind"},
	)

	// UploadsTotal counts upload pipeline runs by outcome
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Total resume uploads by status (completed/failed)",
		},
		[]string{"status"},
	)

	// WebSocketConnectionsCurrent tracks open status sockets
	WebSocketConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_current",
			Help: "Current number of open status WebSocket connections",
		},
	)
)

// AnalysisResult labels an analysis for AnalysesTotal.
func AnalysisResult(fallback bool) string {
	if fallback {
		return "fallback"
	}
	return "model"
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
