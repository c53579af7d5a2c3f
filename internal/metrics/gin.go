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
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portfoliohub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfoliohub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portfoliohub",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being served.",
		},
	)

	documentSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfoliohub",
			Subsystem: "document",
			Name:      "saves_total",
			Help:      "Document persist attempts by outcome (synced, local_only, failed).",
		},
		[]string{"outcome"},
	)

	rendersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portfoliohub",
			Subsystem: "render",
			Name:      "renders_total",
			Help:      "Number of full view projection renders.",
		},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight, documentSaves, rendersTotal)
	})
}

// GinMiddleware records request metrics for every route.
func GinMiddleware() gin.HandlerFunc {
	register()
	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()

		c.Next()

		requestsInFlight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the scrape endpoint.
func Handler() gin.HandlerFunc {
	register()
	return gin.WrapH(promhttp.Handler())
}

func RecordDocumentSave(outcome string) {
	register()
	documentSaves.WithLabelValues(outcome).Inc()
}

func RecordRender() {
	register()
	rendersTotal.Inc()
}
