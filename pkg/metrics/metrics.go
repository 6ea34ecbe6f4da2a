package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "irma-verse"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	friendshipOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendship_operations_total",
			Help: "Friendship state changes and queries by outcome",
		},
		[]string{"operation", "result", "service"},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name:        "websocket_connections",
			Help:        "Open notification websocket connections",
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
	)
)

// PrometheusMiddleware HTTP请求计数与耗时
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status, serviceName).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, serviceName).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 输出
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordFriendshipOperation 记录好友操作结果，result 为错误分类或 "ok"
func RecordFriendshipOperation(operation, result string) {
	friendshipOperationsTotal.WithLabelValues(operation, result, serviceName).Inc()
}

// WebsocketConnected 连接数+1
func WebsocketConnected() { websocketConnections.Inc() }

// WebsocketDisconnected 连接数-1
func WebsocketDisconnected() { websocketConnections.Dec() }
