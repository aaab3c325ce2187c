package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ==================== Prometheus 指标 ====================

var (
	// httpRequestTotal HTTP 请求总数
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipserver",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数，按方法/路由/状态码区分",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration HTTP 请求耗时分布
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clipserver",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时分布（秒）",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

// PrometheusMiddleware 请求指标采集中间件
// path 取注册的路由模板而不是原始 URL，避免 /users/123 造成标签爆炸
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// 未匹配到路由（404），统一归类
			path = "unmatched"
		}

		httpRequestTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
