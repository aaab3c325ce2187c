package util

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 追踪中间件：生成或透传 trace_id，存入 Gin 上下文并回写响应头
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 网关/Nginx 可能已经带了请求 ID
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = uuid.New().String()
		}

		c.Set("trace_id", traceId)
		// 回写响应头，客户端报障时带上这个 ID
		c.Header(HeaderXRequestID, traceId)

		c.Next()
	}
}

// NewUUID 生成新的 UUID
func NewUUID() string {
	return uuid.New().String()
}
