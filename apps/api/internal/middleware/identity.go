package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"ClipServer/apps/api/internal/utils"

	"github.com/gin-gonic/gin"
)

// maxIdentityBodySize 只为解析 userId 读取请求体的上限
const maxIdentityBodySize = 1 << 20 // 1MB

// IdentityResolver 可选身份解析中间件。
// 按优先级解析操作者身份：Token > X-User-ID 头 > userId 查询参数 > 请求体 userId 字段，
// 任意一级解析成功即停止。全部失败不是错误，表示匿名访问。
func IdentityResolver(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Bearer Token（可验证的身份，优先级最高）
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := tokens.Verify(tokenString); err == nil {
				c.Set("user_id", claims.UserId)
				c.Set("device_id", claims.DeviceId)
				c.Next()
				return
			}
			// Token 无效按未携带处理，继续往下降级
		}

		// 2. X-User-ID 头
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set("user_id", id)
				c.Next()
				return
			}
		}

		// 3. userId 查询参数
		if raw := c.Query("userId"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set("user_id", id)
				c.Next()
				return
			}
		}

		// 4. 请求体 userId 字段（读完要回填，后续 handler 还要绑定）
		if id, ok := userIdFromBody(c); ok {
			c.Set("user_id", id)
		}

		c.Next()
	}
}

// userIdFromBody 从 JSON 请求体里取 userId，读取后把 Body 还原。
// 读到的前缀拼回未读的剩余部分，超限的请求体不解析但也绝不截断。
func userIdFromBody(c *gin.Context) (int64, bool) {
	if c.Request.Body == nil || c.ContentType() != "application/json" {
		return 0, false
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdentityBodySize+1))
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
	if err != nil || len(body) == 0 {
		return 0, false
	}
	if len(body) > maxIdentityBodySize {
		return 0, false
	}

	var payload struct {
		UserId json.Number `json:"userId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, false
	}
	id, err := payload.UserId.Int64()
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
