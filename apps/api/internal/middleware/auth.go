package middleware

import (
	"net/http"
	"strings"

	"ClipServer/apps/api/internal/utils"

	"github.com/gin-gonic/gin"
)

// bearerToken 从 Authorization 头提取 Bearer Token
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// JWTAuthMiddleware JWT 认证中间件（强制）。
// 验证通过后把用户信息存入 Context，失败直接 401。
// 客户端 Token 过期属于正常业务流程，不记日志。
func JWTAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供认证信息",
			})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 无效或已过期",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserId)
		c.Set("device_id", claims.DeviceId)

		c.Next()
	}
}

// GetUserId 从 Context 取当前登录用户 id
func GetUserId(c *gin.Context) (int64, bool) {
	userId, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := userId.(int64)
	return id, ok && id > 0
}

// GetDeviceId 从 Context 取当前设备标识
func GetDeviceId(c *gin.Context) (string, bool) {
	deviceId, exists := c.Get("device_id")
	if !exists {
		return "", false
	}
	id, ok := deviceId.(string)
	return id, ok
}
