package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ClipServer/apps/api/internal/utils"
	"ClipServer/config"
	"ClipServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var mwLoggerOnce sync.Once

func initMiddlewareTest() {
	mwLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

func testIdentityTokens() *utils.TokenManager {
	cfg := config.DefaultAuthConfig()
	cfg.JWTSecret = "middleware-test-secret"
	return utils.NewTokenManager(cfg)
}

// identityProbe 挂在 IdentityResolver 后面，回显解析到的 user_id
func identityProbe(tokens *utils.TokenManager) (*gin.Engine, *int64) {
	initMiddlewareTest()
	resolved := new(int64)

	engine := gin.New()
	engine.POST("/probe", IdentityResolver(tokens), func(c *gin.Context) {
		*resolved = 0
		if id, ok := GetUserId(c); ok {
			*resolved = id
		}
		c.Status(http.StatusOK)
	})
	return engine, resolved
}

func TestIdentityResolverBodyField(t *testing.T) {
	tokens := testIdentityTokens()
	engine, resolved := identityProbe(tokens)

	t.Run("JSON请求体里的userId", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/probe", bytes.NewBufferString(`{"userId":15,"caption":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(15), *resolved)
	})

	t.Run("字符串形式的userId不认", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/probe", bytes.NewBufferString(`{"userId":"22"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, int64(0), *resolved)
	})

	t.Run("非JSON内容不读请求体", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/probe", bytes.NewBufferString("userId=15"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, int64(0), *resolved)
	})

	t.Run("无效Token降级到下一级", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/probe", bytes.NewBufferString(`{"userId":33}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, int64(33), *resolved)
	})
}

// 读过 userId 之后请求体必须还原，handler 绑定不能受影响
func TestIdentityResolverRestoresBody(t *testing.T) {
	initMiddlewareTest()
	tokens := testIdentityTokens()

	var gotBody string
	var readErr error
	engine := gin.New()
	engine.POST("/echo", IdentityResolver(tokens), func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		gotBody, readErr = string(raw), err
		c.Status(http.StatusOK)
	})

	payload := `{"userId":15,"caption":"merhaba"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, readErr)
	assert.Equal(t, payload, gotBody)
}

// 超限的 JSON 请求体放弃解析，但下游 handler 必须拿到完整请求体
func TestIdentityResolverOversizedBody(t *testing.T) {
	initMiddlewareTest()
	tokens := testIdentityTokens()

	var resolved int64
	var gotLen int
	engine := gin.New()
	engine.POST("/echo", IdentityResolver(tokens), func(c *gin.Context) {
		resolved, _ = GetUserId(c)
		raw, _ := io.ReadAll(c.Request.Body)
		gotLen = len(raw)
		c.Status(http.StatusOK)
	})

	payload := `{"userId":15,"pad":"` + strings.Repeat("a", maxIdentityBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), resolved)
	assert.Equal(t, len(payload), gotLen)
}

func TestGetClientIPPriority(t *testing.T) {
	initMiddlewareTest()

	newCtx := func(realIP, forwardedFor string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "192.0.2.9:4000"
		if realIP != "" {
			c.Request.Header.Set(headerXRealIP, realIP)
		}
		if forwardedFor != "" {
			c.Request.Header.Set(headerXForwardedFor, forwardedFor)
		}
		return c
	}

	assert.Equal(t, "203.0.113.1", GetClientIP(newCtx("203.0.113.1", "203.0.113.2")))
	assert.Equal(t, "203.0.113.2", GetClientIP(newCtx("", "203.0.113.2, 10.0.0.1")))
	assert.Equal(t, "192.0.2.9", GetClientIP(newCtx("", "")))

	ip, ok := GetClientIPSafe(newCtx("not-an-ip", ""))
	assert.False(t, ok)
	assert.Empty(t, ip)
}

// Redis 不可用时走进程内令牌桶，配额用尽后拒绝
func TestRateLimiterLocalFallback(t *testing.T) {
	initMiddlewareTest()
	limiter := NewRateLimiter(1, 3)

	key := "rate:limit:ip:203.0.113.7"
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(context.Background(), key), "桶内令牌应放行第 %d 次", i+1)
	}
	assert.False(t, limiter.Allow(context.Background(), key))

	// 其他 key 不受影响
	assert.True(t, limiter.Allow(context.Background(), "rate:limit:ip:203.0.113.8"))
}

func TestJWTAuthMiddleware(t *testing.T) {
	initMiddlewareTest()
	tokens := testIdentityTokens()

	var resolved int64
	engine := gin.New()
	engine.GET("/private", JWTAuthMiddleware(tokens), func(c *gin.Context) {
		resolved, _ = GetUserId(c)
		c.Status(http.StatusOK)
	})

	t.Run("缺Token返回401", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("有效Token注入user_id", func(t *testing.T) {
		token, err := tokens.Sign(77, "dev-x")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(77), resolved)
	})
}
