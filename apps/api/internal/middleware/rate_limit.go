package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"ClipServer/consts"
	rediskey "ClipServer/consts/redisKey"
	"ClipServer/pkg/logger"
	pkgredis "ClipServer/pkg/redis"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// ==================== Redis 令牌桶 Lua 脚本 ====================

// luaTokenBucketRedis Redis 令牌桶 Lua 脚本
// 原子性地补充令牌并判断是否放行
// 参数：
//
//	KEYS[1]: 限流 key (如: rate:limit:ip:{ip})
//	ARGV[1]: 当前时间戳 (毫秒)
//	ARGV[2]: 令牌桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 每次请求消耗的令牌数
//
// 返回 1 放行，0 限流。时间戳用毫秒精度，避免低速率下取整丢令牌。
const luaTokenBucketRedis = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

local time_diff = math.max(0, now - last_time)

-- 补充令牌: (时间差ms * 速率) / 1000
local new_tokens = math.floor((time_diff * rate) / 1000)

if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now -- 没产生新令牌不更新时间，防止精度丢失
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

-- 过期时间：桶填满所需时间 * 2，至少 60 秒
local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// ==================== 限流器 ====================

// RateLimiter IP 级别限流器。
// 首选 Redis 令牌桶（多实例共享配额）；Redis 不可用时降级到
// 进程内 rate.Limiter，按 key 维护独立令牌桶，避免彻底放飞。
type RateLimiter struct {
	redisClient *redis.Client
	rate        float64 // 每秒产生的令牌数
	burst       int     // 令牌桶容量
	mu          sync.RWMutex

	// 进程内兜底限流器，按 key 缓存，闲置自动淘汰
	local *lru.LRU[string, *rate.Limiter]
}

// NewRateLimiter 创建限流器
// r: 每秒产生的令牌数 (如: 10.0)
// burst: 令牌桶容量 (如: 20)
func NewRateLimiter(r float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  r,
		burst: burst,
		local: lru.NewLRU[string, *rate.Limiter](10000, nil, 10*time.Minute),
	}
}

// SetRedisClient 设置 Redis 客户端
// 延迟注入，避免初始化顺序上的循环依赖
func (r *RateLimiter) SetRedisClient(redisClient *redis.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redisClient = redisClient
}

// Allow 检查 key 对应的请求是否放行
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	r.mu.RLock()
	client := r.redisClient
	r.mu.RUnlock()

	if client == nil {
		return r.allowLocal(key)
	}

	now := time.Now().UnixMilli()

	// Redis 操作单独给 50ms 超时，防止 Redis 响应慢拖死入口
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	cmd := client.Eval(redisCtx, luaTokenBucketRedis, []string{key}, now, r.burst, r.rate, 1)
	res, err := cmd.Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Redis 限流检查超时，降级到本地限流",
				logger.String("key", key),
				logger.ErrorField(err),
			)
		} else {
			logger.Error(ctx, "Redis 限流检查失败，降级到本地限流",
				logger.String("key", key),
				logger.ErrorField(err),
			)
		}
		return r.allowLocal(key)
	}

	allowed, ok := res.(int64)
	if !ok {
		logger.Warn(ctx, "Redis 限流返回值类型错误，降级到本地限流",
			logger.String("key", key),
			logger.Any("result", res),
		)
		return r.allowLocal(key)
	}

	return allowed == 1
}

// allowLocal 进程内令牌桶兜底
func (r *RateLimiter) allowLocal(key string) bool {
	limiter, ok := r.local.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.rate), r.burst)
		// 并发下可能重复创建，多放过一两个请求无所谓
		r.local.Add(key, limiter)
	}
	return limiter.Allow()
}

// CheckBlacklist 检查 IP 是否在黑名单 Set 中
// Redis 不可用时降级为不在黑名单
func CheckBlacklist(ctx context.Context, blacklistKey, ip string) bool {
	client := pkgredis.Client()
	if client == nil {
		return false
	}

	exists, err := client.SIsMember(ctx, blacklistKey, ip).Result()
	if err != nil {
		logger.Warn(ctx, "Redis 黑名单检查失败，降级放行",
			logger.String("ip", ip),
			logger.ErrorField(err),
		)
		return false
	}
	return exists
}

// ==================== IP 限流中间件 ====================

// 全局限流器实例
var globalRateLimiter *RateLimiter

// InitRateLimiter 初始化全局限流器
func InitRateLimiter(r float64, burst int, redisClient *redis.Client) {
	globalRateLimiter = NewRateLimiter(r, burst)
	globalRateLimiter.SetRedisClient(redisClient)

	logger.Info(context.Background(), "限流器初始化完成",
		logger.Float64("rate", r),
		logger.Int("burst", burst),
	)
}

// IPRateLimitMiddleware 基于 IP 的限流中间件
// 先查黑名单，再走令牌桶；Redis 故障时自动切进程内限流
func IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, exists := GetClientIPSafe(c)
		if !exists || ip == "" {
			logger.Warn(c, "无法获取客户端 IP，跳过限流检查",
				logger.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		if CheckBlacklist(c, rediskey.IPBlacklistKey(), ip) {
			logger.Warn(c, "IP 在黑名单中，拒绝访问",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "访问被禁止，请联系管理员",
			})
			c.Abort()
			return
		}

		if globalRateLimiter == nil {
			c.Next()
			return
		}

		if !globalRateLimiter.Allow(c, rediskey.IPRateLimitKey(ip)) {
			logger.Warn(c, "IP 请求被限流",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    consts.CodeTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitMiddlewareWithConfig 独立参数的限流中间件
// 给敏感接口（注册、上传）配更紧的配额
func RateLimitMiddlewareWithConfig(r float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(r, burst)

	// 懒加载 Redis Client，只执行一次
	var once sync.Once

	return func(c *gin.Context) {
		once.Do(func() {
			if client := pkgredis.Client(); client != nil {
				limiter.SetRedisClient(client)
			}
		})

		ip, exists := GetClientIPSafe(c)
		if !exists || ip == "" {
			c.Next()
			return
		}

		if !limiter.Allow(c, rediskey.IPRateLimitKey(ip)) {
			logger.Warn(c, "IP 请求被限流",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    consts.CodeTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
