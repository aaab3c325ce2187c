package router

import (
	v1 "ClipServer/apps/api/internal/handler/v1"
	"ClipServer/apps/api/internal/middleware"
	"ClipServer/apps/api/internal/utils"
	"ClipServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter 初始化路由
// 处理器与 Token 管理器全部依赖注入
func InitRouter(
	tokens *utils.TokenManager,
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	friendHandler *v1.FriendHandler,
	postHandler *v1.PostHandler,
) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery())

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 客户端 IP 中间件
	r.Use(middleware.ClientIPMiddleware())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware())

	// IP 限流中间件（含黑名单）
	r.Use(middleware.IPRateLimitMiddleware())

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	// Prometheus 会定时访问这个接口来拉取监控数据
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 公开接口（不需要认证）
		public := api.Group("/public")
		{
			auth := public.Group("/auth")
			{
				auth.POST("/anonymous", authHandler.Anonymous)
				// 注册接口配更紧的限流
				auth.POST("/register", middleware.RateLimitMiddlewareWithConfig(2, 5), authHandler.Register)
				auth.POST("/login", authHandler.Login)
			}

			// 公开内容浏览：身份可选，带上则搜索结果附关系
			post := public.Group("/post")
			post.Use(middleware.IdentityResolver(tokens))
			{
				post.GET("/feed", postHandler.GetFeed)
			}

			search := public.Group("/user")
			search.Use(middleware.IdentityResolver(tokens))
			{
				search.GET("/search", userHandler.SearchUsers)
			}
		}

		// 需要认证的接口
		user := api.Group("/user")
		user.Use(middleware.JWTAuthMiddleware(tokens))
		{
			user.GET("/profile", userHandler.GetProfile)
			user.PATCH("/profile", userHandler.UpdateProfile)
		}

		friend := api.Group("/friend")
		friend.Use(middleware.JWTAuthMiddleware(tokens))
		{
			friend.POST("/requests", friendHandler.SendRequest)
			friend.GET("/requests", friendHandler.ListRequests)
			friend.POST("/requests/:requestId/accept", friendHandler.AcceptRequest)
			friend.POST("/requests/:requestId/decline", friendHandler.DeclineRequest)
			friend.GET("/list", friendHandler.ListFriends)
			friend.DELETE("/:friendId", friendHandler.RemoveFriend)
		}

		post := api.Group("/post")
		{
			// 发布允许匿名：身份可选解析，解析不到按匿名投稿入库
			post.POST("", middleware.IdentityResolver(tokens), postHandler.CreatePost)

			authed := post.Group("")
			authed.Use(middleware.JWTAuthMiddleware(tokens))
			{
				authed.GET("/mine", postHandler.ListMyPosts)
				authed.DELETE("/:postId", postHandler.DeletePost)
				// 上传接口配更紧的限流
				authed.POST("/upload", middleware.RateLimitMiddlewareWithConfig(1, 3), postHandler.UploadMedia)
			}
		}
	}

	return r
}
