package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "ClipServer/apps/api/internal/handler/v1"
	"ClipServer/apps/api/internal/middleware"
	"ClipServer/apps/api/internal/repository"
	"ClipServer/apps/api/internal/router"
	"ClipServer/apps/api/internal/service"
	"ClipServer/apps/api/internal/utils"
	"ClipServer/apps/api/mq"
	"ClipServer/config"
	"ClipServer/pkg/async"
	"ClipServer/pkg/kafka"
	"ClipServer/pkg/logger"
	"ClipServer/pkg/mailer"
	pkgminio "ClipServer/pkg/minio"
	"ClipServer/pkg/mysql"
	pkgredis "ClipServer/pkg/redis"
	"ClipServer/pkg/util"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 初始化日志
	logCfg := config.DefaultLoggerConfig()
	zl, err := logger.Build(logCfg)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer func() {
		// Sync 输出到 stdout 时会报错，忽略
		_ = zl.Sync()
	}()

	// 2. 初始化MySQL
	dbCfg := config.DefaultMySQLConfig()
	db, err := mysql.Build(dbCfg)
	if err != nil {
		log.Fatalf("初始化MySQL失败: %v", err)
	}
	mysql.ReplaceGlobal(db)

	// 3. 初始化Redis
	redisCfg := config.DefaultRedisConfig()
	// 调整 Redis 读写超时时间为 50ms（快速失败）
	redisCfg.ReadTimeout = 50 * time.Millisecond
	redisCfg.WriteTimeout = 50 * time.Millisecond

	redisClient, err := pkgredis.Build(redisCfg)
	if err != nil {
		// Redis 初始化失败不阻塞启动（降级到只用 MySQL）
		logger.Warn(ctx, "Redis 初始化失败，将降级到 MySQL-Only 模式",
			logger.ErrorField(err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Redis 初始化成功",
			logger.String("addr", redisCfg.Addr),
		)
	}

	// 4. 初始化 Kafka（仅在 Redis 可用时启动）
	var kafkaProducer *kafka.Producer
	var redisConsumer *mq.RedisRetryConsumer
	if redisClient != nil {
		kafkaCfg := config.DefaultKafkaConfig()

		// 创建 Kafka Producer
		kafkaProducer = kafka.NewProducer(kafkaCfg.Brokers, kafkaCfg.RedisRetryTopic)
		mq.SetGlobalProducer(kafkaProducer)
		logger.Info(ctx, "Kafka Producer 初始化成功",
			logger.String("brokers", kafkaCfg.Brokers[0]),
			logger.String("topic", kafkaCfg.RedisRetryTopic),
		)

		// 创建 Redis 重试消费者
		redisConsumer = mq.NewRedisRetryConsumer(
			kafkaCfg.Brokers,
			kafkaCfg.RedisRetryTopic,
			kafkaCfg.ConsumerConfig.GroupID,
			redisClient,
			kafkaProducer,
		)

		// 启动消费者（在后台 goroutine 中运行）
		go func() {
			logger.Info(ctx, "Redis 重试消费者启动中",
				logger.String("topic", kafkaCfg.RedisRetryTopic),
				logger.String("group_id", kafkaCfg.ConsumerConfig.GroupID),
			)
			if err := redisConsumer.Start(ctx); err != nil {
				logger.Error(ctx, "Redis 重试消费者运行错误", logger.ErrorField(err))
			}
		}()

		// 确保程序退出时关闭 Kafka 连接
		defer func() {
			if kafkaProducer != nil {
				if err := kafkaProducer.Close(); err != nil {
					logger.Error(ctx, "关闭 Kafka Producer 失败", logger.ErrorField(err))
				}
			}
			if redisConsumer != nil {
				if err := redisConsumer.Close(); err != nil {
					logger.Error(ctx, "关闭 Redis 重试消费者失败", logger.ErrorField(err))
				}
			}
		}()
	}

	// 5. 初始化协程池（缓存回填等异步任务）
	asyncCfg := config.DefaultAsyncConfig()
	if err := async.Init(asyncCfg); err != nil {
		log.Fatalf("初始化协程池失败: %v", err)
	}
	defer func() {
		_ = async.Release()
	}()
	// 异步任务继承 trace_id，方便日志串联
	async.SetContextPropagator(func(parent context.Context) context.Context {
		child := context.Background()
		if traceId, ok := parent.Value("trace_id").(string); ok {
			child = context.WithValue(child, "trace_id", traceId)
		}
		return child
	})

	// 6. 初始化邮件（未启用时为空实现）
	mailer.ReplaceGlobal(mailer.Build(config.DefaultSMTPConfig()))

	// 7. 初始化 MinIO 对象存储
	// 失败不阻塞启动，上传接口返回服务不可用
	var storage *pkgminio.MinIOClient
	minioCfg := config.DefaultMinIOConfig()
	storage, err = pkgminio.Build(minioCfg)
	if err != nil {
		logger.Warn(ctx, "MinIO 初始化失败，上传功能不可用",
			logger.ErrorField(err),
		)
		storage = nil
	} else {
		pkgminio.ReplaceGlobal(storage)
		logger.Info(ctx, "MinIO 初始化成功",
			logger.String("endpoint", minioCfg.Endpoint),
			logger.String("bucket", minioCfg.BucketName),
		)
	}

	// 8. 初始化小组件
	if err := util.InitSnowflake(1); err != nil { // 雪花算法
		log.Fatalf("初始化雪花节点失败: %v", err)
	}

	// 9. 初始化限流器与 Token 管理器
	serverCfg := config.DefaultServerConfig()
	middleware.InitRateLimiter(serverCfg.RateLimitPerSec, serverCfg.RateLimitBurst, redisClient)

	authCfg := config.DefaultAuthConfig()
	tokens := utils.NewTokenManager(authCfg)

	// 10. 组装依赖 - Repository 层
	userRepo := repository.NewUserRepository(db, redisClient)
	friendRepo := repository.NewFriendRepository(db, redisClient)
	postRepo := repository.NewPostRepository(db, redisClient)

	// 11. 组装依赖 - Service 层
	authService := service.NewAuthService(userRepo, tokens, authCfg.BcryptCost)
	userService := service.NewUserService(userRepo, friendRepo)
	friendService := service.NewFriendService(friendRepo, userRepo)
	postService := service.NewPostService(postRepo, userRepo, storage)

	// 12. 组装依赖 - Handler 层
	authHandler := v1.NewAuthHandler(authService)
	userHandler := v1.NewUserHandler(userService)
	friendHandler := v1.NewFriendHandler(friendService)
	postHandler := v1.NewPostHandler(postService)

	// 13. 初始化路由（依赖注入）
	gin.SetMode(gin.ReleaseMode)
	r := router.InitRouter(tokens, authHandler, userHandler, friendHandler, postHandler)
	logger.Info(ctx, "路由初始化完成")

	// 14. 配置服务器
	srv := &http.Server{
		Addr:           serverCfg.Addr,
		Handler:        r,
		ReadTimeout:    serverCfg.ReadTimeout,
		WriteTimeout:   serverCfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 最大请求头 1MB
	}

	// 15. 启动服务器（在 goroutine 中）
	go func() {
		logger.Info(ctx, "API 服务器启动中",
			logger.String("address", serverCfg.Addr),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "服务器启动失败", logger.ErrorField(err))
			os.Exit(1)
		}
	}()

	logger.Info(ctx, "API 服务器启动成功，按 Ctrl+C 关闭")

	// 16. 优雅停机
	quit := make(chan os.Signal, 1)
	// 监听中断信号：Ctrl+C (SIGINT) 和 kill 命令 (SIGTERM)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info(ctx, "收到关闭信号，开始优雅停机...",
		logger.String("signal", sig.String()),
	)

	// 17. 设置超时时间，等待正在处理的请求完成
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "服务器强制关闭", logger.ErrorField(err))
		os.Exit(1)
	}

	logger.Info(ctx, "API 服务器已优雅退出")
}
