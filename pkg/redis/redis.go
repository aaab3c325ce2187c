package redis

import (
	"context"
	"fmt"
	"time"

	"ClipServer/config"

	"github.com/redis/go-redis/v9"
)

var global *redis.Client

// Client 返回全局 Redis 客户端（未初始化时为 nil）
func Client() *redis.Client {
	return global
}

// ReplaceGlobal 设置全局 Redis 客户端
func ReplaceGlobal(c *redis.Client) {
	global = c
}

// Build 基于配置创建 Redis 客户端并做一次连通性探测。
// 读写超时刻意配短：缓存层不可用时业务要快速回源数据库，不能被拖住。
func Build(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
