package config

import "time"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`                       // 监听地址，如: :8080
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`         // 读超时
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`       // 写超时
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"` // 优雅关闭等待时间

	// 限流配置
	RateLimitPerSec float64 `json:"rateLimitPerSec" yaml:"rateLimitPerSec"` // 每秒产生的令牌数（IP 级别）
	RateLimitBurst  int     `json:"rateLimitBurst" yaml:"rateLimitBurst"`   // 令牌桶容量
}

// DefaultServerConfig 返回本地开发的默认配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitPerSec: 10.0,
		RateLimitBurst:  20,
	}
}
