package config

import "time"

// AuthConfig 认证相关配置。
// 说明：Secret 以注入方式传入认证组件，测试可以提供隔离的密钥，
// 不要在业务代码里读取全局变量。
type AuthConfig struct {
	JWTSecret    string        `json:"jwtSecret" yaml:"jwtSecret"`       // JWT 签名密钥
	AccessExpire time.Duration `json:"accessExpire" yaml:"accessExpire"` // AccessToken 有效期
	Issuer       string        `json:"issuer" yaml:"issuer"`             // JWT 签发方标识
	BcryptCost   int           `json:"bcryptCost" yaml:"bcryptCost"`     // bcrypt cost factor（0 表示默认）
}

// DefaultAuthConfig 返回本地开发的默认配置
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:    "clipserver-dev-secret",
		AccessExpire: 24 * time.Hour,
		Issuer:       "clipserver",
		BcryptCost:   0,
	}
}
