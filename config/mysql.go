package config

import "time"

// MySQLConfig MySQL 连接配置
type MySQLConfig struct {
	// 连接配置
	DSN      string   `json:"dsn" yaml:"dsn"`           // 主库 DSN
	Replicas []string `json:"replicas" yaml:"replicas"` // 只读副本 DSN 列表（为空则不启用读写分离）

	// 连接池配置
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`       // 最大打开连接数
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`       // 最大空闲连接数
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"` // 连接最大存活时间

	// 行为配置
	SlowThreshold time.Duration `json:"slowThreshold" yaml:"slowThreshold"` // 慢查询阈值
}

// DefaultMySQLConfig 返回本地开发的默认配置
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		DSN:             "root:root@tcp(localhost:3306)/clipserver?charset=utf8mb4&parseTime=True&loc=Local",
		Replicas:        nil,
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
	}
}
