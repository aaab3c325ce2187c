package config

import "time"

// KafkaConfig Kafka 连接配置。
// 当前只承载 Redis 补偿任务队列（缓存失效重试），不做业务消息。
type KafkaConfig struct {
	Brokers         []string `json:"brokers" yaml:"brokers"`                 // Broker 地址列表
	RedisRetryTopic string   `json:"redisRetryTopic" yaml:"redisRetryTopic"` // Redis 补偿任务 Topic

	ConsumerConfig struct {
		GroupID        string        `json:"groupId" yaml:"groupId"`               // 消费者组
		MinBytes       int           `json:"minBytes" yaml:"minBytes"`             // 单次拉取最小字节数
		MaxBytes       int           `json:"maxBytes" yaml:"maxBytes"`             // 单次拉取最大字节数
		CommitInterval time.Duration `json:"commitInterval" yaml:"commitInterval"` // 位点提交间隔
	} `json:"consumer" yaml:"consumer"`
}

// DefaultKafkaConfig 返回本地开发的默认配置
func DefaultKafkaConfig() KafkaConfig {
	cfg := KafkaConfig{
		Brokers:         []string{"localhost:9092"},
		RedisRetryTopic: "clipserver.redis.retry",
	}
	cfg.ConsumerConfig.GroupID = "clipserver-redis-retry"
	cfg.ConsumerConfig.MinBytes = 1
	cfg.ConsumerConfig.MaxBytes = 10 * 1024 * 1024
	cfg.ConsumerConfig.CommitInterval = time.Second
	return cfg
}
