package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"ClipServer/pkg/kafka"
)

var globalProducer *kafka.Producer

// ErrProducerNotReady 生产者未初始化（Kafka 未启用）
var ErrProducerNotReady = errors.New("redis task producer not initialized")

// SetGlobalProducer 设置全局生产者，main 初始化时调用
func SetGlobalProducer(p *kafka.Producer) {
	globalProducer = p
}

// SendRedisTask 把补偿任务投递到重试队列。
// 分区 key 用 user_id，同一用户的补偿任务保序。
func SendRedisTask(ctx context.Context, task RedisTask) error {
	if globalProducer == nil {
		return ErrProducerNotReady
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal redis task: %w", err)
	}

	var key []byte
	if task.UserId != 0 {
		key = []byte(strconv.FormatInt(task.UserId, 10))
	}

	return globalProducer.SendMessage(ctx, key, payload)
}
