package mq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgkafka "ClipServer/pkg/kafka"
	"ClipServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// RedisRetryConsumer 消费补偿队列，把失败的缓存操作重放到 Redis。
// 重放仍失败且未达最大次数时，任务加一递增 RetryCount 重新入队；
// 达到上限则记错误日志丢弃（缓存层有 TTL 兜底，不做死信）。
type RedisRetryConsumer struct {
	reader   *kafka.Reader
	rdb      *redis.Client
	producer *pkgkafka.Producer
}

// NewRedisRetryConsumer 创建补偿消费者
func NewRedisRetryConsumer(brokers []string, topic, groupID string, rdb *redis.Client, producer *pkgkafka.Producer) *RedisRetryConsumer {
	return &RedisRetryConsumer{
		reader:   pkgkafka.NewReader(brokers, topic, groupID),
		rdb:      rdb,
		producer: producer,
	}
}

// Start 阻塞消费直到 ctx 取消
func (c *RedisRetryConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var task RedisTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			// 消息体坏了重试没有意义，记日志跳过
			logger.Error(ctx, "补偿任务反序列化失败，丢弃",
				logger.ErrorField(err),
			)
			continue
		}

		c.handle(ctx, task)
	}
}

func (c *RedisRetryConsumer) handle(ctx context.Context, task RedisTask) {
	execCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := c.execute(execCtx, task)
	if err == nil {
		logger.Debug(ctx, "补偿任务执行成功",
			logger.String("command", task.Command),
			logger.String("trace_id", task.TraceID),
		)
		return
	}

	if task.RetryCount >= task.MaxRetries {
		logger.Error(ctx, "补偿任务达到最大重试次数，丢弃",
			logger.ErrorField(err),
			logger.String("command", task.Command),
			logger.Int("retry_count", task.RetryCount),
			logger.String("trace_id", task.TraceID),
		)
		return
	}

	task.RetryCount++
	if sendErr := SendRedisTask(ctx, task); sendErr != nil {
		logger.Error(ctx, "补偿任务重新入队失败",
			logger.ErrorField(sendErr),
			logger.String("command", task.Command),
			logger.String("trace_id", task.TraceID),
		)
	}
}

// execute 按类型重放 Redis 命令
func (c *RedisRetryConsumer) execute(ctx context.Context, task RedisTask) error {
	switch task.Type {
	case CmdSimple:
		return c.runCmd(ctx, c.rdb, task.Command, task.Args)
	case CmdPipeline:
		pipe := c.rdb.Pipeline()
		for _, cmd := range task.PipelineCmds {
			args := make([]interface{}, 0, len(cmd.Args)+1)
			args = append(args, cmd.Command)
			args = append(args, cmd.Args...)
			pipe.Do(ctx, args...)
		}
		_, err := pipe.Exec(ctx)
		return err
	default:
		logger.Warn(ctx, "未知的补偿任务类型，丢弃",
			logger.String("type", string(task.Type)),
		)
		return nil
	}
}

func (c *RedisRetryConsumer) runCmd(ctx context.Context, rdb *redis.Client, command string, args []interface{}) error {
	all := make([]interface{}, 0, len(args)+1)
	all = append(all, strings.ToLower(command))
	all = append(all, args...)
	return rdb.Do(ctx, all...).Err()
}

// Close 关闭消费者
func (c *RedisRetryConsumer) Close() error {
	return c.reader.Close()
}
