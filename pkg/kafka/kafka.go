package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer Kafka 生产者封装
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 创建指向单一 Topic 的生产者。
// RequireOne：补偿任务允许极端情况下丢失，不用 RequireAll 换吞吐。
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}
	return &Producer{writer: writer}
}

// SendMessage 发送一条消息，key 用于分区路由
func (p *Producer) SendMessage(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewReader 创建消费者 Reader（自动提交位点由 CommitInterval 控制）
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10 * 1024 * 1024,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
}

// ==================== 日志适配 ====================

// ZapLoggerAdapter 把 zap 适配成 kafka-go 的 Logger 接口
type ZapLoggerAdapter struct {
	l *zap.Logger
}

// NewZapLoggerAdapter 创建日志适配器
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{l: l}
}

func (a *ZapLoggerAdapter) Printf(format string, args ...interface{}) {
	if a.l != nil {
		a.l.Sugar().Infof(format, args...)
	}
}
