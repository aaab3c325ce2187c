package mq

import (
	"context"
	"time"
)

// ==================== Redis 补偿任务定义 ====================

type CommandType string

const (
	CmdSimple   CommandType = "simple"   // Set, Del, Incr...
	CmdPipeline CommandType = "pipeline" // 批量操作
)

// RedisTask 存放在 Kafka 里的消息体。
// 缓存写失败时构造任务投递到重试队列，由消费者异步补偿，
// 保证缓存与数据库最终一致。
type RedisTask struct {
	Type CommandType `json:"type"`

	// 普通命令（如 DEL key）
	Command string        `json:"command,omitempty"`
	Args    []interface{} `json:"args,omitempty"`

	// Pipeline（一组命令）
	PipelineCmds []RedisCmd `json:"pipeline_cmds,omitempty"`

	// 元数据（追踪和重试控制）
	TraceID     string    `json:"trace_id,omitempty"`
	UserId      int64     `json:"user_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	OriginalErr string    `json:"original_err"`
	Source      string    `json:"source,omitempty"` // 操作来源（repo/service）
}

type RedisCmd struct {
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// ==================== 构造器函数 ====================

// BuildDelTask 构造一个 DEL 任务
func BuildDelTask(keys ...string) RedisTask {
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		args = append(args, k)
	}
	return RedisTask{
		Type:       CmdSimple,
		Command:    "del",
		Args:       args,
		Timestamp:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// BuildSetTask 构造一个 SET 任务
func BuildSetTask(key string, val interface{}, ttl time.Duration) RedisTask {
	args := []interface{}{key, val}
	if ttl > 0 {
		args = append(args, "EX", int(ttl.Seconds()))
	}
	return RedisTask{
		Type:       CmdSimple,
		Command:    "set",
		Args:       args,
		Timestamp:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// BuildIncrTask 构造一个 INCR 任务（未读计数）
func BuildIncrTask(key string) RedisTask {
	return RedisTask{
		Type:       CmdSimple,
		Command:    "incr",
		Args:       []interface{}{key},
		Timestamp:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// BuildPipelineTask 构造一个 Pipeline 任务
func BuildPipelineTask(cmds []RedisCmd) RedisTask {
	return RedisTask{
		Type:         CmdPipeline,
		PipelineCmds: cmds,
		Timestamp:    time.Now(),
		RetryCount:   0,
		MaxRetries:   3,
	}
}

// ==================== 链式方法 ====================

// WithContext 为任务附加上下文信息
func (t RedisTask) WithContext(ctx context.Context) RedisTask {
	if traceID, ok := ctx.Value("trace_id").(string); ok {
		t.TraceID = traceID
	}
	if userId, ok := ctx.Value("user_id").(int64); ok {
		t.UserId = userId
	}
	return t
}

// WithError 为任务附加原始错误信息
func (t RedisTask) WithError(err error) RedisTask {
	t.OriginalErr = err.Error()
	return t
}

// WithSource 为任务附加来源信息
func (t RedisTask) WithSource(source string) RedisTask {
	t.Source = source
	return t
}

// WithMaxRetries 设置最大重试次数
func (t RedisTask) WithMaxRetries(maxRetries int) RedisTask {
	t.MaxRetries = maxRetries
	return t
}
