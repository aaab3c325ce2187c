package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ClipServer/apps/api/mq"
	"ClipServer/consts"
	"ClipServer/pkg/logger"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ==================== Repository 层统一错误定义 ====================

var (
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey 唯一键冲突
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDatabase 数据库操作错误
	ErrDatabase = errors.New("database error")

	// ErrRedisNil Redis Key 不存在
	ErrRedisNil = errors.New("redis: key not found")

	// ErrRedis Redis 操作错误
	ErrRedis = errors.New("redis error")
)

// ConflictError 带冲突字段的唯一键冲突。
// errors.Is(err, ErrDuplicateKey) 仍然成立，上层用 errors.As 拿具体字段。
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate key on field %q", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// uniqueIndexFields 唯一索引名 -> 业务字段 的映射，和模型里的 gorm tag 保持一致
var uniqueIndexFields = map[string]string{
	"uidx_email":  consts.FieldEmail,
	"uidx_phone":  consts.FieldPhone,
	"uidx_handle": consts.FieldHandle,
	"uidx_device": consts.FieldDevice,
}

// ==================== 核心包装函数 ====================

// wrapError 通用错误包装函数
// rules: 映射规则 map[源错误]目标错误
func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}

	for source, target := range rules {
		if errors.Is(err, source) {
			return target
		}
	}

	// 未匹配任何规则，包装默认错误（保留原始信息用于日志）
	return fmt.Errorf("%w: %v", defaultErr, err)
}

// ==================== 预定义规则 ====================

var (
	// dbErrorRules 数据库错误映射规则
	dbErrorRules = map[error]error{
		gorm.ErrRecordNotFound: ErrRecordNotFound,
	}

	// redisErrorRules Redis 错误映射规则
	redisErrorRules = map[error]error{
		redis.Nil: ErrRedisNil,
	}
)

// ==================== 便捷函数 ====================

// WrapDBError 包装数据库错误。
// 1062（唯一键冲突）从错误消息里解析出冲突的索引名，翻译成带字段的
// ConflictError：预检查是竞态下的优化，约束才是唯一性的权威来源，
// 两条路径必须给出同样的字段级冲突结果。
func WrapDBError(err error) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		if field := duplicateField(mysqlErr.Message); field != "" {
			return &ConflictError{Field: field}
		}
		return ErrDuplicateKey
	}

	return wrapError(err, dbErrorRules, ErrDatabase)
}

// duplicateField 从 1062 的消息里提取冲突字段。
// 消息形如: Duplicate entry 'x@y.com' for key 'user.uidx_email'
func duplicateField(message string) string {
	idx := strings.LastIndex(message, "for key '")
	if idx < 0 {
		return ""
	}
	key := strings.TrimSuffix(message[idx+len("for key '"):], "'")
	// 索引名可能带表前缀（user.uidx_email）
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return uniqueIndexFields[key]
}

// WrapRedisError 包装 Redis 错误
func WrapRedisError(err error) error {
	return wrapError(err, redisErrorRules, ErrRedis)
}

// LogRedisError 日志记录 redis 错误（降级处理路径）
func LogRedisError(ctx context.Context, err error) {
	logger.Error(ctx, "Redis 操作错误", logger.ErrorField(err))
}

// LogAndRetryRedisError 记录 redis 错误并发送到 kafka 重试
// task: 要重试的 Redis 任务（由调用方构造）
func LogAndRetryRedisError(ctx context.Context, task mq.RedisTask, err error) {
	logger.Warn(ctx, "Redis 操作失败，发送到重试队列",
		logger.ErrorField(err),
		logger.String("task_type", string(task.Type)),
		logger.String("command", task.Command),
	)

	task = task.WithContext(ctx).WithError(err)

	if kafkaErr := mq.SendRedisTask(ctx, task); kafkaErr != nil {
		// Kafka 也失败就放弃，缓存有 TTL 兜底
		logger.Error(ctx, "发送 Redis 重试任务到 Kafka 失败，放弃处理",
			logger.ErrorField(kafkaErr),
			logger.String("task_type", string(task.Type)),
		)
	}
}
