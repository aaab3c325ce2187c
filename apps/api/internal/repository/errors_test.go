package repository

import (
	"errors"
	"fmt"
	"testing"

	"ClipServer/consts"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func duplicateKeyErr(message string) error {
	return &mysqldriver.MySQLError{Number: 1062, Message: message}
}

func TestWrapDBError(t *testing.T) {
	t.Run("nil原样返回", func(t *testing.T) {
		assert.NoError(t, WrapDBError(nil))
	})

	t.Run("记录不存在", func(t *testing.T) {
		err := WrapDBError(gorm.ErrRecordNotFound)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("其他错误包成ErrDatabase并保留原始信息", func(t *testing.T) {
		err := WrapDBError(errors.New("connection refused"))
		assert.ErrorIs(t, err, ErrDatabase)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("包装过的也能识别", func(t *testing.T) {
		wrapped := fmt.Errorf("query user: %w", gorm.ErrRecordNotFound)
		assert.ErrorIs(t, WrapDBError(wrapped), ErrRecordNotFound)
	})
}

func TestWrapDBErrorDuplicateKey(t *testing.T) {
	cases := []struct {
		name    string
		message string
		field   string
	}{
		{"邮箱冲突带表前缀", "Duplicate entry 'x@y.com' for key 'user.uidx_email'", consts.FieldEmail},
		{"手机号冲突", "Duplicate entry '5551234567' for key 'uidx_phone'", consts.FieldPhone},
		{"用户名冲突", "Duplicate entry 'johndoe' for key 'user.uidx_handle'", consts.FieldHandle},
		{"设备冲突", "Duplicate entry 'dev-1' for key 'user.uidx_device'", consts.FieldDevice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := WrapDBError(duplicateKeyErr(tc.message))

			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tc.field, conflict.Field)
			// errors.Is 对 ErrDuplicateKey 依然成立
			assert.ErrorIs(t, err, ErrDuplicateKey)
		})
	}

	t.Run("未知索引名退化为无字段冲突", func(t *testing.T) {
		err := WrapDBError(duplicateKeyErr("Duplicate entry '1-2' for key 'friendship.uidx_pair'"))
		assert.ErrorIs(t, err, ErrDuplicateKey)

		var conflict *ConflictError
		assert.False(t, errors.As(err, &conflict))
	})

	t.Run("消息里没有索引名", func(t *testing.T) {
		err := WrapDBError(duplicateKeyErr("Duplicate entry"))
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("gorm包装过的驱动错误", func(t *testing.T) {
		wrapped := fmt.Errorf("create user: %w",
			duplicateKeyErr("Duplicate entry 'x@y.com' for key 'user.uidx_email'"))
		var conflict *ConflictError
		require.ErrorAs(t, WrapDBError(wrapped), &conflict)
		assert.Equal(t, consts.FieldEmail, conflict.Field)
	})

	t.Run("非1062的MySQL错误", func(t *testing.T) {
		err := WrapDBError(&mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"})
		assert.ErrorIs(t, err, ErrDatabase)
	})
}

func TestWrapRedisError(t *testing.T) {
	assert.NoError(t, WrapRedisError(nil))
	assert.ErrorIs(t, WrapRedisError(redis.Nil), ErrRedisNil)

	err := WrapRedisError(errors.New("connection pool timeout"))
	assert.ErrorIs(t, err, ErrRedis)
	assert.Contains(t, err.Error(), "connection pool timeout")
}
