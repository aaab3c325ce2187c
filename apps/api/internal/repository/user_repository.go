package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ClipServer/apps/api/mq"
	"ClipServer/consts"
	rediskey "ClipServer/consts/redisKey"
	"ClipServer/model"
	"ClipServer/pkg/async"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// emptyPlaceholder 空占位符，缓存"用户不存在"防止穿透
const emptyPlaceholder = "{}"

// userRepositoryImpl 用户数据访问层实现。
// GetById 走三级读：进程内 LRU -> Redis -> MySQL，按标识查询只走 MySQL
// （登录、注册是低频路径，唯一索引足够快，缓存多份反而难失效）。
type userRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
	l1          *expirable.LRU[int64, *model.User]
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB, redisClient *redis.Client) IUserRepository {
	return &userRepositoryImpl{
		db:          db,
		redisClient: redisClient,
		// L1 只放热点用户，短 TTL 控制多实例间的不一致窗口
		l1: expirable.NewLRU[int64, *model.User](4096, nil, 30*time.Second),
	}
}

// GetById 根据 id 查询用户
func (r *userRepositoryImpl) GetById(ctx context.Context, id int64) (*model.User, error) {
	// ==================== 1. 进程内 LRU ====================
	if user, ok := r.l1.Get(id); ok {
		return user, nil
	}

	// ==================== 2. Redis ====================
	cacheKey := rediskey.UserInfoKey(id)
	if r.redisClient != nil {
		cachedData, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if cachedData == emptyPlaceholder {
				return nil, nil
			}
			var user model.User
			if err := json.Unmarshal([]byte(cachedData), &user); err == nil {
				r.l1.Add(id, &user)
				return &user, nil
			}
		}
		if err != nil && err != redis.Nil {
			LogRedisError(ctx, err) // 记录日志 降级处理
		}
	}

	// ==================== 3. MySQL ====================
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 写空占位防穿透，短过期
			r.backfill(ctx, cacheKey, emptyPlaceholder, rediskey.UserInfoEmptyTTL)
			return nil, nil
		}
		return nil, WrapDBError(err)
	}

	// ==================== 4. 异步回填缓存 ====================
	r.l1.Add(id, &user)
	if userJSON, err := json.Marshal(&user); err == nil {
		r.backfill(ctx, cacheKey, string(userJSON), rediskey.UserInfoTTL)
	}

	return &user, nil
}

// backfill 异步写 Redis，失败只记日志（下次读会再回填）
func (r *userRepositoryImpl) backfill(ctx context.Context, key, value string, ttl time.Duration) {
	if r.redisClient == nil {
		return
	}
	expire := getRandomExpireTime(ttl)
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := r.redisClient.Set(runCtx, key, value, expire).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// invalidate 写路径后失效缓存，Redis 删除失败进重试队列
func (r *userRepositoryImpl) invalidate(ctx context.Context, userId int64, source string) {
	r.l1.Remove(userId)
	if r.redisClient == nil {
		return
	}
	cacheKey := rediskey.UserInfoKey(userId)
	if err := r.redisClient.Del(ctx, cacheKey).Err(); err != nil {
		task := mq.BuildDelTask(cacheKey).WithSource(source)
		LogAndRetryRedisError(ctx, task, err)
	}
}

// getByColumn 单列等值查询，未命中返回 (nil, nil)
func (r *userRepositoryImpl) getByColumn(ctx context.Context, column, value string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// GetByDeviceId 根据设备标识查询用户
func (r *userRepositoryImpl) GetByDeviceId(ctx context.Context, deviceId string) (*model.User, error) {
	return r.getByColumn(ctx, "device_id", deviceId)
}

// GetByEmail 根据规范化邮箱查询用户
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByColumn(ctx, "email", email)
}

// GetByHandle 根据用户名查询用户
func (r *userRepositoryImpl) GetByHandle(ctx context.Context, handle string) (*model.User, error) {
	return r.getByColumn(ctx, "handle", handle)
}

// GetByPhoneCandidates 按手机号历史变体 OR 匹配查询用户。
// 旧数据可能存过带 0 / 带 90 前缀的形式，查询时全部兼容，
// 写入侧只存规范 10 位。
func (r *userRepositoryImpl) GetByPhoneCandidates(ctx context.Context, candidates []string) (*model.User, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var user model.User
	err := r.db.WithContext(ctx).Where("phone IN ?", candidates).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// Create 创建新用户。唯一键竞态由 WrapDBError 翻译成带字段的冲突错误。
func (r *userRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return user, nil
}

// Update 按字段更新用户并失效缓存
func (r *userRepositoryImpl) Update(ctx context.Context, userId int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userId).
		Updates(updates).
		Error
	if err != nil {
		return WrapDBError(err)
	}

	r.invalidate(ctx, userId, "UserRepository.Update")
	return nil
}

// IsFieldTaken 检查唯一标识是否已被其他用户占用。
// 这是预检查：给常见情况一个明确的字段级错误，真正的唯一性由约束保证。
func (r *userRepositoryImpl) IsFieldTaken(ctx context.Context, field, value string, excludeId int64) (bool, error) {
	column, ok := map[string]string{
		consts.FieldEmail:  "email",
		consts.FieldPhone:  "phone",
		consts.FieldHandle: "handle",
		consts.FieldDevice: "device_id",
	}[field]
	if !ok {
		return false, nil
	}

	query := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where(column+" = ?", value)
	if excludeId > 0 {
		query = query.Where("id <> ?", excludeId)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// Search 按名称/用户名/邮箱/手机号模糊搜索。
// 查询串是纯数字时额外按手机号前缀匹配，排除搜索者自己。
func (r *userRepositoryImpl) Search(ctx context.Context, query string, excludeId int64, limit int) ([]*model.User, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []*model.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	pattern := "%" + q + "%"
	cond := r.db.Where("full_name LIKE ?", pattern).
		Or("handle LIKE ?", pattern).
		Or("email LIKE ?", pattern)

	if digits := strings.Map(keepDigit, q); digits != "" && digits == q {
		cond = cond.Or("phone LIKE ?", digits+"%")
	}

	var users []*model.User
	err := r.db.WithContext(ctx).
		Where(cond).
		Where("id <> ?", excludeId).
		Limit(limit).
		Find(&users).
		Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return users, nil
}

// StoreAccessToken 在 Redis 中记录签发的 AccessToken。
// 最后签发的 Token 可查可控（踢下线、审计），Redis 不可用时跳过，
// JWT 本身自校验，不依赖这条记录。
func (r *userRepositoryImpl) StoreAccessToken(ctx context.Context, userId int64, deviceId, token string) error {
	if r.redisClient == nil {
		return nil
	}

	key := rediskey.AccessTokenKey(userId, deviceId)
	if err := r.redisClient.Set(ctx, key, token, rediskey.AccessTokenTTL).Err(); err != nil {
		LogAndRetryRedisError(ctx, mq.BuildSetTask(key, token, rediskey.AccessTokenTTL), err)
		return WrapRedisError(err)
	}
	return nil
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
