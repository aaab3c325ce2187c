package repository

import (
	"context"
	"errors"
	"time"

	rediskey "ClipServer/consts/redisKey"
	"ClipServer/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 列表查询固定上限，超大账号不允许一次拖全表
const (
	maxFriendList  = 500
	maxRequestList = 100
)

// friendRepositoryImpl 好友请求与好友关系数据访问层实现
type friendRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewFriendRepository 创建好友仓储实例
func NewFriendRepository(db *gorm.DB, redisClient *redis.Client) IFriendRepository {
	return &friendRepositoryImpl{db: db, redisClient: redisClient}
}

// GetRequestById 根据 id 查询好友请求
func (r *friendRepositoryImpl) GetRequestById(ctx context.Context, id int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// GetPendingRequest 查询 sender→recipient 方向的待处理请求
func (r *friendRepositoryImpl) GetPendingRequest(ctx context.Context, senderId, recipientId int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND recipient_id = ? AND status = ?", senderId, recipientId, model.RequestStatusPending).
		First(&req).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// CreateRequest 创建好友请求，并尽力而为地给接收方加未读计数
func (r *friendRepositoryImpl) CreateRequest(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error) {
	err := r.db.WithContext(ctx).Create(req).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	// 未读计数是提示性数据，Redis 失败只记日志
	if r.redisClient != nil {
		notifyKey := rediskey.RequestUnreadKey(req.RecipientId)
		pipe := r.redisClient.Pipeline()
		pipe.Incr(ctx, notifyKey)
		pipe.Expire(ctx, notifyKey, rediskey.RequestUnreadTTL)
		if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	return req, nil
}

// AcceptRequest 接受好友请求。
// 状态流转和好友关系写入在同一事务：部分失败会留下"已接受但没有关系行"
// 的死局（重复请求判定永远不触发），所以两者必须同生共死。
func (r *friendRepositoryImpl) AcceptRequest(ctx context.Context, req *model.FriendRequest) (bool, error) {
	alreadyProcessed := false
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. CAS 更新请求状态（WHERE status=pending 作为守门员）
		result := tx.Model(&model.FriendRequest{}).
			Where("id = ? AND status = ?", req.Id, model.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":     model.RequestStatusAccepted,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}

		// 幂等判断：RowsAffected=0 表示已被处理，不触发回滚
		if result.RowsAffected == 0 {
			alreadyProcessed = true
			return nil
		}

		// 2. 写入规范对的好友关系。并发接受（双向请求各自 accept）
		// 可能撞唯一索引，OnConflict DoNothing 吸收掉
		u1, u2 := model.CanonicalPair(req.SenderId, req.RecipientId)
		friendship := &model.Friendship{
			User1Id:   u1,
			User2Id:   u2,
			CreatedAt: now,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).Create(friendship).Error
	})
	if err != nil {
		return false, WrapDBError(err)
	}

	return alreadyProcessed, nil
}

// DeclineRequest 拒绝好友请求，CAS 语义同 AcceptRequest
func (r *friendRepositoryImpl) DeclineRequest(ctx context.Context, requestId int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", requestId, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":     model.RequestStatusDeclined,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected == 0, nil
}

// GetFriendship 查询规范对的好友关系
func (r *friendRepositoryImpl) GetFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error) {
	u1, u2 := model.CanonicalPair(userA, userB)

	var friendship model.Friendship
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		First(&friendship).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &friendship, nil
}

// RemoveFriendship 删除好友关系，删 0 行不算错误
func (r *friendRepositoryImpl) RemoveFriendship(ctx context.Context, userA, userB int64) (bool, error) {
	u1, u2 := model.CanonicalPair(userA, userB)

	result := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Delete(&model.Friendship{})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListFriendIds 列出用户的好友 id，最新建立的在前，固定上限
func (r *friendRepositoryImpl) ListFriendIds(ctx context.Context, userId int64) ([]int64, error) {
	var friendships []model.Friendship
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userId, userId).
		Order("created_at DESC").
		Limit(maxFriendList).
		Find(&friendships).
		Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	ids := make([]int64, 0, len(friendships))
	for _, f := range friendships {
		if f.User1Id == userId {
			ids = append(ids, f.User2Id)
		} else {
			ids = append(ids, f.User1Id)
		}
	}
	return ids, nil
}

// ListRequests 列出指定状态的请求
func (r *friendRepositoryImpl) ListRequests(ctx context.Context, userId int64, incoming bool, status int8) ([]*model.FriendRequest, error) {
	column := "sender_id"
	if incoming {
		column = "recipient_id"
	}

	var requests []*model.FriendRequest
	err := r.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", userId, status).
		Order("created_at DESC").
		Limit(maxRequestList).
		Find(&requests).
		Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return requests, nil
}

// RelationSets 一次性取用户的三个关系集合，搜索结果按此分类
func (r *friendRepositoryImpl) RelationSets(ctx context.Context, userId int64) (map[int64]struct{}, map[int64]struct{}, map[int64]struct{}, error) {
	friendIds, err := r.ListFriendIds(ctx, userId)
	if err != nil {
		return nil, nil, nil, err
	}
	friends := make(map[int64]struct{}, len(friendIds))
	for _, id := range friendIds {
		friends[id] = struct{}{}
	}

	var pending []model.FriendRequest
	err = r.db.WithContext(ctx).
		Where("(sender_id = ? OR recipient_id = ?) AND status = ?", userId, userId, model.RequestStatusPending).
		Find(&pending).
		Error
	if err != nil {
		return nil, nil, nil, WrapDBError(err)
	}

	incoming := make(map[int64]struct{})
	outgoing := make(map[int64]struct{})
	for _, req := range pending {
		if req.RecipientId == userId {
			incoming[req.SenderId] = struct{}{}
		} else {
			outgoing[req.RecipientId] = struct{}{}
		}
	}

	return friends, incoming, outgoing, nil
}

// GetRequestUnread 读取入向请求未读计数，Redis 不可用时返回 0
func (r *friendRepositoryImpl) GetRequestUnread(ctx context.Context, userId int64) (int64, error) {
	if r.redisClient == nil {
		return 0, nil
	}
	count, err := r.redisClient.Get(ctx, rediskey.RequestUnreadKey(userId)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		LogRedisError(ctx, err)
		return 0, nil
	}
	return count, nil
}

// ClearRequestUnread 清零入向请求未读计数
func (r *friendRepositoryImpl) ClearRequestUnread(ctx context.Context, userId int64) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Del(ctx, rediskey.RequestUnreadKey(userId)).Err(); err != nil {
		LogRedisError(ctx, err)
	}
	return nil
}
