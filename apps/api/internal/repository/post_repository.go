package repository

import (
	"context"
	"encoding/json"
	"errors"

	rediskey "ClipServer/consts/redisKey"
	"ClipServer/model"
	"ClipServer/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// postRepositoryImpl 投稿数据访问层实现
type postRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewPostRepository 创建投稿仓储实例
func NewPostRepository(db *gorm.DB, redisClient *redis.Client) IPostRepository {
	return &postRepositoryImpl{db: db, redisClient: redisClient}
}

// Create 创建投稿，发布后失效最新列表缓存
func (r *postRepositoryImpl) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	err := r.db.WithContext(ctx).Create(post).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	// 最新列表缓存 TTL 很短，删除失败不进重试队列
	if r.redisClient != nil {
		if err := r.redisClient.Del(ctx, rediskey.FeedKey(feedCacheLimit)).Err(); err != nil && err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	return post, nil
}

// GetById 根据 id 查询投稿
func (r *postRepositoryImpl) GetById(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &post, nil
}

// feedCacheLimit 最新列表缓存的固定容量。
// 只缓存这一档，limit 小于它时从缓存截取，大于它时直接查库。
const feedCacheLimit = 50

// ListFeed 按时间倒序取最新投稿
func (r *postRepositoryImpl) ListFeed(ctx context.Context, limit int) ([]*model.Post, error) {
	if limit <= 0 || limit > feedCacheLimit {
		return r.listFeedFromDB(ctx, limit)
	}

	cacheKey := rediskey.FeedKey(feedCacheLimit)
	if r.redisClient != nil {
		cachedData, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var posts []*model.Post
			if err := json.Unmarshal([]byte(cachedData), &posts); err == nil {
				if len(posts) > limit {
					posts = posts[:limit]
				}
				return posts, nil
			}
		}
		if err != nil && err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	posts, err := r.listFeedFromDB(ctx, feedCacheLimit)
	if err != nil {
		return nil, err
	}

	if r.redisClient != nil {
		if postsJSON, err := json.Marshal(posts); err == nil {
			expire := getRandomExpireTime(rediskey.FeedTTL)
			async.RunSafe(ctx, func(runCtx context.Context) {
				if err := r.redisClient.Set(runCtx, cacheKey, postsJSON, expire).Err(); err != nil {
					LogRedisError(runCtx, err)
				}
			}, 0)
		}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *postRepositoryImpl) listFeedFromDB(ctx context.Context, limit int) ([]*model.Post, error) {
	if limit <= 0 || limit > 200 {
		limit = feedCacheLimit
	}
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).
		Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return posts, nil
}

// ListByAuthor 分页列出某作者的投稿
func (r *postRepositoryImpl) ListByAuthor(ctx context.Context, authorId int64, page, pageSize int) ([]*model.Post, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 20
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("author_id = ?", authorId).
		Count(&total).
		Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}

	var posts []*model.Post
	err = r.db.WithContext(ctx).
		Where("author_id = ?", authorId).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).
		Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}

	return posts, total, nil
}

// Delete 删除投稿，归属校验放在 WHERE 里
func (r *postRepositoryImpl) Delete(ctx context.Context, id, authorId int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorId).
		Delete(&model.Post{})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}

	if result.RowsAffected > 0 && r.redisClient != nil {
		if err := r.redisClient.Del(ctx, rediskey.FeedKey(feedCacheLimit)).Err(); err != nil && err != redis.Nil {
			LogRedisError(ctx, err)
		}
	}

	return result.RowsAffected > 0, nil
}
