package repository

import (
	"ClipServer/model"
	"context"
)

// ==================== 用户 Repository ====================

// IUserRepository 用户数据访问接口。
// 按标识查询的方法在用户不存在时返回 (nil, nil)，不当作错误。
type IUserRepository interface {
	// GetById 根据 id 查询用户（带缓存）
	GetById(ctx context.Context, id int64) (*model.User, error)

	// GetByDeviceId 根据设备标识查询用户
	GetByDeviceId(ctx context.Context, deviceId string) (*model.User, error)

	// GetByEmail 根据规范化邮箱查询用户
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByHandle 根据用户名查询用户
	GetByHandle(ctx context.Context, handle string) (*model.User, error)

	// GetByPhoneCandidates 按手机号历史变体 OR 匹配查询用户
	GetByPhoneCandidates(ctx context.Context, candidates []string) (*model.User, error)

	// Create 创建新用户
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// Update 按字段更新用户并失效缓存
	Update(ctx context.Context, userId int64, updates map[string]interface{}) error

	// IsFieldTaken 检查唯一标识是否已被其他用户占用（排除 excludeId 自己的行）
	IsFieldTaken(ctx context.Context, field, value string, excludeId int64) (bool, error)

	// Search 按名称/用户名/邮箱/手机号模糊搜索，排除 excludeId
	Search(ctx context.Context, query string, excludeId int64, limit int) ([]*model.User, error)

	// StoreAccessToken 在 Redis 中记录签发的 AccessToken
	StoreAccessToken(ctx context.Context, userId int64, deviceId, token string) error
}

// ==================== 好友 Repository ====================

// IFriendRepository 好友请求与好友关系数据访问接口
type IFriendRepository interface {
	// GetRequestById 根据 id 查询好友请求
	GetRequestById(ctx context.Context, id int64) (*model.FriendRequest, error)

	// GetPendingRequest 查询 sender→recipient 方向的待处理请求
	GetPendingRequest(ctx context.Context, senderId, recipientId int64) (*model.FriendRequest, error)

	// CreateRequest 创建好友请求
	CreateRequest(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error)

	// AcceptRequest 接受好友请求：状态流转和好友关系写入在同一事务里。
	// alreadyProcessed 为 true 表示请求早已离开 pending（幂等场景）。
	AcceptRequest(ctx context.Context, req *model.FriendRequest) (alreadyProcessed bool, err error)

	// DeclineRequest 拒绝好友请求，幂等语义同 AcceptRequest
	DeclineRequest(ctx context.Context, requestId int64) (alreadyProcessed bool, err error)

	// GetFriendship 查询规范对的好友关系，不存在返回 (nil, nil)
	GetFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error)

	// RemoveFriendship 删除好友关系，removed 为 false 表示本来就不存在
	RemoveFriendship(ctx context.Context, userA, userB int64) (removed bool, err error)

	// ListFriendIds 列出用户的全部好友 id
	ListFriendIds(ctx context.Context, userId int64) ([]int64, error)

	// ListRequests 列出指定状态的请求，incoming=true 取收到的，否则取发出的
	ListRequests(ctx context.Context, userId int64, incoming bool, status int8) ([]*model.FriendRequest, error)

	// RelationSets 取用户的关系集合（好友 / 待处理入向 / 待处理出向），搜索结果分类用
	RelationSets(ctx context.Context, userId int64) (friends, incoming, outgoing map[int64]struct{}, err error)

	// GetRequestUnread 读取入向请求未读计数
	GetRequestUnread(ctx context.Context, userId int64) (int64, error)

	// ClearRequestUnread 清零入向请求未读计数
	ClearRequestUnread(ctx context.Context, userId int64) error
}

// ==================== 投稿 Repository ====================

// IPostRepository 视频投稿数据访问接口
type IPostRepository interface {
	// Create 创建投稿
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// GetById 根据 id 查询投稿，不存在返回 (nil, nil)
	GetById(ctx context.Context, id int64) (*model.Post, error)

	// ListFeed 按时间倒序取最新投稿（带短 TTL 缓存）
	ListFeed(ctx context.Context, limit int) ([]*model.Post, error)

	// ListByAuthor 分页列出某作者的投稿
	ListByAuthor(ctx context.Context, authorId int64, page, pageSize int) ([]*model.Post, int64, error)

	// Delete 删除投稿，deleted 为 false 表示不存在或不属于该作者
	Delete(ctx context.Context, id, authorId int64) (deleted bool, err error)
}
