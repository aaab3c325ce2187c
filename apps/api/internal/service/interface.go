package service

import (
	"context"
	"io"

	"ClipServer/apps/api/internal/dto"
)

// ==================== 认证服务 ====================

// IAuthService 匿名开户、注册、登录
type IAuthService interface {
	// EnsureAnonymous 按设备标识取或建匿名账号，总是签发新 Token
	EnsureAnonymous(ctx context.Context, deviceId string) (*dto.AuthResponse, error)

	// Register 注册（带匿名转正语义）
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)

	// Login 按任意标识（邮箱/手机号/用户名）登录
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

// ==================== 用户服务 ====================

// IUserService 资料读取、更新、搜索
type IUserService interface {
	// GetProfile 获取本人资料
	GetProfile(ctx context.Context, userId int64) (*dto.UserProfile, error)

	// UpdateProfile 三态语义更新资料
	UpdateProfile(ctx context.Context, userId int64, req *dto.UpdateProfileRequest) (*dto.UserProfile, error)

	// SearchUsers 搜索用户并按 actingUserId 视角分类关系，actingUserId=0 表示无当前用户
	SearchUsers(ctx context.Context, actingUserId int64, req *dto.SearchUsersRequest) (*dto.SearchUsersResponse, error)
}

// ==================== 好友服务 ====================

// IFriendService 好友请求协议与好友关系
type IFriendService interface {
	// SendRequest 发送好友申请（含幂等与镜像判定）
	SendRequest(ctx context.Context, senderId, recipientId int64) (*dto.FriendRequestView, error)

	// AcceptRequest 接受申请（事务性），返回申请的当前状态
	AcceptRequest(ctx context.Context, userId, requestId int64) (*dto.FriendRequestView, error)

	// DeclineRequest 拒绝申请，幂等
	DeclineRequest(ctx context.Context, userId, requestId int64) (*dto.FriendRequestView, error)

	// RemoveFriend 删除好友，不存在时为无害空操作
	RemoveFriend(ctx context.Context, userId, friendId int64) (*dto.RemoveFriendResponse, error)

	// ListFriends 好友列表
	ListFriends(ctx context.Context, userId int64) (*dto.FriendListResponse, error)

	// ListRequests 待处理申请列表，incoming=true 顺带返回并清零未读计数
	ListRequests(ctx context.Context, userId int64, incoming bool) (*dto.FriendRequestListResponse, error)
}

// ==================== 投稿服务 ====================

// IPostService 投稿发布、浏览、媒体上传
type IPostService interface {
	// CreatePost 发布投稿，authorId=0 表示匿名发布
	CreatePost(ctx context.Context, authorId int64, req *dto.CreatePostRequest) (*dto.PostView, error)

	// GetFeed 最新投稿列表
	GetFeed(ctx context.Context, limit int) (*dto.FeedResponse, error)

	// ListByAuthor 某作者的投稿分页列表
	ListByAuthor(ctx context.Context, authorId int64, page, pageSize int) (*dto.PostListResponse, error)

	// DeletePost 删除本人投稿
	DeletePost(ctx context.Context, authorId, postId int64) error

	// UploadMedia 上传视频/封面到对象存储
	UploadMedia(ctx context.Context, reader io.Reader, size int64, fileName, contentType string) (*dto.UploadResponse, error)
}
