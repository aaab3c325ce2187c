package dto

import (
	"time"

	"ClipServer/model"
)

// ==================== 投稿相关 DTO ====================

// CreatePostRequest 发布投稿请求 DTO
type CreatePostRequest struct {
	Caption      string `json:"caption" binding:"omitempty,max=255"`  // 标题
	VideoUrl     string `json:"videoUrl" binding:"required,max=512"`  // 视频地址（先上传后发布）
	ThumbnailUrl string `json:"thumbnailUrl" binding:"omitempty,max=512"` // 封面地址
}

// PostView 投稿视图 DTO
type PostView struct {
	Id           int64        `json:"id"`
	AuthorId     int64        `json:"authorId,omitempty"` // 0 表示匿名投稿
	Caption      string       `json:"caption"`
	VideoUrl     string       `json:"videoUrl"`
	ThumbnailUrl string       `json:"thumbnailUrl"`
	CreatedAt    time.Time    `json:"createdAt"`
	Author       *UserSummary `json:"author,omitempty"`
}

// ConvertPostView 从模型构建投稿视图
func ConvertPostView(post *model.Post, author *model.User) *PostView {
	if post == nil {
		return nil
	}
	view := &PostView{
		Id:           post.Id,
		Caption:      post.Caption,
		VideoUrl:     post.VideoUrl,
		ThumbnailUrl: post.ThumbnailUrl,
		CreatedAt:    post.CreatedAt,
		Author:       ConvertUserSummary(author),
	}
	if post.AuthorId != nil {
		view.AuthorId = *post.AuthorId
	}
	return view
}

// FeedResponse 最新投稿列表响应 DTO
type FeedResponse struct {
	Posts []*PostView `json:"posts"`
}

// PostListResponse 作者投稿列表响应 DTO
type PostListResponse struct {
	Posts      []*PostView     `json:"posts"`
	Pagination *PaginationInfo `json:"pagination"`
}

// UploadResponse 媒体上传响应 DTO
type UploadResponse struct {
	Url         string `json:"url"`         // 公网访问地址
	ObjectName  string `json:"objectName"`  // 对象名
	ContentType string `json:"contentType"` // 实际检测到的类型
	Size        int64  `json:"size"`        // 字节数
}
