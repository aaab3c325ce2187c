package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/repository"
	"ClipServer/consts"
	"ClipServer/model"
	"ClipServer/pkg/logger"
	pkgminio "ClipServer/pkg/minio"
	"ClipServer/pkg/util"
)

// postServiceImpl 投稿服务实现
type postServiceImpl struct {
	postRepo repository.IPostRepository
	userRepo repository.IUserRepository
	storage  *pkgminio.MinIOClient
}

// NewPostService 创建投稿服务实例
func NewPostService(postRepo repository.IPostRepository, userRepo repository.IUserRepository, storage *pkgminio.MinIOClient) IPostService {
	return &postServiceImpl{
		postRepo: postRepo,
		userRepo: userRepo,
		storage:  storage,
	}
}

// CreatePost 发布投稿。authorId=0 表示匿名发布，author_id 入库为 NULL。
func (s *postServiceImpl) CreatePost(ctx context.Context, authorId int64, req *dto.CreatePostRequest) (*dto.PostView, error) {
	post := &model.Post{
		Id:           util.NextId(),
		Caption:      strings.TrimSpace(req.Caption),
		VideoUrl:     req.VideoUrl,
		ThumbnailUrl: req.ThumbnailUrl,
	}
	var author *model.User
	if authorId > 0 {
		var err error
		author, err = s.userRepo.GetById(ctx, authorId)
		if err != nil {
			logger.Error(ctx, "查询作者失败", logger.ErrorField(err))
			return nil, NewBizError(consts.CodeInternalError)
		}
		if author == nil {
			return nil, NewBizError(consts.CodeUserNotFound)
		}
		post.AuthorId = &authorId
	}

	created, err := s.postRepo.Create(ctx, post)
	if err != nil {
		logger.Error(ctx, "创建投稿失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	logger.Info(ctx, "投稿已发布",
		logger.Int64("post_id", created.Id),
		logger.Int64("author_id", authorId),
	)
	return dto.ConvertPostView(created, author), nil
}

// GetFeed 最新投稿列表
func (s *postServiceImpl) GetFeed(ctx context.Context, limit int) (*dto.FeedResponse, error) {
	posts, err := s.postRepo.ListFeed(ctx, limit)
	if err != nil {
		logger.Error(ctx, "查询最新投稿失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	views := make([]*dto.PostView, 0, len(posts))
	for _, post := range posts {
		var author *model.User
		if post.AuthorId != nil {
			author, _ = s.userRepo.GetById(ctx, *post.AuthorId)
		}
		views = append(views, dto.ConvertPostView(post, author))
	}
	return &dto.FeedResponse{Posts: views}, nil
}

// ListByAuthor 某作者的投稿分页列表
func (s *postServiceImpl) ListByAuthor(ctx context.Context, authorId int64, page, pageSize int) (*dto.PostListResponse, error) {
	posts, total, err := s.postRepo.ListByAuthor(ctx, authorId, page, pageSize)
	if err != nil {
		logger.Error(ctx, "查询作者投稿失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeInternalError)
	}

	author, _ := s.userRepo.GetById(ctx, authorId)
	views := make([]*dto.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, dto.ConvertPostView(post, author))
	}

	return &dto.PostListResponse{
		Posts: views,
		Pagination: &dto.PaginationInfo{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// DeletePost 删除本人投稿
func (s *postServiceImpl) DeletePost(ctx context.Context, authorId, postId int64) error {
	post, err := s.postRepo.GetById(ctx, postId)
	if err != nil {
		logger.Error(ctx, "查询投稿失败", logger.ErrorField(err))
		return NewBizError(consts.CodeInternalError)
	}
	if post == nil {
		return NewBizError(consts.CodePostNotFound)
	}
	if post.AuthorId == nil || *post.AuthorId != authorId {
		return NewBizError(consts.CodeNotPostOwner)
	}

	deleted, err := s.postRepo.Delete(ctx, postId, authorId)
	if err != nil {
		logger.Error(ctx, "删除投稿失败", logger.ErrorField(err))
		return NewBizError(consts.CodeInternalError)
	}
	if !deleted {
		// 查到又删不到：并发下已被删，视为成功
		logger.Warn(ctx, "投稿删除竞态", logger.Int64("post_id", postId))
	}
	return nil
}

// UploadMedia 上传视频/封面。对象名用雪花 id，原始文件名只用于扩展名校验。
func (s *postServiceImpl) UploadMedia(ctx context.Context, reader io.Reader, size int64, fileName, contentType string) (*dto.UploadResponse, error) {
	if s.storage == nil {
		return nil, NewBizError(consts.CodeServiceUnavailable)
	}

	result, err := s.storage.Upload(ctx, reader, size, pkgminio.UploadOptions{
		PathPrefix:  "uploads/videos",
		FileName:    util.SnowflakeObjectName(fileName),
		ContentType: contentType,
	})
	if err != nil {
		if errors.Is(err, pkgminio.ErrStorageUnavailable) {
			return nil, NewBizError(consts.CodeServiceUnavailable)
		}
		logger.Error(ctx, "媒体上传失败", logger.ErrorField(err))
		return nil, NewBizError(consts.CodeUploadFail)
	}

	return &dto.UploadResponse{
		Url:         result.URL,
		ObjectName:  result.ObjectName,
		ContentType: result.ContentType,
		Size:        result.Size,
	}, nil
}
