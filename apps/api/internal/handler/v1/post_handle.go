package v1

import (
	"strconv"

	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/middleware"
	"ClipServer/apps/api/internal/service"
	"ClipServer/consts"
	"ClipServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// PostHandler 投稿处理器
type PostHandler struct {
	postService service.IPostService
}

// NewPostHandler 创建投稿处理器
func NewPostHandler(postService service.IPostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// CreatePost 发布投稿接口
// @Summary 发布投稿
// @Description 发布一条视频投稿，匿名用户也可发布
// @Tags 投稿接口
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "发布投稿请求"
// @Success 200 {object} dto.PostView
// @Router /api/v1/post [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 绑定请求数据
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 作者可选，未登录按匿名投稿处理
	authorId, _ := middleware.GetUserId(c)

	// 3. 调用服务层处理业务逻辑（依赖注入）
	postView, err := h.postService.CreatePost(ctx, authorId, &req)
	if err != nil {
		failWithServiceError(c, "发布投稿服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, postView)
}

// GetFeed 获取最新投稿接口
// @Summary 获取最新投稿
// @Description 按时间倒序返回最新投稿
// @Tags 投稿接口
// @Accept json
// @Produce json
// @Param limit query int false "返回数量(默认20,最大50)"
// @Success 200 {object} dto.FeedResponse
// @Router /api/v1/public/post/feed [get]
func (h *PostHandler) GetFeed(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 解析查询参数
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	// 2. 调用服务层处理业务逻辑（依赖注入）
	feedResp, err := h.postService.GetFeed(ctx, limit)
	if err != nil {
		failWithServiceError(c, "获取最新投稿服务内部错误", err)
		return
	}

	// 3. 返回成功响应
	result.Success(c, feedResp)
}

// ListMyPosts 获取本人投稿列表接口
// @Summary 获取本人投稿列表
// @Description 分页返回当前用户的投稿
// @Tags 投稿接口
// @Accept json
// @Produce json
// @Param page query int false "页码(默认1)"
// @Param pageSize query int false "每页数量(默认20)"
// @Success 200 {object} dto.PostListResponse
// @Router /api/v1/post/mine [get]
func (h *PostHandler) ListMyPosts(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 解析分页参数，设置默认值
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	listResp, err := h.postService.ListByAuthor(ctx, userId, page, pageSize)
	if err != nil {
		failWithServiceError(c, "获取投稿列表服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, listResp)
}

// DeletePost 删除投稿接口
// @Summary 删除投稿
// @Description 删除本人的指定投稿
// @Tags 投稿接口
// @Accept json
// @Produce json
// @Param postId path int true "投稿 id"
// @Success 200
// @Router /api/v1/post/{postId} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 解析路径参数
	postId, ok := pathId(c, "postId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	if err := h.postService.DeletePost(ctx, userId, postId); err != nil {
		failWithServiceError(c, "删除投稿服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, nil)
}

// UploadMedia 上传媒体接口
// @Summary 上传媒体
// @Description 上传视频或封面文件到对象存储，返回访问 URL
// @Tags 投稿接口
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "媒体文件"
// @Success 200 {object} dto.UploadResponse
// @Router /api/v1/post/upload [post]
func (h *PostHandler) UploadMedia(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	if _, ok := middleware.GetUserId(c); !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 读取 multipart 文件
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		result.Fail(c, nil, consts.CodeUploadFail)
		return
	}
	defer file.Close()

	// 3. 调用服务层处理业务逻辑（依赖注入）
	uploadResp, err := h.postService.UploadMedia(
		ctx,
		file,
		fileHeader.Size,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		failWithServiceError(c, "上传媒体服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, uploadResp)
}
