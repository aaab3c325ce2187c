package v1

import (
	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/middleware"
	"ClipServer/apps/api/internal/service"
	"ClipServer/consts"
	"ClipServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	userService service.IUserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userService service.IUserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile 获取本人资料接口
// @Summary 获取本人资料
// @Description 获取当前登录用户的完整资料
// @Tags 用户接口
// @Accept json
// @Produce json
// @Success 200 {object} dto.UserProfile
// @Router /api/v1/user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 调用服务层处理业务逻辑（依赖注入）
	profile, err := h.userService.GetProfile(ctx, userId)
	if err != nil {
		failWithServiceError(c, "获取资料服务内部错误", err)
		return
	}

	// 3. 返回成功响应
	result.Success(c, profile)
}

// UpdateProfile 更新资料接口
// @Summary 更新资料
// @Description 三态更新：字段缺省不动，空字符串清除，非空设置
// @Tags 用户接口
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "更新资料请求"
// @Success 200 {object} dto.UserProfile
// @Router /api/v1/user/profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 绑定请求数据
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	profile, err := h.userService.UpdateProfile(ctx, userId, &req)
	if err != nil {
		failWithServiceError(c, "更新资料服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, profile)
}

// SearchUsers 搜索用户接口
// @Summary 搜索用户
// @Description 按昵称/用户名/邮箱/手机号搜索，结果附带与当前用户的关系
// @Tags 用户接口
// @Accept json
// @Produce json
// @Param q query string true "搜索关键词"
// @Param limit query int false "返回数量(默认20,最大50)"
// @Success 200 {object} dto.SearchUsersResponse
// @Router /api/v1/user/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 绑定查询参数
	var req dto.SearchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 当前用户可选，未登录时关系一律 unknown
	actingUserId, _ := middleware.GetUserId(c)

	// 3. 调用服务层处理业务逻辑（依赖注入）
	searchResp, err := h.userService.SearchUsers(ctx, actingUserId, &req)
	if err != nil {
		failWithServiceError(c, "搜索用户服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, searchResp)
}
