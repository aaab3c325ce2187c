package v1

import (
	"ClipServer/apps/api/internal/dto"
	"ClipServer/apps/api/internal/middleware"
	"ClipServer/apps/api/internal/service"
	"ClipServer/consts"
	"ClipServer/pkg/logger"
	"ClipServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService service.IAuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// failWithServiceError 按 service 错误码返回失败响应
// 业务错误不记日志；冲突类错误附带 field 负载；其余按内部错误处理
func failWithServiceError(c *gin.Context, ctxMsg string, err error) {
	code, field := service.CodeOf(err)
	if consts.IsNonServerError(code) {
		if field != "" {
			result.FailConflict(c, field)
			return
		}
		result.Fail(c, nil, code)
		return
	}

	logger.Error(middleware.NewContextWithGin(c), ctxMsg,
		logger.ErrorField(err),
	)
	result.Fail(c, nil, consts.CodeInternalError)
}

// Anonymous 匿名开户接口
// @Summary 匿名开户
// @Description 按设备标识获取或创建匿名账号，返回新 Token
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.AnonymousRequest true "匿名开户请求"
// @Success 200 {object} dto.AuthResponse
// @Router /api/v1/public/auth/anonymous [post]
func (h *AuthHandler) Anonymous(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 绑定请求数据
	var req dto.AnonymousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 调用服务层处理业务逻辑（依赖注入）
	authResp, err := h.authService.EnsureAnonymous(ctx, req.DeviceId)
	if err != nil {
		failWithServiceError(c, "匿名开户服务内部错误", err)
		return
	}

	// 3. 返回成功响应
	result.Success(c, authResp)
}

// Register 注册接口
// @Summary 注册
// @Description 注册新账号，携带已有匿名账号的设备标识时原地转正
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册请求"
// @Success 200 {object} dto.AuthResponse
// @Router /api/v1/public/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 绑定请求数据
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 调用服务层处理业务逻辑（依赖注入）
	authResp, err := h.authService.Register(ctx, &req)
	if err != nil {
		failWithServiceError(c, "注册服务内部错误", err)
		return
	}

	// 3. 返回成功响应
	result.Success(c, authResp)
}

// Login 登录接口
// @Summary 登录
// @Description 用邮箱/手机号/用户名任意一种标识加密码登录
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.AuthResponse
// @Router /api/v1/public/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 绑定请求数据
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 调用服务层处理业务逻辑（依赖注入）
	authResp, err := h.authService.Login(ctx, &req)
	if err != nil {
		failWithServiceError(c, "登录服务内部错误", err)
		return
	}

	// 3. 返回成功响应
	result.Success(c, authResp)
}
