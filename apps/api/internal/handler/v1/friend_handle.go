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

// FriendHandler 好友处理器
type FriendHandler struct {
	friendService service.IFriendService
}

// NewFriendHandler 创建好友处理器
func NewFriendHandler(friendService service.IFriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// pathId 解析路径参数里的数字 id
func pathId(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// SendRequest 发送好友申请接口
// @Summary 发送好友申请
// @Description 向目标用户发送好友申请，重复发送幂等返回已有申请
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param request body dto.SendFriendRequestRequest true "发送好友申请请求"
// @Success 200 {object} dto.FriendRequestView
// @Router /api/v1/friend/requests [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 绑定请求数据
	var req dto.SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	view, err := h.friendService.SendRequest(ctx, userId, req.RecipientId)
	if err != nil {
		failWithServiceError(c, "发送好友申请服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, view)
}

// AcceptRequest 接受好友申请接口
// @Summary 接受好友申请
// @Description 接受指定的好友申请并建立好友关系，重复接受返回当前状态
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param requestId path int true "申请 id"
// @Success 200 {object} dto.FriendRequestView
// @Router /api/v1/friend/requests/{requestId}/accept [post]
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 解析路径参数
	requestId, ok := pathId(c, "requestId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	view, err := h.friendService.AcceptRequest(ctx, userId, requestId)
	if err != nil {
		failWithServiceError(c, "接受好友申请服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, view)
}

// DeclineRequest 拒绝好友申请接口
// @Summary 拒绝好友申请
// @Description 拒绝指定的好友申请
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param requestId path int true "申请 id"
// @Success 200 {object} dto.FriendRequestView
// @Router /api/v1/friend/requests/{requestId}/decline [post]
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 解析路径参数
	requestId, ok := pathId(c, "requestId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	view, err := h.friendService.DeclineRequest(ctx, userId, requestId)
	if err != nil {
		failWithServiceError(c, "拒绝好友申请服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, view)
}

// ListRequests 获取好友申请列表接口
// @Summary 获取好友申请列表
// @Description 获取待处理的好友申请，direction=incoming(默认)/outgoing
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param direction query string false "方向(incoming/outgoing)"
// @Success 200 {object} dto.FriendRequestListResponse
// @Router /api/v1/friend/requests [get]
func (h *FriendHandler) ListRequests(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 解析方向，默认收到的申请
	incoming := c.DefaultQuery("direction", "incoming") != "outgoing"

	// 3. 调用服务层处理业务逻辑（依赖注入）
	listResp, err := h.friendService.ListRequests(ctx, userId, incoming)
	if err != nil {
		failWithServiceError(c, "获取好友申请列表服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, listResp)
}

// ListFriends 获取好友列表接口
// @Summary 获取好友列表
// @Description 获取当前用户的好友列表
// @Tags 好友接口
// @Accept json
// @Produce json
// @Success 200 {object} dto.FriendListResponse
// @Router /api/v1/friend/list [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 调用服务层处理业务逻辑（依赖注入）
	listResp, err := h.friendService.ListFriends(ctx, userId)
	if err != nil {
		failWithServiceError(c, "获取好友列表服务内部错误", err)
		return
	}

	// 3. 返回成功响应
	result.Success(c, listResp)
}

// RemoveFriend 删除好友接口
// @Summary 删除好友
// @Description 解除与指定用户的好友关系，关系不存在时无害返回
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param friendId path int true "好友用户 id"
// @Success 200 {object} dto.RemoveFriendResponse
// @Router /api/v1/friend/{friendId} [delete]
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. 获取当前登录用户
	userId, ok := middleware.GetUserId(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	// 2. 解析路径参数
	friendId, ok := pathId(c, "friendId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. 调用服务层处理业务逻辑（依赖注入）
	removeResp, err := h.friendService.RemoveFriend(ctx, userId, friendId)
	if err != nil {
		failWithServiceError(c, "删除好友服务内部错误", err)
		return
	}

	// 4. 返回成功响应
	result.Success(c, removeResp)
}
