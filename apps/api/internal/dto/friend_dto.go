package dto

import (
	"time"

	"ClipServer/model"
)

// ==================== 好友相关 DTO ====================

// SendFriendRequestRequest 发送好友申请请求 DTO
type SendFriendRequestRequest struct {
	RecipientId int64 `json:"recipientId" binding:"required,gt=0"` // 接收方用户id
}

// FriendRequestView 好友申请视图 DTO
type FriendRequestView struct {
	Id          int64        `json:"id"`             // 申请id
	SenderId    int64        `json:"senderId"`       // 发起方
	RecipientId int64        `json:"recipientId"`    // 接收方
	Status      string       `json:"status"`         // pending/accepted/declined
	CreatedAt   time.Time    `json:"createdAt"`      // 创建时间
	Peer        *UserSummary `json:"peer,omitempty"` // 对端用户信息
}

// ConvertFriendRequestView 从模型构建申请视图
func ConvertFriendRequestView(req *model.FriendRequest, peer *model.User) *FriendRequestView {
	if req == nil {
		return nil
	}
	return &FriendRequestView{
		Id:          req.Id,
		SenderId:    req.SenderId,
		RecipientId: req.RecipientId,
		Status:      RequestStatusName(req.Status),
		CreatedAt:   req.CreatedAt,
		Peer:        ConvertUserSummary(peer),
	}
}

// RequestStatusName 请求状态的对外表示
func RequestStatusName(status int8) string {
	switch status {
	case model.RequestStatusPending:
		return "pending"
	case model.RequestStatusAccepted:
		return "accepted"
	case model.RequestStatusDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// FriendRequestListResponse 好友申请列表响应 DTO
type FriendRequestListResponse struct {
	Requests []*FriendRequestView `json:"requests"` // 申请列表
	Unread   int64                `json:"unread"`   // 未读计数（仅入向列表）
}

// FriendListResponse 好友列表响应 DTO
type FriendListResponse struct {
	Friends []*UserSummary `json:"friends"` // 好友列表
}

// RemoveFriendRequest 删除好友请求 DTO
type RemoveFriendRequest struct {
	FriendId int64 `json:"friendId" binding:"required,gt=0"` // 要删除的好友id
}

// RemoveFriendResponse 删除好友响应 DTO
type RemoveFriendResponse struct {
	Removed bool `json:"removed"` // false 表示本来就不是好友（无害空操作）
}
