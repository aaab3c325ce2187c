package dto

import (
	"ClipServer/model"
)

// ==================== 通用 DTO 定义 ====================

// 搜索结果里相对于当前用户的关系分类
const (
	RelationFriend   = "friend"   // 已是好友
	RelationIncoming = "incoming" // 对方向我发了待处理申请
	RelationOutgoing = "outgoing" // 我向对方发了待处理申请
	RelationNone     = "none"     // 无关系
	RelationUnknown  = "unknown"  // 无当前用户，无从判断
)

// UserSummary 简化用户信息 DTO（列表、搜索结果用）
type UserSummary struct {
	Id           int64  `json:"id"`                     // 用户id
	Handle       string `json:"handle"`                 // 用户名
	FullName     string `json:"fullName"`               // 姓名
	AvatarUri    string `json:"avatarUri"`              // 头像
	Relationship string `json:"relationship,omitempty"` // 与当前用户的关系
}

// ConvertUserSummary 从模型构建简化用户信息
func ConvertUserSummary(user *model.User) *UserSummary {
	if user == nil {
		return nil
	}
	summary := &UserSummary{
		Id:        user.Id,
		FullName:  user.FullName,
		AvatarUri: user.AvatarUri,
	}
	if user.Handle != nil {
		summary.Handle = *user.Handle
	}
	return summary
}

// PaginationInfo 分页信息 DTO
type PaginationInfo struct {
	Page     int   `json:"page"`     // 当前页码
	PageSize int   `json:"pageSize"` // 每页数量
	Total    int64 `json:"total"`    // 总数
}
