package dto

import (
	"ClipServer/model"
)

// ==================== 用户相关 DTO ====================

// UserProfile 用户完整资料 DTO（本人视角）
type UserProfile struct {
	Id              int64  `json:"id"`              // 用户id
	Email           string `json:"email"`           // 邮箱
	Phone           string `json:"phone"`           // 手机号（规范化10位）
	Handle          string `json:"handle"`          // 用户名
	FullName        string `json:"fullName"`        // 姓名
	Bio             string `json:"bio"`             // 简介
	Website         string `json:"website"`         // 个人网站
	AvatarUri       string `json:"avatarUri"`       // 头像
	Language        string `json:"language"`        // 界面语言
	IsPhoneVerified bool   `json:"isPhoneVerified"` // 手机号是否已验证
	IsAnonymous     bool   `json:"isAnonymous"`     // 是否匿名账号（未设置密码）
}

// ConvertUserProfile 从模型构建完整资料
func ConvertUserProfile(user *model.User) *UserProfile {
	if user == nil {
		return nil
	}
	profile := &UserProfile{
		Id:              user.Id,
		FullName:        user.FullName,
		Bio:             user.Bio,
		Website:         user.Website,
		AvatarUri:       user.AvatarUri,
		Language:        user.Language,
		IsPhoneVerified: user.IsPhoneVerified,
		IsAnonymous:     !user.IsClaimed(),
	}
	if user.Email != nil {
		profile.Email = *user.Email
	}
	if user.Phone != nil {
		profile.Phone = *user.Phone
	}
	if user.Handle != nil {
		profile.Handle = *user.Handle
	}
	return profile
}

// UpdateProfileRequest 资料更新请求 DTO。
// 每个字段都是三态语义：
//
//	字段缺失（nil）      -> 保持不变
//	字段为空串           -> 清空为 NULL / 空
//	字段为非空值         -> 规范化后写入
//
// 所以全部用指针，handler 不做任何格式校验。
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName"`  // 姓名
	Bio       *string `json:"bio"`       // 简介
	Website   *string `json:"website"`   // 个人网站
	AvatarUri *string `json:"avatarUri"` // 头像地址
	Language  *string `json:"language"`  // 界面语言
	Handle    *string `json:"handle"`    // 用户名
	Email     *string `json:"email"`     // 邮箱
	Phone     *string `json:"phone"`     // 手机号
}

// SearchUsersRequest 用户搜索请求 DTO（query 参数）
type SearchUsersRequest struct {
	Query string `form:"q" binding:"required,min=1,max=64"` // 搜索串
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// SearchUsersResponse 用户搜索响应 DTO
type SearchUsersResponse struct {
	Users []*UserSummary `json:"users"` // 搜索结果（带关系分类）
}
