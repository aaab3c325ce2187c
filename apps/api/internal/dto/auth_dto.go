package dto

// ==================== 认证相关 DTO ====================

// AnonymousRequest 匿名开户请求 DTO
type AnonymousRequest struct {
	DeviceId string `json:"deviceId" binding:"required,min=1,max=64"` // 设备唯一标识（必填）
}

// RegisterRequest 注册请求 DTO。
// 字段格式校验在 service 层做（规范化和校验是一体的），
// binding 只管必填。
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,min=1,max=64"` // 姓名（必填）
	Email    string `json:"email" binding:"required"`                 // 邮箱（必填）
	Phone    string `json:"phone" binding:"required"`                 // 手机号（必填）
	Password string `json:"password" binding:"required,min=8"`        // 密码（必填，至少8位）
	DeviceId string `json:"deviceId" binding:"omitempty,max=64"`      // 设备标识（可选，用于匿名转正）
}

// LoginRequest 登录请求 DTO
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,min=1"` // 邮箱/手机号/用户名
	Password   string `json:"password" binding:"required,min=1"`   // 密码
}

// AuthResponse 认证响应 DTO：开户/注册/登录统一返回
type AuthResponse struct {
	Token string       `json:"token"` // 访问令牌
	User  *UserProfile `json:"user"`  // 用户信息
}
