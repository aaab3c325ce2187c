package model

import (
	"time"
)

// User 用户表。
// 身份标识：device_id 永远存在（匿名账号用合成值），email/phone/handle 可空。
// 约束：四个标识各自全局唯一，NULL 之间不冲突（多个用户可以都没有 phone），
// 因此可空标识用指针建模，空值入库为 NULL 而不是空串。
// 状态：password_hash 为 NULL 表示匿名账号（可被转正），非 NULL 表示已认领账号。
type User struct {
	Id       int64   `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	DeviceId string  `gorm:"column:device_id;type:varchar(64);not null;uniqueIndex:uidx_device;comment:设备唯一标识"`
	Email    *string `gorm:"column:email;type:varchar(255);uniqueIndex:uidx_email;comment:邮箱（规范化小写）"`
	Phone    *string `gorm:"column:phone;type:char(10);uniqueIndex:uidx_phone;comment:手机号（10位本地格式）"`
	Handle   *string `gorm:"column:handle;type:varchar(24);uniqueIndex:uidx_handle;comment:用户名"`

	// 资料字段
	FullName        string `gorm:"column:full_name;type:varchar(64);comment:姓名"`
	Bio             string `gorm:"column:bio;type:varchar(255);comment:简介"`
	Website         string `gorm:"column:website;type:varchar(255);comment:个人网站"`
	AvatarUri       string `gorm:"column:avatar_uri;type:varchar(512);comment:头像地址"`
	Language        string `gorm:"column:language;type:varchar(8);comment:界面语言"`
	IsPhoneVerified bool   `gorm:"column:is_phone_verified;not null;default:0;comment:手机号是否已验证"`

	// 凭据：NULL=匿名账号 非NULL=已认领
	PasswordHash *string `gorm:"column:password_hash;type:varchar(128);comment:密码哈希（bcrypt）"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "user" }

// IsClaimed 是否为已认领账号（设置过密码）
func (u *User) IsClaimed() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
