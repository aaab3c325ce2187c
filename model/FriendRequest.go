package model

import (
	"time"
)

// 好友请求状态
const (
	RequestStatusPending  int8 = 0 // 等待处理
	RequestStatusAccepted int8 = 1 // 已接受
	RequestStatusDeclined int8 = 2 // 已拒绝
)

// FriendRequest 好友请求表。
// 方向性记录：sender -> recipient。同一对用户同方向最多一条 pending，
// 由业务层去重（幂等返回已有 pending），历史请求（accepted/declined）保留不删。
type FriendRequest struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	SenderId    int64     `gorm:"column:sender_id;not null;index:idx_sender,priority:1;comment:发起方用户id"`
	RecipientId int64     `gorm:"column:recipient_id;not null;index:idx_recipient,priority:1;comment:接收方用户id"`
	Status      int8      `gorm:"column:status;not null;default:0;index:idx_sender,priority:2;index:idx_recipient,priority:2;comment:状态 0=待处理 1=已接受 2=已拒绝"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FriendRequest) TableName() string { return "friend_request" }
