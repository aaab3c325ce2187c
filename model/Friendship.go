package model

import (
	"time"
)

// Friendship 好友关系表。
// 无方向关系存一行：user1_id < user2_id 的规范顺序，配合唯一索引保证
// 一对用户最多一条记录，入库前必须经过 CanonicalPair。
type Friendship struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	User1Id   int64     `gorm:"column:user1_id;not null;uniqueIndex:uidx_pair,priority:1;comment:较小的用户id"`
	User2Id   int64     `gorm:"column:user2_id;not null;uniqueIndex:uidx_pair,priority:2;index:idx_user2;comment:较大的用户id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Friendship) TableName() string { return "friendship" }

// CanonicalPair 把任意顺序的两个用户id整理为规范顺序（小者在前）
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
