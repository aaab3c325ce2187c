package model

import (
	"time"
)

// Post 视频投稿表。author_id 可空：早期匿名上传的内容没有归属。
type Post struct {
	Id           int64     `gorm:"column:id;primaryKey;comment:雪花id"`
	AuthorId     *int64    `gorm:"column:author_id;index:idx_author;comment:作者用户id，可空"`
	Caption      string    `gorm:"column:caption;type:varchar(255);comment:标题"`
	VideoUrl     string    `gorm:"column:video_url;type:varchar(512);not null;comment:视频地址"`
	ThumbnailUrl string    `gorm:"column:thumbnail_url;type:varchar(512);comment:封面地址"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index:idx_created"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Post) TableName() string { return "post" }
