package model

import (
	"time"
)

// Review 评分/评论记录
// 唯一约束：(用户, 内容, 媒体类型) 仅一条，保存时做upsert
// 仅当内容在用户 watched 片单中时允许创建；内容被移出 watched 时级联删除

type Review struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:uniq_user_content_type,priority:1;comment:用户ID"`
	ContentID string    `gorm:"type:varchar(32);not null;uniqueIndex:uniq_user_content_type,priority:2;comment:外部目录内容ID"`
	MediaType string    `gorm:"type:varchar(16);not null;default:'movie';uniqueIndex:uniq_user_content_type,priority:3;comment:媒体类型(movie/tv)"`
	Rating    int       `gorm:"not null;comment:评分(1-5)"`
	Comment   string    `gorm:"type:text;comment:评论"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (Review) TableName() string { return "review" }
