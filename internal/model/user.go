package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// PartnerID 指向当前绑定的伴侣账号，最多同时存在一个
// 对称约束：A.PartnerID == B.ID 时必须有 B.PartnerID == A.ID（由伴侣服务在事务内保证）

type User struct {
	ID             uint           `gorm:"primaryKey"`
	Username       string         `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Name           string         `gorm:"type:varchar(64);not null;comment:显示名称"`
	Email          string         `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱"`
	PasswordHash   string         `gorm:"type:varchar(255);not null;comment:密码哈希"`
	ProfilePicture string         `gorm:"type:varchar(512);comment:头像URL"`
	PartnerID      *uint          `gorm:"index;comment:伴侣用户ID"`
	CreatedAt      time.Time      `gorm:"comment:创建时间"`
	UpdatedAt      time.Time      `gorm:"comment:更新时间"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }

// HasPartner 是否已绑定伴侣
func (u *User) HasPartner() bool { return u.PartnerID != nil }
