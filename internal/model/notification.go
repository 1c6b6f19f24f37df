package model

import (
	"time"
)

// 通知类型
const (
	NotificationPartnerRequest = "partner_request"
	NotificationLibraryUpdate  = "library_update"
	NotificationSystem         = "system"
)

// 邀请状态（仅 partner_request 类型使用，与已读标记互相独立）
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRejected = "rejected"
)

// Notification 通知模型
// 用户通知流按时间排列；类型为 partner_request 的待处理通知即为未决邀请记录，
// 没有单独的邀请实体。Status 只承载邀请的业务状态，Read 只承载界面已读标记

type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index;comment:接收用户ID"`
	FromID    *uint     `gorm:"index;comment:发送者用户ID(可空)"`
	Type      string    `gorm:"type:varchar(32);not null;default:'partner_request';comment:通知类型"`
	Status    string    `gorm:"type:varchar(32);comment:邀请状态(仅partner_request)"`
	Message   string    `gorm:"type:varchar(512);comment:通知内容"`
	Read      bool      `gorm:"default:false;comment:是否已读"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (Notification) TableName() string { return "notification" }

// IsPendingInvite 是否为未决的伴侣邀请
func (n *Notification) IsPendingInvite() bool {
	return n.Type == NotificationPartnerRequest && n.Status == InviteStatusPending
}
