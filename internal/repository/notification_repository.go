package repository

import (
	"errors"

	"srmdb/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据仓储
type NotificationRepository struct {
	orm *gorm.DB
}

// ByUser 获取用户全部通知，最新的在前
func (r *NotificationRepository) ByUser(userID uint) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := r.orm.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// GetByID 获取属于该用户的单条通知，不存在时返回 (nil, nil)
func (r *NotificationRepository) GetByID(userID, id uint) (*model.Notification, error) {
	var n model.Notification
	err := r.orm.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// Append 追加通知
func (r *NotificationRepository) Append(n *model.Notification) error {
	return r.orm.Create(n).Error
}

// Save 保存通知变更
func (r *NotificationRepository) Save(n *model.Notification) error {
	return r.orm.Save(n).Error
}

// PendingInviteExists 同一发送者是否已有未决邀请
// 只做尽力而为的扫描：已拒绝的邀请不计入，允许被拒后重新发送
func (r *NotificationRepository) PendingInviteExists(userID, fromID uint) (bool, error) {
	var count int64
	err := r.orm.Model(&model.Notification{}).
		Where("user_id = ? AND from_id = ? AND type = ? AND status = ?",
			userID, fromID, model.NotificationPartnerRequest, model.InviteStatusPending).
		Count(&count).Error
	return count > 0, err
}

// UnreadCount 未读通知数量
func (r *NotificationRepository) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.orm.Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}
