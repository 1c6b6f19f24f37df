package service

import (
	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/redis"
)

// NotificationItem 通知及其发送者
type NotificationItem struct {
	Notification *model.Notification
	From         *model.User
}

// NotificationService 通知服务
// 未读计数走redis热计数，缓存缺失或redis不可用时回源数据库
type NotificationService struct {
	stores ports.Stores
}

func NewNotificationService(stores ports.Stores) *NotificationService {
	return &NotificationService{stores: stores}
}

// List 获取通知流，最新的在前
func (s *NotificationService) List(userID uint) ([]*NotificationItem, error) {
	notifications, err := s.stores.Notifications().ByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.attachSenders(notifications)
}

// SystemList 仅获取系统通知
func (s *NotificationService) SystemList(userID uint) ([]*NotificationItem, error) {
	notifications, err := s.stores.Notifications().ByUser(userID)
	if err != nil {
		return nil, err
	}
	var system []*model.Notification
	for _, n := range notifications {
		if n.Type == model.NotificationSystem {
			system = append(system, n)
		}
	}
	return s.attachSenders(system)
}

// attachSenders 批量补全发送者信息，同一发送者只查一次
func (s *NotificationService) attachSenders(notifications []*model.Notification) ([]*NotificationItem, error) {
	senders := make(map[uint]*model.User)
	items := make([]*NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		item := &NotificationItem{Notification: n}
		if n.FromID != nil {
			from, ok := senders[*n.FromID]
			if !ok {
				var err error
				from, err = s.stores.Users().GetByID(*n.FromID)
				if err != nil {
					return nil, err
				}
				senders[*n.FromID] = from
			}
			item.From = from
		}
		items = append(items, item)
	}
	return items, nil
}

// MarkRead 将单条通知标记为已读
func (s *NotificationService) MarkRead(userID, id uint) error {
	n, err := s.stores.Notifications().GetByID(userID, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotFound
	}
	if n.Read {
		return nil
	}
	n.Read = true
	if err := s.stores.Notifications().Save(n); err != nil {
		return err
	}
	_ = redis.DecrUnread(userID)
	return nil
}

// UnreadCount 未读通知数量，优先读redis计数
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	if cached, err := redis.GetUnread(userID); err == nil && cached >= 0 {
		return cached, nil
	}
	count, err := s.stores.Notifications().UnreadCount(userID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetUnread(userID, count)
	return count, nil
}
