package service

import (
	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/redis"
	"srmdb/pkg/websocket"
)

// pushNotification 落库通知并维护未读计数、推送实时事件
// redis不可用时计数静默降级（读取时会回源数据库）
func pushNotification(stores ports.Stores, notifier ports.Notifier, n *model.Notification) error {
	if err := stores.Notifications().Append(n); err != nil {
		return err
	}
	_ = redis.IncrUnread(n.UserID)
	if notifier != nil {
		notifier.Emit(n.UserID, websocket.EventNotificationUpdate, "")
	}
	return nil
}
