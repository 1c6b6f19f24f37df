package service

import (
	"errors"
	"testing"

	"srmdb/internal/model"
)

func TestNotificationListAndMarkRead(t *testing.T) {
	s := newMemStores()
	svc := NewNotificationService(s)
	aliceID, bobID := seedPair(s)

	_ = s.Notifications().Append(&model.Notification{
		UserID: aliceID, FromID: &bobID,
		Type: model.NotificationPartnerRequest, Status: model.InviteStatusPending,
		Message: "邀请",
	})
	_ = s.Notifications().Append(&model.Notification{
		UserID: aliceID, Type: model.NotificationSystem, Message: "系统消息",
	})
	_ = s.Notifications().Append(&model.Notification{
		UserID: bobID, Type: model.NotificationSystem, Message: "别人的消息",
	})

	items, err := svc.List(aliceID)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("通知条数 = %d, want 2", len(items))
	}
	// 最新的在前
	if items[0].Notification.Type != model.NotificationSystem {
		t.Errorf("首条通知类型 = %s", items[0].Notification.Type)
	}
	// 发送者信息已补全
	if items[1].From == nil || items[1].From.ID != bobID {
		t.Errorf("邀请通知发送者 = %+v", items[1].From)
	}

	system, err := svc.SystemList(aliceID)
	if err != nil {
		t.Fatalf("SystemList() = %v", err)
	}
	if len(system) != 1 || system[0].Notification.Message != "系统消息" {
		t.Fatalf("系统通知 = %+v", system)
	}

	// 未读计数（redis未初始化时回源内存仓储）
	count, err := svc.UnreadCount(aliceID)
	if err != nil {
		t.Fatalf("UnreadCount() = %v", err)
	}
	if count != 2 {
		t.Errorf("未读数 = %d, want 2", count)
	}

	if err := svc.MarkRead(aliceID, items[0].Notification.ID); err != nil {
		t.Fatalf("MarkRead() = %v", err)
	}
	count, _ = svc.UnreadCount(aliceID)
	if count != 1 {
		t.Errorf("标记已读后未读数 = %d, want 1", count)
	}

	// 标记不存在或他人的通知
	if err := svc.MarkRead(aliceID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRead(不存在) = %v, want ErrNotFound", err)
	}
	otherItems, _ := svc.List(bobID)
	if err := svc.MarkRead(aliceID, otherItems[0].Notification.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRead(他人通知) = %v, want ErrNotFound", err)
	}
}
