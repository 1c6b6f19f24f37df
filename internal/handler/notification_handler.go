package handler

import (
	"strconv"

	"srmdb/internal/service"
	"srmdb/pkg/jwt"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func toNotificationInfos(items []*service.NotificationItem) []*response.NotificationInfo {
	infos := make([]*response.NotificationInfo, 0, len(items))
	for _, item := range items {
		infos = append(infos, response.FilterNotificationInfo(item.Notification, item.From))
	}
	return infos
}

// List 获取通知流（最新的在前），附带未读数
func (h *NotificationHandler) List(c *gin.Context) {
	userID := jwt.GetUserID(c)
	items, err := h.notifications.List(userID)
	if err != nil {
		fail(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"notifications": toNotificationInfos(items),
		"unreadCount":   unread,
	})
}

// System 仅获取系统通知
func (h *NotificationHandler) System(c *gin.Context) {
	items, err := h.notifications.SystemList(jwt.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"notifications": toNotificationInfos(items)})
}

// MarkRead 将单条通知标记为已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的通知ID")
		return
	}
	if err := h.notifications.MarkRead(jwt.GetUserID(c), uint(id)); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已标记为已读", nil)
}
