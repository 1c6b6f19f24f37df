package handler

import (
	"srmdb/internal/service"
	"srmdb/pkg/jwt"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type PartnerHandler struct {
	partner *service.PartnerService
	users   *service.UserService
}

func NewPartnerHandler(partner *service.PartnerService, users *service.UserService) *PartnerHandler {
	return &PartnerHandler{partner: partner, users: users}
}

// Request 发出伴侣邀请，目标可用userId或username指定
func (h *PartnerHandler) Request(c *gin.Context) {
	type req struct {
		UserID   uint   `json:"userId"`
		Username string `json:"username"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	toID := r.UserID
	if toID == 0 && r.Username != "" {
		target, err := h.users.GetProfile(r.Username)
		if err != nil {
			fail(c, err)
			return
		}
		toID = target.ID
	}
	if toID == 0 {
		response.BadRequest(c, "缺少邀请目标")
		return
	}

	if err := h.partner.Request(jwt.GetUserID(c), toID); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "邀请已发送", nil)
}

// Accept 接受伴侣邀请，返回更新后的用户（含伴侣信息）与previousPartner标记
func (h *PartnerHandler) Accept(c *gin.Context) {
	type req struct {
		NotificationID uint `json:"notificationId" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := jwt.GetUserID(c)
	result, err := h.partner.Accept(userID, r.NotificationID)
	if err != nil {
		fail(c, err)
		return
	}

	user, partner, err := h.users.GetWithPartner(userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已接受邀请", gin.H{
		"user":            response.FilterUserInfo(user, partner),
		"previousPartner": result.PreviousPartner,
	})
}

// Reject 拒绝伴侣邀请
func (h *PartnerHandler) Reject(c *gin.Context) {
	type req struct {
		NotificationID uint `json:"notificationId" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.partner.Reject(jwt.GetUserID(c), r.NotificationID); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已拒绝邀请", nil)
}

// Remove 解除伴侣关系，查询参数preserve默认为true
func (h *PartnerHandler) Remove(c *gin.Context) {
	preserve := c.DefaultQuery("preserve", "true") == "true"

	userID := jwt.GetUserID(c)
	if err := h.partner.Unlink(userID, preserve); err != nil {
		fail(c, err)
		return
	}

	user, _, err := h.users.GetWithPartner(userID)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "伴侣关系已解除", gin.H{"user": response.FilterUserInfo(user, nil)})
}
