package response

import (
	"srmdb/internal/model"
)

// PartnerInfo 伴侣摘要信息
type PartnerInfo struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// UserInfo 用户信息（隐藏敏感字段）
type UserInfo struct {
	ID             uint         `json:"id"`
	Username       string       `json:"username"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	ProfilePicture string       `json:"profilePicture"`
	Partner        *PartnerInfo `json:"partner"`
	CreatedAt      string       `json:"created_at,omitempty"`
}

// FilterPartnerInfo 过滤伴侣信息
func FilterPartnerInfo(partner *model.User) *PartnerInfo {
	if partner == nil {
		return nil
	}
	return &PartnerInfo{
		ID:             partner.ID,
		Username:       partner.Username,
		Name:           partner.Name,
		ProfilePicture: partner.ProfilePicture,
	}
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
// partner 可为nil（未绑定或调用方未联查）
func FilterUserInfo(user *model.User, partner *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:             user.ID,
		Username:       user.Username,
		Name:           user.Name,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		Partner:        FilterPartnerInfo(partner),
		CreatedAt:      user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// NotificationInfo 通知信息
type NotificationInfo struct {
	ID        uint         `json:"id"`
	Type      string       `json:"type"`
	From      *PartnerInfo `json:"from,omitempty"`
	Status    string       `json:"status,omitempty"`
	Message   string       `json:"message"`
	Read      bool         `json:"read"`
	CreatedAt string       `json:"createdAt"`
}

// FilterNotificationInfo 过滤通知信息，from为发送者摘要（可为nil）
func FilterNotificationInfo(n *model.Notification, from *model.User) *NotificationInfo {
	if n == nil {
		return nil
	}
	return &NotificationInfo{
		ID:        n.ID,
		Type:      n.Type,
		From:      FilterPartnerInfo(from),
		Status:    n.Status,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
