// Package ports 定义业务层依赖的仓储与推送接口
// 由 internal/repository (gorm) 与 pkg/websocket 提供实现，测试中可用内存实现替换
// 约定：单条查询（GetByID等）在记录不存在时返回 (nil, nil)，不返回错误
package ports

import (
	"srmdb/internal/model"
)

// Stores 聚合全部仓储入口
// InTx 在单个数据库事务内执行fn，fn内拿到的 Stores 绑定该事务；
// 涉及两个账号的变更（接受邀请、解绑、共同观看推送等）必须走 InTx
type Stores interface {
	Users() UserStore
	Library() LibraryStore
	Reviews() ReviewStore
	Shared() SharedStore
	Archives() ArchiveStore
	Notifications() NotificationStore
	InTx(fn func(tx Stores) error) error
}

// UserStore 用户仓储
type UserStore interface {
	Create(user *model.User) error
	Save(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	UsernameTaken(username string, excludeID uint) (bool, error)
	EmailTaken(email string, excludeID uint) (bool, error)
	Search(query string, excludeID uint) ([]*model.User, error)
	SetPartner(userID uint, partnerID *uint) error
}

// LibraryStore 个人片单仓储
type LibraryStore interface {
	Entries(userID uint) ([]*model.LibraryEntry, error)
	CategoryEntries(userID uint, category string) ([]*model.LibraryEntry, error)
	Has(userID uint, category, contentID string) (bool, error)
	Add(entry *model.LibraryEntry) error
	// Remove 从单个分类移除，返回删除行数
	Remove(userID uint, category, contentID string) (int64, error)
	// RemoveFromCategories 从多个分类批量移除同一内容
	RemoveFromCategories(userID uint, contentID string, categories []string) error
	// ClearTogetherFlags 保留watched记录，仅清除共同观看标记
	ClearTogetherFlags(userID uint) error
	// StripTogetherEntries 删除所有共同观看的watched记录及watchedTogether分类
	StripTogetherEntries(userID uint) error
	// SetTogetherFlag 设置某条watched记录的共同观看标记
	SetTogetherFlag(userID uint, contentID string, together bool) error
	// TagWatchedTogether 将指定内容ID集合对应的watched记录标记为共同观看（归档恢复用）
	TagWatchedTogether(userID uint, contentIDs []string) error
}

// ReviewStore 评分仓储
type ReviewStore interface {
	Get(userID uint, contentID, mediaType string) (*model.Review, error)
	ByUser(userID uint) ([]*model.Review, error)
	Upsert(review *model.Review) error
	// DeleteByContent 删除该用户对某内容的所有评分（不区分媒体类型）
	DeleteByContent(userID uint, contentID string) error
}

// SharedStore 共享片单仓储
type SharedStore interface {
	GetByPair(lowID, highID uint) (*model.SharedLibrary, error)
	Create(lib *model.SharedLibrary) error
	Delete(id uint) error
	Entries(sharedID uint) ([]*model.SharedEntry, error)
	AddEntry(entry *model.SharedEntry) error
	// RemoveContent 从指定列表集合中移除内容
	RemoveContent(sharedID uint, contentID string, lists []string) error
	// ReplaceEntries 整体替换条目（归档恢复用）
	ReplaceEntries(sharedID uint, entries []*model.SharedEntry) error
	Compatibility(sharedID uint) ([]*model.CompatibilityEntry, error)
	// ReplaceCompatibility 整表重算覆盖兼容度列表
	ReplaceCompatibility(sharedID uint, entries []*model.CompatibilityEntry) error
}

// ArchiveStore 归档仓储
type ArchiveStore interface {
	GetByPair(lowID, highID uint) (*model.Archive, error)
	// Save 保存或覆盖该用户对的快照
	Save(archive *model.Archive) error
}

// NotificationStore 通知仓储
type NotificationStore interface {
	ByUser(userID uint) ([]*model.Notification, error)
	GetByID(userID, id uint) (*model.Notification, error)
	Append(n *model.Notification) error
	Save(n *model.Notification) error
	PendingInviteExists(userID, fromID uint) (bool, error)
	UnreadCount(userID uint) (int64, error)
}

// Notifier 实时推送接口：向某账号的全部在线会话广播事件
// 推送为尽力而为，不保证送达与顺序，客户端收到后自行重新拉取
type Notifier interface {
	Emit(userID uint, event, resource string)
}
