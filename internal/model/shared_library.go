package model

import (
	"time"
)

// 共享片单内的列表名
const (
	SharedListFavorites = "favorites"
	SharedListWatchlist = "watchlist"
	SharedListWatched   = "watched"
)

// SharedLibrary 伴侣对共享片单
// 以无序用户对为键：UserLowID < UserHighID，每对同时仅一条
// 仅在双方处于绑定状态期间存在，解绑时删除（可先归档）

type SharedLibrary struct {
	ID         uint      `gorm:"primaryKey"`
	UserLowID  uint      `gorm:"not null;uniqueIndex:uniq_pair,priority:1;comment:用户对中较小的ID"`
	UserHighID uint      `gorm:"not null;uniqueIndex:uniq_pair,priority:2;comment:用户对中较大的ID"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

func (SharedLibrary) TableName() string { return "shared_library" }

// SharedEntry 共享片单条目，每行对应 (共享片单, 列表, 内容ID)

type SharedEntry struct {
	ID              uint      `gorm:"primaryKey"`
	SharedLibraryID uint      `gorm:"not null;index;uniqueIndex:uniq_shared_list_content,priority:1;comment:共享片单ID"`
	List            string    `gorm:"type:varchar(32);not null;uniqueIndex:uniq_shared_list_content,priority:2;comment:列表名"`
	ContentID       string    `gorm:"type:varchar(32);not null;uniqueIndex:uniq_shared_list_content,priority:3;comment:外部目录内容ID"`
	MediaType       string    `gorm:"type:varchar(16);not null;default:'movie';comment:媒体类型(movie/tv)"`
	Title           string    `gorm:"type:varchar(255);comment:标题"`
	PosterPath      string    `gorm:"type:varchar(255);comment:海报路径"`
	ReleaseDate     string    `gorm:"type:varchar(16);comment:上映日期"`
	VoteAverage     float64   `gorm:"comment:外部目录平均分"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
}

func (SharedEntry) TableName() string { return "shared_entry" }

// ToContentRef 转换为对外的内容引用结构
func (e *SharedEntry) ToContentRef() ContentRef {
	return ContentRef{
		ID:          e.ContentID,
		Title:       e.Title,
		PosterPath:  e.PosterPath,
		ReleaseDate: e.ReleaseDate,
		VoteAverage: e.VoteAverage,
		Type:        e.MediaType,
	}
}

// CompatibilityEntry 兼容度评分条目
// 分数范围0-100：双方都评过分时为 100-|评分差|*20，否则默认50
// 每次运行共享推荐流程时整表重算覆盖，不做增量维护

type CompatibilityEntry struct {
	ID              uint      `gorm:"primaryKey"`
	SharedLibraryID uint      `gorm:"not null;index;comment:共享片单ID"`
	ContentID       string    `gorm:"type:varchar(32);not null;comment:外部目录内容ID"`
	MediaType       string    `gorm:"type:varchar(16);not null;default:'movie';comment:媒体类型(movie/tv)"`
	Title           string    `gorm:"type:varchar(255);comment:标题"`
	PosterPath      string    `gorm:"type:varchar(255);comment:海报路径"`
	ReleaseDate     string    `gorm:"type:varchar(16);comment:上映日期"`
	VoteAverage     float64   `gorm:"comment:外部目录平均分"`
	Score           int       `gorm:"not null;comment:兼容度分数(0-100)"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
}

func (CompatibilityEntry) TableName() string { return "compatibility_entry" }

// ToContentRef 转换为对外的内容引用结构
func (e *CompatibilityEntry) ToContentRef() ContentRef {
	return ContentRef{
		ID:          e.ContentID,
		Title:       e.Title,
		PosterPath:  e.PosterPath,
		ReleaseDate: e.ReleaseDate,
		VoteAverage: e.VoteAverage,
		Type:        e.MediaType,
	}
}

// PairKey 规范化用户对：返回 (低ID, 高ID)
func PairKey(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}
