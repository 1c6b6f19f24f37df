package model

import (
	"time"
)

// 片单分类（固定集合）
// favorites/disliked 仅允许已观看的内容；watchlist 与 watched 互斥
// watchedTogether 需要已绑定伴侣
const (
	CategoryFavorites       = "favorites"
	CategoryWatchlist       = "watchlist"
	CategoryDisliked        = "disliked"
	CategoryWatched         = "watched"
	CategoryLiked           = "liked"
	CategoryWatchedTogether = "watchedTogether"
)

// Categories 所有合法分类，按展示顺序排列
var Categories = []string{
	CategoryFavorites,
	CategoryWatchlist,
	CategoryDisliked,
	CategoryWatched,
	CategoryLiked,
	CategoryWatchedTogether,
}

// IsValidCategory 校验分类名是否在固定集合内
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// 媒体类型
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// IsValidMediaType 校验媒体类型
func IsValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// LibraryEntry 个人片单条目
// 每行对应 (用户, 分类, 内容ID) 一条记录，同一内容可出现在多个分类
// 评分与评论不落在此表，读取时从 review 表联查（单一数据源）

type LibraryEntry struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          uint       `gorm:"not null;index;uniqueIndex:uniq_user_cat_content,priority:1;comment:用户ID"`
	Category        string     `gorm:"type:varchar(32);not null;uniqueIndex:uniq_user_cat_content,priority:2;comment:片单分类"`
	ContentID       string     `gorm:"type:varchar(32);not null;uniqueIndex:uniq_user_cat_content,priority:3;comment:外部目录内容ID"`
	MediaType       string     `gorm:"type:varchar(16);not null;default:'movie';comment:媒体类型(movie/tv)"`
	Title           string     `gorm:"type:varchar(255);comment:标题"`
	PosterPath      string     `gorm:"type:varchar(255);comment:海报路径"`
	ReleaseDate     string     `gorm:"type:varchar(16);comment:上映日期"`
	VoteAverage     float64    `gorm:"comment:外部目录平均分"`
	GenreIDs        string     `gorm:"type:varchar(255);comment:类型ID列表(逗号分隔)"`
	WatchedDate     *time.Time `gorm:"comment:观看日期"`
	WatchedTogether bool       `gorm:"default:false;comment:是否共同观看"`
	CreatedAt       time.Time  `gorm:"comment:创建时间"`
	UpdatedAt       time.Time  `gorm:"comment:更新时间"`
}

func (LibraryEntry) TableName() string { return "library_entry" }

// ToContentRef 转换为对外的内容引用结构
func (e *LibraryEntry) ToContentRef() ContentRef {
	return ContentRef{
		ID:              e.ContentID,
		Title:           e.Title,
		PosterPath:      e.PosterPath,
		ReleaseDate:     e.ReleaseDate,
		VoteAverage:     e.VoteAverage,
		Type:            e.MediaType,
		GenreIDs:        SplitGenreIDs(e.GenreIDs),
		WatchedDate:     e.WatchedDate,
		WatchedTogether: e.WatchedTogether,
	}
}
