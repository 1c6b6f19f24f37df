package model

import (
	"strconv"
	"strings"
	"time"
)

// ContentRef 外部目录内容引用，片单与共享片单接口的统一载荷
// 字段命名与第三方目录API保持一致（poster_path等），方便前端直接渲染
// UserRating/UserComment 为读取时联查出的评分快照，不落库

type ContentRef struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	PosterPath      string     `json:"poster_path"`
	ReleaseDate     string     `json:"release_date"`
	VoteAverage     float64    `json:"vote_average"`
	Type            string     `json:"type"`
	GenreIDs        []int      `json:"genre_ids,omitempty"`
	WatchedDate     *time.Time `json:"watchedDate,omitempty"`
	WatchedTogether bool       `json:"watchedTogether,omitempty"`
	UserRating      int        `json:"userRating,omitempty"`
	UserComment     string     `json:"userComment,omitempty"`
	PartnerRating   int        `json:"partnerRating,omitempty"`
	PartnerComment  string     `json:"partnerComment,omitempty"`
}

// JoinGenreIDs 将类型ID列表编码为逗号分隔字符串（入库格式）
func JoinGenreIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// SplitGenreIDs 解析逗号分隔的类型ID字符串
func SplitGenreIDs(s string) []int {
	if s == "" {
		return nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
