package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"srmdb/pkg/redis"
	"srmdb/pkg/tmdb"
)

// Catalog 外部影视目录能力（TMDB客户端实现）
type Catalog interface {
	Popular(ctx context.Context, mediaType string, page int) (*tmdb.Page, error)
	Similar(ctx context.Context, movieID int) (*tmdb.Page, error)
}

// CatalogService 目录代理服务，热门榜单走redis短时缓存
// redis不可用时直接透传外部请求
type CatalogService struct {
	catalog  Catalog
	cacheTTL time.Duration
}

func NewCatalogService(catalog Catalog, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{catalog: catalog, cacheTTL: cacheTTL}
}

// Popular 热门榜单，mediaType为 movie 或 tv
func (s *CatalogService) Popular(ctx context.Context, mediaType string, page int) (*tmdb.Page, error) {
	if mediaType != "movie" && mediaType != "tv" {
		return nil, Validationf("无效的媒体类型: " + mediaType)
	}
	if page < 1 {
		page = 1
	}

	key := redis.CatalogKey("popular", mediaType, strconv.Itoa(page))
	if cached, err := redis.GetCatalog(key); err == nil && cached != "" {
		var result tmdb.Page
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	result, err := s.catalog.Popular(ctx, mediaType, page)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(result); err == nil {
		_ = redis.SetCatalog(key, string(raw), s.cacheTTL)
	}
	return result, nil
}
