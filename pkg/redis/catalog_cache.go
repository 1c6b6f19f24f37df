package redis

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 影视目录响应缓存
// TMDB的热门榜单和相似推荐变化很慢，短时缓存可以显著减少外部请求

const catalogKeyPrefix = "srmdb:catalog:"

// CatalogKey 拼接目录缓存键，如 srmdb:catalog:popular:movie:1:tr-TR
func CatalogKey(parts ...string) string {
	key := catalogKeyPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// GetCatalog 读取缓存的目录响应JSON，缓存缺失时返回空串
func GetCatalog(key string) (string, error) {
	if client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetCatalog 缓存目录响应JSON
func SetCatalog(key, payload string, ttl time.Duration) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return client.Set(ctx, key, payload, ttl).Err()
}
