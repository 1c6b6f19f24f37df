package redis

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 未读通知计数缓存
// 数据库是最终真相，这里只做热计数；缓存缺失时由调用方回源并回填

const unreadKeyPrefix = "srmdb:unread:"

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s%d", unreadKeyPrefix, userID)
}

// IncrUnread 新通知产生时递增未读计数
func IncrUnread(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return client.Incr(ctx, unreadKey(userID)).Err()
}

// DecrUnread 通知被标记已读时递减未读计数（不会减到负数以下）
func DecrUnread(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	key := unreadKey(userID)
	n, err := client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return client.Set(ctx, key, 0, 0).Err()
	}
	return nil
}

// GetUnread 读取未读计数，缓存缺失时返回-1
func GetUnread(userID uint) (int64, error) {
	if client == nil {
		return -1, fmt.Errorf("redis客户端未初始化")
	}
	n, err := client.Get(ctx, unreadKey(userID)).Int64()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return n, nil
}

// SetUnread 回填未读计数
func SetUnread(userID uint, count int64) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return client.Set(ctx, unreadKey(userID), count, 0).Err()
}

// ResetUnread 清空未读计数（全部已读后调用）
func ResetUnread(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	return client.Del(ctx, unreadKey(userID)).Err()
}
