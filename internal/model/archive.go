package model

import (
	"encoding/json"
	"time"
)

// Archive 共享片单归档
// 解绑时（preserve=true）对共享片单做整体快照，每对最多一条，重复解绑时覆盖
// 归档在恢复后保留，允许同一对用户多次解绑/重连

type Archive struct {
	ID         uint      `gorm:"primaryKey"`
	UserLowID  uint      `gorm:"not null;uniqueIndex:uniq_archive_pair,priority:1;comment:用户对中较小的ID"`
	UserHighID uint      `gorm:"not null;uniqueIndex:uniq_archive_pair,priority:2;comment:用户对中较大的ID"`
	Snapshot   string    `gorm:"type:json;comment:共享片单快照(JSON)"`
	ArchivedAt time.Time `gorm:"comment:归档时间"`
}

func (Archive) TableName() string { return "archive" }

// SharedSnapshot 共享片单快照结构，序列化后存入 Archive.Snapshot
type SharedSnapshot struct {
	Favorites     []ContentRef         `json:"favorites"`
	Watchlist     []ContentRef         `json:"watchlist"`
	Watched       []ContentRef         `json:"watched"`
	Compatibility []CompatibilityScore `json:"compatibility"`
}

// CompatibilityScore 快照内的兼容度记录
type CompatibilityScore struct {
	Movie ContentRef `json:"movie"`
	Score int        `json:"score"`
}

// EncodeSnapshot 序列化快照
func EncodeSnapshot(s *SharedSnapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSnapshot 反序列化快照
func DecodeSnapshot(raw string) (*SharedSnapshot, error) {
	var s SharedSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
