package repository

import (
	"srmdb/internal/ports"

	"gorm.io/gorm"
)

// Stores 基于gorm的仓储聚合，实现 ports.Stores
type Stores struct {
	db *gorm.DB
}

// NewStores 创建仓储聚合实例
func NewStores(db *gorm.DB) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Users() ports.UserStore                 { return &UserRepository{orm: s.db} }
func (s *Stores) Library() ports.LibraryStore            { return &LibraryRepository{orm: s.db} }
func (s *Stores) Reviews() ports.ReviewStore             { return &ReviewRepository{orm: s.db} }
func (s *Stores) Shared() ports.SharedStore              { return &SharedRepository{orm: s.db} }
func (s *Stores) Archives() ports.ArchiveStore           { return &ArchiveRepository{orm: s.db} }
func (s *Stores) Notifications() ports.NotificationStore { return &NotificationRepository{orm: s.db} }

// InTx 在单个数据库事务内执行fn
func (s *Stores) InTx(fn func(tx ports.Stores) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStores(tx))
	})
}
