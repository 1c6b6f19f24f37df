package repository

import (
	"errors"

	"srmdb/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArchiveRepository 归档数据仓储
type ArchiveRepository struct {
	orm *gorm.DB
}

// GetByPair 按规范化用户对查询归档，不存在时返回 (nil, nil)
func (r *ArchiveRepository) GetByPair(lowID, highID uint) (*model.Archive, error) {
	var archive model.Archive
	err := r.orm.Where("user_low_id = ? AND user_high_id = ?", lowID, highID).First(&archive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &archive, nil
}

// Save 保存归档，同一用户对已存在时覆盖快照
func (r *ArchiveRepository) Save(archive *model.Archive) error {
	return r.orm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "archived_at"}),
	}).Create(archive).Error
}
