package repository

import (
	"errors"

	"srmdb/internal/model"

	"gorm.io/gorm"
)

// SharedRepository 共享片单数据仓储
type SharedRepository struct {
	orm *gorm.DB
}

// GetByPair 按规范化用户对查询共享片单，不存在时返回 (nil, nil)
func (r *SharedRepository) GetByPair(lowID, highID uint) (*model.SharedLibrary, error) {
	var lib model.SharedLibrary
	err := r.orm.Where("user_low_id = ? AND user_high_id = ?", lowID, highID).First(&lib).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lib, nil
}

// Create 创建共享片单
func (r *SharedRepository) Create(lib *model.SharedLibrary) error {
	return r.orm.Create(lib).Error
}

// Delete 删除共享片单及其全部条目与兼容度记录
func (r *SharedRepository) Delete(id uint) error {
	if err := r.orm.Where("shared_library_id = ?", id).Delete(&model.SharedEntry{}).Error; err != nil {
		return err
	}
	if err := r.orm.Where("shared_library_id = ?", id).Delete(&model.CompatibilityEntry{}).Error; err != nil {
		return err
	}
	return r.orm.Delete(&model.SharedLibrary{}, id).Error
}

// Entries 获取共享片单全部条目
func (r *SharedRepository) Entries(sharedID uint) ([]*model.SharedEntry, error) {
	var entries []*model.SharedEntry
	err := r.orm.Where("shared_library_id = ?", sharedID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// AddEntry 追加共享片单条目
func (r *SharedRepository) AddEntry(entry *model.SharedEntry) error {
	return r.orm.Create(entry).Error
}

// RemoveContent 从指定列表集合中移除内容
func (r *SharedRepository) RemoveContent(sharedID uint, contentID string, lists []string) error {
	return r.orm.Where("shared_library_id = ? AND content_id = ? AND list IN ?", sharedID, contentID, lists).
		Delete(&model.SharedEntry{}).Error
}

// ReplaceEntries 整体替换条目（归档恢复用）
func (r *SharedRepository) ReplaceEntries(sharedID uint, entries []*model.SharedEntry) error {
	if err := r.orm.Where("shared_library_id = ?", sharedID).Delete(&model.SharedEntry{}).Error; err != nil {
		return err
	}
	for _, e := range entries {
		e.SharedLibraryID = sharedID
		if err := r.orm.Create(e).Error; err != nil {
			return err
		}
	}
	return nil
}

// Compatibility 获取兼容度列表
func (r *SharedRepository) Compatibility(sharedID uint) ([]*model.CompatibilityEntry, error) {
	var entries []*model.CompatibilityEntry
	err := r.orm.Where("shared_library_id = ?", sharedID).
		Order("score DESC").
		Find(&entries).Error
	return entries, err
}

// ReplaceCompatibility 整表重算覆盖兼容度列表
func (r *SharedRepository) ReplaceCompatibility(sharedID uint, entries []*model.CompatibilityEntry) error {
	if err := r.orm.Where("shared_library_id = ?", sharedID).Delete(&model.CompatibilityEntry{}).Error; err != nil {
		return err
	}
	for _, e := range entries {
		e.SharedLibraryID = sharedID
		if err := r.orm.Create(e).Error; err != nil {
			return err
		}
	}
	return nil
}
