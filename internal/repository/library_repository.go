package repository

import (
	"srmdb/internal/model"

	"gorm.io/gorm"
)

// LibraryRepository 个人片单数据仓储
type LibraryRepository struct {
	orm *gorm.DB
}

// Entries 获取用户全部片单条目（所有分类）
func (r *LibraryRepository) Entries(userID uint) ([]*model.LibraryEntry, error) {
	var entries []*model.LibraryEntry
	err := r.orm.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// CategoryEntries 获取某分类下的条目
func (r *LibraryRepository) CategoryEntries(userID uint, category string) ([]*model.LibraryEntry, error) {
	var entries []*model.LibraryEntry
	err := r.orm.Where("user_id = ? AND category = ?", userID, category).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// Has 内容是否存在于指定分类
func (r *LibraryRepository) Has(userID uint, category, contentID string) (bool, error) {
	var count int64
	err := r.orm.Model(&model.LibraryEntry{}).
		Where("user_id = ? AND category = ? AND content_id = ?", userID, category, contentID).
		Count(&count).Error
	return count > 0, err
}

// Add 追加片单条目
func (r *LibraryRepository) Add(entry *model.LibraryEntry) error {
	return r.orm.Create(entry).Error
}

// Remove 从单个分类移除，返回删除行数
func (r *LibraryRepository) Remove(userID uint, category, contentID string) (int64, error) {
	result := r.orm.Where("user_id = ? AND category = ? AND content_id = ?", userID, category, contentID).
		Delete(&model.LibraryEntry{})
	return result.RowsAffected, result.Error
}

// RemoveFromCategories 从多个分类批量移除同一内容
func (r *LibraryRepository) RemoveFromCategories(userID uint, contentID string, categories []string) error {
	return r.orm.Where("user_id = ? AND content_id = ? AND category IN ?", userID, contentID, categories).
		Delete(&model.LibraryEntry{}).Error
}

// ClearTogetherFlags 保留watched记录，仅清除共同观看标记
func (r *LibraryRepository) ClearTogetherFlags(userID uint) error {
	return r.orm.Model(&model.LibraryEntry{}).
		Where("user_id = ? AND category = ?", userID, model.CategoryWatched).
		Update("watched_together", false).Error
}

// StripTogetherEntries 删除共同观看的watched记录以及整个watchedTogether分类
func (r *LibraryRepository) StripTogetherEntries(userID uint) error {
	if err := r.orm.Where("user_id = ? AND category = ? AND watched_together = ?",
		userID, model.CategoryWatched, true).
		Delete(&model.LibraryEntry{}).Error; err != nil {
		return err
	}
	return r.orm.Where("user_id = ? AND category = ?", userID, model.CategoryWatchedTogether).
		Delete(&model.LibraryEntry{}).Error
}

// SetTogetherFlag 设置某条watched记录的共同观看标记
func (r *LibraryRepository) SetTogetherFlag(userID uint, contentID string, together bool) error {
	return r.orm.Model(&model.LibraryEntry{}).
		Where("user_id = ? AND category = ? AND content_id = ?", userID, model.CategoryWatched, contentID).
		Update("watched_together", together).Error
}

// TagWatchedTogether 将指定内容ID集合对应的watched记录标记为共同观看
func (r *LibraryRepository) TagWatchedTogether(userID uint, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}
	return r.orm.Model(&model.LibraryEntry{}).
		Where("user_id = ? AND category = ? AND content_id IN ?", userID, model.CategoryWatched, contentIDs).
		Update("watched_together", true).Error
}
