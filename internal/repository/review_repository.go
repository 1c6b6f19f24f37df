package repository

import (
	"errors"

	"srmdb/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository 评分数据仓储
type ReviewRepository struct {
	orm *gorm.DB
}

// Get 获取用户对某内容的评分，不存在时返回 (nil, nil)
func (r *ReviewRepository) Get(userID uint, contentID, mediaType string) (*model.Review, error) {
	var review model.Review
	err := r.orm.Where("user_id = ? AND content_id = ? AND media_type = ?", userID, contentID, mediaType).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// ByUser 获取用户的全部评分
func (r *ReviewRepository) ByUser(userID uint) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.orm.Where("user_id = ?", userID).Find(&reviews).Error
	return reviews, err
}

// Upsert 按 (用户, 内容, 媒体类型) 唯一键插入或更新评分
func (r *ReviewRepository) Upsert(review *model.Review) error {
	return r.orm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}, {Name: "media_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
}

// DeleteByContent 删除该用户对某内容的所有评分
func (r *ReviewRepository) DeleteByContent(userID uint, contentID string) error {
	err := r.orm.Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&model.Review{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
