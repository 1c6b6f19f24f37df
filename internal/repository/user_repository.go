package repository

import (
	"errors"

	"srmdb/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据仓储
type UserRepository struct {
	orm *gorm.DB
}

func (r *UserRepository) Create(user *model.User) error {
	return r.orm.Create(user).Error
}

func (r *UserRepository) Save(user *model.User) error {
	return r.orm.Save(user).Error
}

// 查询不到记录时统一返回 (nil, nil)，由业务层决定是否视为错误

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var u model.User
	if err := r.orm.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var u model.User
	if err := r.orm.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UsernameTaken 用户名是否已被占用（excludeID排除自身）
func (r *UserRepository) UsernameTaken(username string, excludeID uint) (bool, error) {
	var count int64
	err := r.orm.Model(&model.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

// EmailTaken 邮箱是否已被占用（excludeID排除自身）
func (r *UserRepository) EmailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	err := r.orm.Model(&model.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Search 按用户名或显示名称模糊搜索，排除指定用户
func (r *UserRepository) Search(query string, excludeID uint) ([]*model.User, error) {
	var users []*model.User
	like := "%" + query + "%"
	err := r.orm.Where("(username LIKE ? OR name LIKE ?) AND id <> ?", like, like, excludeID).
		Limit(50).
		Find(&users).Error
	return users, err
}

// SetPartner 更新伴侣指针（nil表示解除绑定）
func (r *UserRepository) SetPartner(userID uint, partnerID *uint) error {
	return r.orm.Model(&model.User{}).
		Where("id = ?", userID).
		Update("partner_id", partnerID).Error
}
