package repository

import (
	"errors"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// SocialFriendRepository 社交关系数据访问接口
type SocialFriendRepository interface {
	List() ([]models.SocialFriend, error)
	ListPublic() ([]models.SocialFriend, error)
	GetByID(id uint) (*models.SocialFriend, error)
	Create(friend *models.SocialFriend) error
	Update(friend *models.SocialFriend) error
	Delete(id uint) error
	CountPublic() (int64, error)
}

// GormSocialFriendRepository GORM 实现
type GormSocialFriendRepository struct {
	db *gorm.DB
}

// NewSocialFriendRepository 创建社交关系仓库
func NewSocialFriendRepository(db *gorm.DB) *GormSocialFriendRepository {
	return &GormSocialFriendRepository{db: db}
}

// List 后台列表，按 sort_order, name, id 升序
func (r *GormSocialFriendRepository) List() ([]models.SocialFriend, error) {
	friends := make([]models.SocialFriend, 0)
	err := r.db.Order("sort_order ASC").Order("name ASC").Order("id ASC").Find(&friends).Error
	if err != nil {
		return nil, err
	}
	return friends, nil
}

// ListPublic 公开关系，按 sort_order, id 升序
func (r *GormSocialFriendRepository) ListPublic() ([]models.SocialFriend, error) {
	friends := make([]models.SocialFriend, 0)
	err := r.db.Where("is_public = ?", true).Order("sort_order ASC").Order("id ASC").Find(&friends).Error
	if err != nil {
		return nil, err
	}
	return friends, nil
}

// GetByID 根据 ID 获取关系
func (r *GormSocialFriendRepository) GetByID(id uint) (*models.SocialFriend, error) {
	var friend models.SocialFriend
	if err := r.db.First(&friend, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &friend, nil
}

// Create 创建关系
func (r *GormSocialFriendRepository) Create(friend *models.SocialFriend) error {
	return r.db.Create(friend).Error
}

// Update 更新关系
func (r *GormSocialFriendRepository) Update(friend *models.SocialFriend) error {
	return r.db.Save(friend).Error
}

// Delete 删除关系
func (r *GormSocialFriendRepository) Delete(id uint) error {
	return r.db.Delete(&models.SocialFriend{}, id).Error
}

// CountPublic 统计公开关系数量
func (r *GormSocialFriendRepository) CountPublic() (int64, error) {
	var count int64
	if err := r.db.Model(&models.SocialFriend{}).Where("is_public = ?", true).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
