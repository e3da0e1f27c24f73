package repository

import (
	"errors"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// TravelRepository 旅行足迹数据访问接口
type TravelRepository interface {
	List() ([]models.TravelPlace, error)
	GetByID(id uint) (*models.TravelPlace, error)
	GetByProvinceCity(province, city string) (*models.TravelPlace, error)
	Create(place *models.TravelPlace) error
	Update(place *models.TravelPlace) error
	Delete(id uint) error
	Count() (int64, error)
}

// GormTravelRepository GORM 实现
type GormTravelRepository struct {
	db *gorm.DB
}

// NewTravelRepository 创建旅行足迹仓库
func NewTravelRepository(db *gorm.DB) *GormTravelRepository {
	return &GormTravelRepository{db: db}
}

// List 足迹列表，按 sort_order, province, city 升序
func (r *GormTravelRepository) List() ([]models.TravelPlace, error) {
	places := make([]models.TravelPlace, 0)
	err := r.db.Order("sort_order ASC").Order("province ASC").Order("city ASC").Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}

// GetByID 根据 ID 获取足迹
func (r *GormTravelRepository) GetByID(id uint) (*models.TravelPlace, error) {
	var place models.TravelPlace
	if err := r.db.First(&place, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &place, nil
}

// GetByProvinceCity 根据省市获取足迹
func (r *GormTravelRepository) GetByProvinceCity(province, city string) (*models.TravelPlace, error) {
	var place models.TravelPlace
	if err := r.db.Where("province = ? AND city = ?", province, city).First(&place).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &place, nil
}

// Create 创建足迹
func (r *GormTravelRepository) Create(place *models.TravelPlace) error {
	return r.db.Create(place).Error
}

// Update 更新足迹
func (r *GormTravelRepository) Update(place *models.TravelPlace) error {
	return r.db.Save(place).Error
}

// Delete 删除足迹
func (r *GormTravelRepository) Delete(id uint) error {
	return r.db.Delete(&models.TravelPlace{}, id).Error
}

// Count 统计足迹数量
func (r *GormTravelRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.TravelPlace{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
