package repository

import (
	"errors"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// HighlightRepository 高光时刻数据访问接口
type HighlightRepository interface {
	ListStages() ([]models.HighlightStage, error)
	GetStage(id uint) (*models.HighlightStage, error)
	CreateStage(stage *models.HighlightStage) error
	UpdateStage(stage *models.HighlightStage) error
	DeleteStage(id uint) error
	GetItem(id uint) (*models.HighlightItem, error)
	CreateItem(item *models.HighlightItem) error
	UpdateItem(item *models.HighlightItem) error
	DeleteItem(id uint) error
	ReorderStages(items []SortOrderUpdate) error
	ReorderItems(items []SortOrderUpdate) error
	CountStages() (int64, error)
	CountItems() (int64, error)
}

// GormHighlightRepository GORM 实现
type GormHighlightRepository struct {
	db *gorm.DB
}

// NewHighlightRepository 创建高光时刻仓库
func NewHighlightRepository(db *gorm.DB) *GormHighlightRepository {
	return &GormHighlightRepository{db: db}
}

func preloadOrderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("achieved_at ASC").Order("id ASC")
}

// ListStages 阶段列表（含条目），阶段按 sort_order, start_date, id 升序
func (r *GormHighlightRepository) ListStages() ([]models.HighlightStage, error) {
	stages := make([]models.HighlightStage, 0)
	err := r.db.Preload("Items", preloadOrderedItems).
		Order("sort_order ASC").Order("start_date ASC").Order("id ASC").
		Find(&stages).Error
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// GetStage 根据 ID 获取阶段（含条目）
func (r *GormHighlightRepository) GetStage(id uint) (*models.HighlightStage, error) {
	var stage models.HighlightStage
	if err := r.db.Preload("Items", preloadOrderedItems).First(&stage, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stage, nil
}

// CreateStage 创建阶段
func (r *GormHighlightRepository) CreateStage(stage *models.HighlightStage) error {
	return r.db.Omit("Items").Create(stage).Error
}

// UpdateStage 更新阶段
func (r *GormHighlightRepository) UpdateStage(stage *models.HighlightStage) error {
	return r.db.Omit("Items").Save(stage).Error
}

// DeleteStage 删除阶段及其条目
func (r *GormHighlightRepository) DeleteStage(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stage_id = ?", id).Delete(&models.HighlightItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.HighlightStage{}, id).Error
	})
}

// GetItem 根据 ID 获取条目
func (r *GormHighlightRepository) GetItem(id uint) (*models.HighlightItem, error) {
	var item models.HighlightItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建条目
func (r *GormHighlightRepository) CreateItem(item *models.HighlightItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新条目
func (r *GormHighlightRepository) UpdateItem(item *models.HighlightItem) error {
	return r.db.Save(item).Error
}

// DeleteItem 删除条目
func (r *GormHighlightRepository) DeleteItem(id uint) error {
	return r.db.Delete(&models.HighlightItem{}, id).Error
}

// ReorderStages 批量更新阶段排序
func (r *GormHighlightRepository) ReorderStages(items []SortOrderUpdate) error {
	return reorderRows(r.db, &models.HighlightStage{}, items)
}

// ReorderItems 批量更新条目排序
func (r *GormHighlightRepository) ReorderItems(items []SortOrderUpdate) error {
	return reorderRows(r.db, &models.HighlightItem{}, items)
}

// CountStages 统计阶段数量
func (r *GormHighlightRepository) CountStages() (int64, error) {
	var count int64
	if err := r.db.Model(&models.HighlightStage{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountItems 统计条目数量
func (r *GormHighlightRepository) CountItems() (int64, error) {
	var count int64
	if err := r.db.Model(&models.HighlightItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
