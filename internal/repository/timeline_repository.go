package repository

import (
	"errors"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// TimelineRepository 时间线数据访问接口
type TimelineRepository interface {
	List() ([]models.TimelineNode, error)
	GetByID(id uint) (*models.TimelineNode, error)
	Create(node *models.TimelineNode) error
	Update(node *models.TimelineNode) error
	Delete(id uint) error
	Reorder(items []SortOrderUpdate) error
	Count() (int64, error)
}

// GormTimelineRepository GORM 实现
type GormTimelineRepository struct {
	db *gorm.DB
}

// NewTimelineRepository 创建时间线仓库
func NewTimelineRepository(db *gorm.DB) *GormTimelineRepository {
	return &GormTimelineRepository{db: db}
}

// List 时间线列表，按 sort_order, start_date, id 升序
func (r *GormTimelineRepository) List() ([]models.TimelineNode, error) {
	nodes := make([]models.TimelineNode, 0)
	err := r.db.Order("sort_order ASC").Order("start_date ASC").Order("id ASC").Find(&nodes).Error
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetByID 根据 ID 获取节点
func (r *GormTimelineRepository) GetByID(id uint) (*models.TimelineNode, error) {
	var node models.TimelineNode
	if err := r.db.First(&node, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

// Create 创建节点
func (r *GormTimelineRepository) Create(node *models.TimelineNode) error {
	return r.db.Create(node).Error
}

// Update 更新节点
func (r *GormTimelineRepository) Update(node *models.TimelineNode) error {
	return r.db.Save(node).Error
}

// Delete 删除节点
func (r *GormTimelineRepository) Delete(id uint) error {
	return r.db.Delete(&models.TimelineNode{}, id).Error
}

// Reorder 批量更新排序权重
func (r *GormTimelineRepository) Reorder(items []SortOrderUpdate) error {
	return reorderRows(r.db, &models.TimelineNode{}, items)
}

// Count 统计节点数量
func (r *GormTimelineRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.TimelineNode{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// reorderRows 在事务中逐条更新 sort_order
func reorderRows(db *gorm.DB, model interface{}, items []SortOrderUpdate) error {
	if len(items) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.ID == 0 {
				continue
			}
			if err := tx.Model(model).Where("id = ?", item.ID).Update("sort_order", item.SortOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
