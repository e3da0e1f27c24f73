package repository

import (
	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// ObsidianSyncRunRepository 文档池运行记录数据访问接口（只追加）
type ObsidianSyncRunRepository interface {
	Create(run *models.ObsidianSyncRun) error
	List(filter ObsidianSyncRunListFilter) ([]models.ObsidianSyncRun, int64, error)
}

// GormObsidianSyncRunRepository GORM 实现
type GormObsidianSyncRunRepository struct {
	db *gorm.DB
}

// NewObsidianSyncRunRepository 创建运行记录仓库
func NewObsidianSyncRunRepository(db *gorm.DB) *GormObsidianSyncRunRepository {
	return &GormObsidianSyncRunRepository{db: db}
}

// Create 写入运行记录
func (r *GormObsidianSyncRunRepository) Create(run *models.ObsidianSyncRun) error {
	if run == nil {
		return nil
	}
	return r.db.Create(run).Error
}

// List 运行记录列表，按 started_at DESC, id DESC
func (r *GormObsidianSyncRunRepository) List(filter ObsidianSyncRunListFilter) ([]models.ObsidianSyncRun, int64, error) {
	query := r.db.Model(&models.ObsidianSyncRun{})
	if filter.Trigger != "" {
		query = query.Where(map[string]interface{}{"trigger": filter.Trigger})
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	runs := make([]models.ObsidianSyncRun, 0)
	if err := query.Order("started_at DESC").Order("id DESC").Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
