package repository

import (
	"errors"
	"strings"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// SyncLogRepository 同步日志数据访问接口（只追加）
type SyncLogRepository interface {
	WithTx(tx *gorm.DB) SyncLogRepository
	Create(log *models.SyncLog) error
	GetByID(id uint) (*models.SyncLog, error)
	List(filter SyncLogListFilter) ([]models.SyncLog, int64, error)
}

// GormSyncLogRepository GORM 实现
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository 创建同步日志仓库
func NewSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSyncLogRepository) WithTx(tx *gorm.DB) SyncLogRepository {
	if tx == nil {
		return r
	}
	return &GormSyncLogRepository{db: tx}
}

// Create 写入同步日志
func (r *GormSyncLogRepository) Create(log *models.SyncLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// GetByID 根据 ID 获取同步日志
func (r *GormSyncLogRepository) GetByID(id uint) (*models.SyncLog, error) {
	var log models.SyncLog
	if err := r.db.First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// List 同步日志列表，按 started_at DESC, id DESC
func (r *GormSyncLogRepository) List(filter SyncLogListFilter) ([]models.SyncLog, int64, error) {
	query := r.db.Model(&models.SyncLog{})
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if slug := strings.TrimSpace(filter.Slug); slug != "" {
		query = query.Where("slug = ?", slug)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	logs := make([]models.SyncLog, 0)
	if err := query.Order("started_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
