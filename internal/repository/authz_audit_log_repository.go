package repository

import (
	"strings"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// AuthzAuditLogRepository 权限审计日志数据访问接口
type AuthzAuditLogRepository interface {
	Create(log *models.AuthzAuditLog) error
	ListAdmin(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error)
}

// GormAuthzAuditLogRepository GORM 实现
type GormAuthzAuditLogRepository struct {
	db *gorm.DB
}

// NewAuthzAuditLogRepository 创建权限审计日志仓库
func NewAuthzAuditLogRepository(db *gorm.DB) *GormAuthzAuditLogRepository {
	return &GormAuthzAuditLogRepository{db: db}
}

// Create 创建权限审计日志
func (r *GormAuthzAuditLogRepository) Create(log *models.AuthzAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListAdmin 管理端查询权限审计日志，role 按逗号分隔的角色列表逐项匹配
func (r *GormAuthzAuditLogRepository) ListAdmin(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	query := r.db.Model(&models.AuthzAuditLog{})
	for column, value := range map[string]uint{
		"operator_admin_id": filter.OperatorAdminID,
		"target_admin_id":   filter.TargetAdminID,
	} {
		if value != 0 {
			query = query.Where(column+" = ?", value)
		}
	}
	for column, value := range map[string]string{
		"action": strings.TrimSpace(filter.Action),
		"object": strings.TrimSpace(filter.Object),
		"method": strings.ToUpper(strings.TrimSpace(filter.Method)),
	} {
		if value != "" {
			query = query.Where(column+" = ?", value)
		}
	}
	if role := strings.TrimSpace(filter.Role); role != "" {
		query = query.Where(`(',' || role || ',') LIKE ? ESCAPE '\'`, "%,"+escapeLike(role)+",%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]models.AuthzAuditLog, 0)
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
