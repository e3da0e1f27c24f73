package repository

import (
	"errors"
	"strings"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// ObsidianDocumentRepository 文档池数据访问接口
type ObsidianDocumentRepository interface {
	WithTx(tx *gorm.DB) ObsidianDocumentRepository
	Transaction(fn func(tx *gorm.DB) error) error
	GetByID(id uint) (*models.ObsidianDocument, error)
	GetByVaultPath(path string) (*models.ObsidianDocument, error)
	List(filter ObsidianDocumentListFilter) ([]models.ObsidianDocument, int64, error)
	ListExisting() ([]models.ObsidianDocument, error)
	Create(doc *models.ObsidianDocument) error
	Update(doc *models.ObsidianDocument) error
}

// GormObsidianDocumentRepository GORM 实现
type GormObsidianDocumentRepository struct {
	db *gorm.DB
}

// NewObsidianDocumentRepository 创建文档池仓库
func NewObsidianDocumentRepository(db *gorm.DB) *GormObsidianDocumentRepository {
	return &GormObsidianDocumentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormObsidianDocumentRepository) WithTx(tx *gorm.DB) ObsidianDocumentRepository {
	if tx == nil {
		return r
	}
	return &GormObsidianDocumentRepository{db: tx}
}

// Transaction 执行事务
func (r *GormObsidianDocumentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取文档
func (r *GormObsidianDocumentRepository) GetByID(id uint) (*models.ObsidianDocument, error) {
	var doc models.ObsidianDocument
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// GetByVaultPath 根据相对路径获取文档
func (r *GormObsidianDocumentRepository) GetByVaultPath(path string) (*models.ObsidianDocument, error) {
	var doc models.ObsidianDocument
	if err := r.db.Where("vault_path = ?", path).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// List 文档列表，按 vault_path ASC；列表不返回正文
func (r *GormObsidianDocumentRepository) List(filter ObsidianDocumentListFilter) ([]models.ObsidianDocument, int64, error) {
	query := r.db.Model(&models.ObsidianDocument{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"vault_path", "title", "slug_candidate"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}
	if filter.SourceExists != nil {
		query = query.Where("source_exists = ?", *filter.SourceExists)
	}
	if filter.HasPublishTag != nil {
		query = query.Where("has_publish_tag = ?", *filter.HasPublishTag)
	}
	if filter.Linked != nil {
		if *filter.Linked {
			query = query.Where("linked_post_id IS NOT NULL")
		} else {
			query = query.Where("linked_post_id IS NULL")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	docs := make([]models.ObsidianDocument, 0)
	if err := query.Omit("content").Order("vault_path ASC").Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ListExisting 列出源文件仍存在的文档，按 vault_path ASC
func (r *GormObsidianDocumentRepository) ListExisting() ([]models.ObsidianDocument, error) {
	docs := make([]models.ObsidianDocument, 0)
	if err := r.db.Where("source_exists = ?", true).Order("vault_path ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Create 创建文档
func (r *GormObsidianDocumentRepository) Create(doc *models.ObsidianDocument) error {
	return r.db.Create(doc).Error
}

// Update 更新文档
func (r *GormObsidianDocumentRepository) Update(doc *models.ObsidianDocument) error {
	return r.db.Save(doc).Error
}
