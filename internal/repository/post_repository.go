package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

const postSelectWithViews = "posts.*, COALESCE(post_views.views, 0) AS views"
const postViewsJoin = "LEFT JOIN post_views ON post_views.post_id = posts.id"

// PostRepository 文章数据访问接口
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Transaction(fn func(tx *gorm.DB) error) error
	List(filter PostListFilter) ([]models.Post, int64, error)
	ListPublished() ([]models.Post, error)
	GetByID(id uint) (*models.Post, error)
	GetBySlug(slug string, onlyPublished bool) (*models.Post, error)
	GetObsidianByPath(path string) (*models.Post, error)
	FindLatestByObsidianPath(path string) (*models.Post, error)
	ListObsidianSynced(prefixes []string) ([]models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	SetDraft(ids []uint, draft bool, syncedAt *time.Time) (int64, error)
	Delete(ids ...uint) error
	CountBySlug(slug string, excludeID uint) (int64, error)
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建文章仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPostRepository) WithTx(tx *gorm.DB) PostRepository {
	if tx == nil {
		return r
	}
	return &GormPostRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPostRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 文章列表
// 默认按 updated_at DESC, id DESC 排序；SortByViews 时按 views DESC 优先。
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, int64, error) {
	query := r.db.Model(&models.Post{})

	if filter.OnlyPublished {
		query = query.Where("posts.draft = ?", false)
	} else if filter.Draft != nil {
		query = query.Where("posts.draft = ?", *filter.Draft)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("posts.category = ?", category)
	}
	if source := strings.TrimSpace(filter.SyncSource); source != "" {
		query = query.Where("posts.sync_source = ?", source)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where(tagMatchConditionByDialect(dbDialectName(r.db), "posts", "tags"), tag)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"posts.title", "posts.slug", "posts.excerpt"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query.Select(postSelectWithViews).Joins(postViewsJoin), filter.Page, filter.PageSize)
	if filter.SortByViews {
		query = query.Order("views DESC").Order("posts.updated_at DESC").Order("posts.id DESC")
	} else {
		query = query.Order("posts.updated_at DESC").Order("posts.id DESC")
	}

	posts := make([]models.Post, 0)
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListPublished 全部已发布文章（检索重建使用），按 id ASC
func (r *GormPostRepository) ListPublished() ([]models.Post, error) {
	posts := make([]models.Post, 0)
	if err := r.db.Where("draft = ?", false).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID 根据 ID 获取文章
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	return r.first(r.db.Where("posts.id = ?", id))
}

// GetBySlug 根据 slug 获取文章
func (r *GormPostRepository) GetBySlug(slug string, onlyPublished bool) (*models.Post, error) {
	query := r.db.Where("posts.slug = ?", slug)
	if onlyPublished {
		query = query.Where("posts.draft = ?", false)
	}
	return r.first(query)
}

// GetObsidianByPath 获取 obsidian 来源且路径匹配的文章
func (r *GormPostRepository) GetObsidianByPath(path string) (*models.Post, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return r.first(r.db.
		Where("posts.sync_source = ? AND posts.obsidian_path = ?", constants.PostSyncSourceObsidian, path).
		Order("posts.id ASC"))
}

// FindLatestByObsidianPath 按路径查找最近更新的文章（不限来源）
func (r *GormPostRepository) FindLatestByObsidianPath(path string) (*models.Post, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return r.first(r.db.
		Where("posts.obsidian_path = ?", path).
		Order("posts.updated_at DESC").
		Order("posts.id DESC"))
}

// ListObsidianSynced 列出 obsidian 来源且路径非空的文章，可按路径前缀限定范围
func (r *GormPostRepository) ListObsidianSynced(prefixes []string) ([]models.Post, error) {
	query := r.db.Model(&models.Post{}).
		Where("sync_source = ? AND obsidian_path <> ''", constants.PostSyncSourceObsidian)

	conditions := make([]string, 0, len(prefixes))
	args := make([]interface{}, 0, len(prefixes))
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		conditions = append(conditions, `obsidian_path LIKE ? ESCAPE '\'`)
		args = append(args, escapeLikePrefix(prefix))
	}
	if len(conditions) > 0 {
		query = query.Where(strings.Join(conditions, " OR "), args...)
	}

	posts := make([]models.Post, 0)
	if err := query.Order("id ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create 创建文章
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// Update 更新文章
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// SetDraft 批量设置草稿状态
func (r *GormPostRepository) SetDraft(ids []uint, draft bool, syncedAt *time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updates := map[string]interface{}{
		"draft":      draft,
		"updated_at": time.Now(),
	}
	if syncedAt != nil {
		updates["last_synced_at"] = *syncedAt
	}
	result := r.db.Model(&models.Post{}).Where("id IN ?", ids).Updates(updates)
	return result.RowsAffected, result.Error
}

// Delete 物理删除文章，同时清理阅读计数与文档池关联
func (r *GormPostRepository) Delete(ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN ?", ids).Delete(&models.PostView{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ObsidianDocument{}).
			Where("linked_post_id IN ?", ids).
			Update("linked_post_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Post{}).Error
	})
}

// CountBySlug 统计 slug 数量
func (r *GormPostRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPostRepository) first(query *gorm.DB) (*models.Post, error) {
	var post models.Post
	err := query.Model(&models.Post{}).
		Select(postSelectWithViews).
		Joins(postViewsJoin).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}
