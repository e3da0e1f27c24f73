package repository

import (
	"errors"
	"time"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostViewRepository 文章阅读计数数据访问接口
type PostViewRepository interface {
	Increment(postID uint) (uint64, error)
	Get(postID uint) (uint64, error)
	Sum() (uint64, error)
}

// GormPostViewRepository GORM 实现
type GormPostViewRepository struct {
	db *gorm.DB
}

// NewPostViewRepository 创建阅读计数仓库
func NewPostViewRepository(db *gorm.DB) *GormPostViewRepository {
	return &GormPostViewRepository{db: db}
}

// Increment 阅读数 +1 并返回最新值
func (r *GormPostViewRepository) Increment(postID uint) (uint64, error) {
	var views uint64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		row := &models.PostView{PostID: postID, Views: 1, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"views":      gorm.Expr("post_views.views + 1"),
				"updated_at": now,
			}),
		}).Create(row).Error; err != nil {
			return err
		}
		var current models.PostView
		if err := tx.Where("post_id = ?", postID).First(&current).Error; err != nil {
			return err
		}
		views = current.Views
		return nil
	})
	return views, err
}

// Get 获取阅读数，不存在时为 0
func (r *GormPostViewRepository) Get(postID uint) (uint64, error) {
	var row models.PostView
	if err := r.db.Where("post_id = ?", postID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Views, nil
}

// Sum 统计总阅读数
func (r *GormPostViewRepository) Sum() (uint64, error) {
	var total uint64
	if err := r.db.Model(&models.PostView{}).Select("COALESCE(SUM(views), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
