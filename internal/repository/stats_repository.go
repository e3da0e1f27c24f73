package repository

import (
	"time"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// StatsRepository 首页统计聚合查询接口
// 只聚合统计数据，不承载业务规则。
type StatsRepository interface {
	GetOverview() (StatsOverviewRow, error)
	ListPublishedContent() ([]StatsPostContentRow, error)
}

// StatsOverviewRow 首页总览原始统计结果
type StatsOverviewRow struct {
	PostsTotal           int64
	PublishedPostsTotal  int64
	TimelineTotal        int64
	TravelTotal          int64
	SocialTotal          int64
	HighlightStagesTotal int64
	HighlightItemsTotal  int64
	ViewsTotal           int64
	FirstPublishedAt     *time.Time
}

// StatsPostContentRow 已发布文章的标签与正文（字数、标签去重用）
type StatsPostContentRow struct {
	Tags    models.StringArray
	Content string
}

// GormStatsRepository GORM 统计实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormStatsRepository) GetOverview() (StatsOverviewRow, error) {
	result := StatsOverviewRow{}

	postBase := func() *gorm.DB {
		return r.db.Model(&models.Post{})
	}
	if err := postBase().Count(&result.PostsTotal).Error; err != nil {
		return result, err
	}
	if err := postBase().Where("draft = ?", false).Count(&result.PublishedPostsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.TimelineNode{}).Count(&result.TimelineTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.TravelPlace{}).Count(&result.TravelTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.SocialFriend{}).Where("is_public = ?", true).Count(&result.SocialTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.HighlightStage{}).Count(&result.HighlightStagesTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.HighlightItem{}).Count(&result.HighlightItemsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.PostView{}).
		Select("COALESCE(SUM(views), 0)").
		Scan(&result.ViewsTotal).Error; err != nil {
		return result, err
	}

	var first models.Post
	err := postBase().Select("created_at").Where("draft = ?", false).Order("created_at ASC").Limit(1).Find(&first).Error
	if err != nil {
		return result, err
	}
	if !first.CreatedAt.IsZero() {
		createdAt := first.CreatedAt
		result.FirstPublishedAt = &createdAt
	}

	return result, nil
}

// ListPublishedContent 列出已发布文章的标签与正文
func (r *GormStatsRepository) ListPublishedContent() ([]StatsPostContentRow, error) {
	rows := make([]StatsPostContentRow, 0)
	if err := r.db.Model(&models.Post{}).
		Select("tags", "content").
		Where("draft = ?", false).
		Order("id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
