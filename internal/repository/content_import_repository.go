package repository

import (
	"errors"

	"github.com/openingclouds/internal/models"

	"gorm.io/gorm"
)

// ContentImportRepository 结构化数据导入，按自然键更新或创建
type ContentImportRepository interface {
	Transaction(fn func(repo ContentImportRepository) error) error
	Truncate() error
	UpsertTimelineNode(node *models.TimelineNode) error
	UpsertTravelPlace(place *models.TravelPlace) error
	UpsertSocialFriend(friend *models.SocialFriend) error
	UpsertHighlightStage(stage *models.HighlightStage) error
	UpsertHighlightItem(item *models.HighlightItem) error
}

// GormContentImportRepository GORM 实现
type GormContentImportRepository struct {
	db *gorm.DB
}

// NewContentImportRepository 创建导入仓库
func NewContentImportRepository(db *gorm.DB) *GormContentImportRepository {
	return &GormContentImportRepository{db: db}
}

// Transaction 在同一事务内执行导入
func (r *GormContentImportRepository) Transaction(fn func(repo ContentImportRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormContentImportRepository{db: tx})
	})
}

// Truncate 清空时间线、足迹、社交、高光数据
func (r *GormContentImportRepository) Truncate() error {
	for _, model := range []interface{}{
		&models.HighlightItem{},
		&models.HighlightStage{},
		&models.TimelineNode{},
		&models.TravelPlace{},
		&models.SocialFriend{},
	} {
		if err := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpsertTimelineNode 以 title + start_date 为键
func (r *GormContentImportRepository) UpsertTimelineNode(node *models.TimelineNode) error {
	var existing models.TimelineNode
	err := r.db.Where("title = ? AND start_date = ?", node.Title, node.StartDate).First(&existing).Error
	return r.saveOrCreate(err, node, func() {
		node.ID = existing.ID
		node.CreatedAt = existing.CreatedAt
	})
}

// UpsertTravelPlace 以 province + city 为键
func (r *GormContentImportRepository) UpsertTravelPlace(place *models.TravelPlace) error {
	var existing models.TravelPlace
	err := r.db.Where("province = ? AND city = ?", place.Province, place.City).First(&existing).Error
	return r.saveOrCreate(err, place, func() {
		place.ID = existing.ID
		place.CreatedAt = existing.CreatedAt
	})
}

// UpsertSocialFriend 以 public_label 为键
func (r *GormContentImportRepository) UpsertSocialFriend(friend *models.SocialFriend) error {
	var existing models.SocialFriend
	err := r.db.Where("public_label = ?", friend.PublicLabel).First(&existing).Error
	return r.saveOrCreate(err, friend, func() {
		friend.ID = existing.ID
		friend.CreatedAt = existing.CreatedAt
	})
}

// UpsertHighlightStage 以 title + start_date 为键，start_date 可为空
func (r *GormContentImportRepository) UpsertHighlightStage(stage *models.HighlightStage) error {
	var existing models.HighlightStage
	query := r.db.Where("title = ?", stage.Title)
	if stage.StartDate == nil {
		query = query.Where("start_date IS NULL")
	} else {
		query = query.Where("start_date = ?", *stage.StartDate)
	}
	err := query.First(&existing).Error
	return r.saveOrCreate(err, stage, func() {
		stage.ID = existing.ID
		stage.CreatedAt = existing.CreatedAt
	})
}

// UpsertHighlightItem 以 stage_id + title 为键
func (r *GormContentImportRepository) UpsertHighlightItem(item *models.HighlightItem) error {
	var existing models.HighlightItem
	err := r.db.Where("stage_id = ? AND title = ?", item.StageID, item.Title).First(&existing).Error
	return r.saveOrCreate(err, item, func() {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	})
}

func (r *GormContentImportRepository) saveOrCreate(findErr error, value interface{}, adopt func()) error {
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return r.db.Create(value).Error
		}
		return findErr
	}
	adopt()
	return r.db.Omit("Items").Save(value).Error
}
