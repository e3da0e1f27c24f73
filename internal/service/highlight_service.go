package service

import (
	"strings"

	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
)

// HighlightService 高光时刻服务
type HighlightService struct {
	repo repository.HighlightRepository
}

// NewHighlightService 创建高光时刻服务
func NewHighlightService(repo repository.HighlightRepository) *HighlightService {
	return &HighlightService{repo: repo}
}

// HighlightStageInput 阶段输入
type HighlightStageInput struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	SortOrder   int
}

// HighlightItemInput 条目输入
type HighlightItemInput struct {
	Title       string
	Description string
	AchievedAt  string
	SortOrder   int
}

// HighlightReorderInput 阶段与条目的批量排序
type HighlightReorderInput struct {
	Stages []repository.SortOrderUpdate `json:"stages"`
	Items  []repository.SortOrderUpdate `json:"items"`
}

// ListStages 阶段按 sort_order、start_date、id 排序，条目按 sort_order、achieved_at、id 排序
func (s *HighlightService) ListStages() ([]models.HighlightStage, error) {
	return s.repo.ListStages()
}

// CreateStage 创建阶段
func (s *HighlightService) CreateStage(input HighlightStageInput) (*models.HighlightStage, error) {
	stage := &models.HighlightStage{}
	if err := applyStageInput(stage, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateStage(stage); err != nil {
		return nil, err
	}
	stage.Items = []models.HighlightItem{}
	return stage, nil
}

// UpdateStage 更新阶段
func (s *HighlightService) UpdateStage(id uint, input HighlightStageInput) (*models.HighlightStage, error) {
	stage, err := s.repo.GetStage(id)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, ErrHighlightStageNotFound
	}
	if err := applyStageInput(stage, input); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStage(stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// DeleteStage 删除阶段及其条目
func (s *HighlightService) DeleteStage(id uint) error {
	stage, err := s.repo.GetStage(id)
	if err != nil {
		return err
	}
	if stage == nil {
		return ErrHighlightStageNotFound
	}
	return s.repo.DeleteStage(id)
}

// CreateItem 在阶段下创建条目
func (s *HighlightService) CreateItem(stageID uint, input HighlightItemInput) (*models.HighlightItem, error) {
	stage, err := s.repo.GetStage(stageID)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, ErrHighlightStageNotFound
	}
	item := &models.HighlightItem{StageID: stageID}
	if err := applyItemInput(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem 更新条目
func (s *HighlightService) UpdateItem(id uint, input HighlightItemInput) (*models.HighlightItem, error) {
	item, err := s.repo.GetItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if err := applyItemInput(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem 删除条目
func (s *HighlightService) DeleteItem(id uint) error {
	item, err := s.repo.GetItem(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	return s.repo.DeleteItem(id)
}

// Reorder 批量调整阶段与条目排序
func (s *HighlightService) Reorder(input HighlightReorderInput) error {
	if len(input.Stages) > 0 {
		if err := s.repo.ReorderStages(input.Stages); err != nil {
			return err
		}
	}
	if len(input.Items) > 0 {
		if err := s.repo.ReorderItems(input.Items); err != nil {
			return err
		}
	}
	return nil
}

func applyStageInput(stage *models.HighlightStage, input HighlightStageInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrInvalidHighlight
	}
	start, ok := parseOptionalDate(input.StartDate)
	if !ok {
		return ErrInvalidHighlight
	}
	end, ok := parseOptionalDate(input.EndDate)
	if !ok {
		return ErrInvalidHighlight
	}
	stage.Title = title
	stage.Description = strings.TrimSpace(input.Description)
	stage.StartDate = start
	stage.EndDate = end
	stage.SortOrder = input.SortOrder
	return nil
}

func applyItemInput(item *models.HighlightItem, input HighlightItemInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrInvalidHighlight
	}
	achievedAt, ok := parseOptionalDate(input.AchievedAt)
	if !ok {
		return ErrInvalidHighlight
	}
	item.Title = title
	item.Description = strings.TrimSpace(input.Description)
	item.AchievedAt = achievedAt
	item.SortOrder = input.SortOrder
	return nil
}
