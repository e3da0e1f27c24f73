package service

import (
	"strings"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
	"github.com/openingclouds/internal/repository"
)

var allowedTimelineTypes = map[string]struct{}{
	constants.TimelineTypeCareer:     {},
	constants.TimelineTypeHealth:     {},
	constants.TimelineTypeLearning:   {},
	constants.TimelineTypeFamily:     {},
	constants.TimelineTypeReflection: {},
}

var allowedTimelineImpacts = map[string]struct{}{
	constants.TimelineImpactHigh:   {},
	constants.TimelineImpactMedium: {},
	constants.TimelineImpactLow:    {},
}

// TimelineService 人生时间线服务
type TimelineService struct {
	repo repository.TimelineRepository
}

// NewTimelineService 创建时间线服务
func NewTimelineService(repo repository.TimelineRepository) *TimelineService {
	return &TimelineService{repo: repo}
}

// TimelineInput 创建/更新时间线节点输入
type TimelineInput struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Type        string
	Impact      string
	Phase       string
	Tags        []string
	Cover       string
	Links       []models.TimelineLink
	SortOrder   int
}

// List 按 sort_order、start_date、id 排序
func (s *TimelineService) List() ([]models.TimelineNode, error) {
	return s.repo.List()
}

// Create 创建节点
func (s *TimelineService) Create(input TimelineInput) (*models.TimelineNode, error) {
	node := &models.TimelineNode{}
	if err := applyTimelineInput(node, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(node); err != nil {
		return nil, err
	}
	return node, nil
}

// Update 更新节点
func (s *TimelineService) Update(id uint, input TimelineInput) (*models.TimelineNode, error) {
	node, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, ErrNotFound
	}
	if err := applyTimelineInput(node, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(node); err != nil {
		return nil, err
	}
	return node, nil
}

// Delete 删除节点
func (s *TimelineService) Delete(id uint) error {
	node, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if node == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// Reorder 批量调整排序
func (s *TimelineService) Reorder(items []repository.SortOrderUpdate) error {
	return s.repo.Reorder(items)
}

func applyTimelineInput(node *models.TimelineNode, input TimelineInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrInvalidTimelineNode
	}
	start, ok := parseOptionalDate(input.StartDate)
	if !ok || start == nil {
		return ErrInvalidTimelineNode
	}
	end, ok := parseOptionalDate(input.EndDate)
	if !ok {
		return ErrInvalidTimelineNode
	}
	nodeType := strings.ToLower(strings.TrimSpace(input.Type))
	if _, ok := allowedTimelineTypes[nodeType]; !ok {
		return ErrInvalidTimelineNode
	}
	impact := strings.ToLower(strings.TrimSpace(input.Impact))
	if impact == "" {
		impact = constants.TimelineImpactMedium
	}
	if _, ok := allowedTimelineImpacts[impact]; !ok {
		return ErrInvalidTimelineNode
	}

	links := make(models.TimelineLinks, 0, len(input.Links))
	for _, link := range input.Links {
		url := strings.TrimSpace(link.URL)
		if url == "" {
			continue
		}
		label := strings.TrimSpace(link.Label)
		if label == "" {
			label = url
		}
		links = append(links, models.TimelineLink{Label: label, URL: url})
	}

	node.Title = title
	node.Description = strings.TrimSpace(input.Description)
	node.StartDate = *start
	node.EndDate = end
	node.Type = nodeType
	node.Impact = impact
	node.Phase = strings.TrimSpace(input.Phase)
	node.Tags = models.StringArray(obsidian.NormalizeTags(input.Tags))
	node.Cover = strings.TrimSpace(input.Cover)
	node.Links = links
	node.SortOrder = input.SortOrder
	return nil
}
