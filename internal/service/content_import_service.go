package service

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ContentImportFile 结构化数据文件（JSON / YAML）
type ContentImportFile struct {
	TimelineNodes   []ImportTimelineNode   `json:"timeline_nodes" yaml:"timeline_nodes"`
	TravelPlaces    []ImportTravelPlace    `json:"travel_places" yaml:"travel_places"`
	SocialFriends   []ImportSocialFriend   `json:"social_friends" yaml:"social_friends"`
	HighlightStages []ImportHighlightStage `json:"highlight_stages" yaml:"highlight_stages"`
}

// ImportTimelineNode 时间线节点
type ImportTimelineNode struct {
	Title       string                `json:"title" yaml:"title"`
	Description string                `json:"description" yaml:"description"`
	StartDate   string                `json:"start_date" yaml:"start_date"`
	EndDate     string                `json:"end_date" yaml:"end_date"`
	Type        string                `json:"type" yaml:"type"`
	Impact      string                `json:"impact" yaml:"impact"`
	Phase       string                `json:"phase" yaml:"phase"`
	Tags        []string              `json:"tags" yaml:"tags"`
	Cover       string                `json:"cover" yaml:"cover"`
	Links       []models.TimelineLink `json:"links" yaml:"links"`
	SortOrder   *int                  `json:"sort_order" yaml:"sort_order"`
}

// ImportTravelPlace 旅行足迹
type ImportTravelPlace struct {
	Province  string   `json:"province" yaml:"province"`
	City      string   `json:"city" yaml:"city"`
	Notes     string   `json:"notes" yaml:"notes"`
	VisitedAt string   `json:"visited_at" yaml:"visited_at"`
	Latitude  *float64 `json:"latitude" yaml:"latitude"`
	Longitude *float64 `json:"longitude" yaml:"longitude"`
	Cover     string   `json:"cover" yaml:"cover"`
	SortOrder *int     `json:"sort_order" yaml:"sort_order"`
}

// ImportSocialFriend 社交关系
type ImportSocialFriend struct {
	Name        string `json:"name" yaml:"name"`
	PublicLabel string `json:"public_label" yaml:"public_label"`
	Relation    string `json:"relation" yaml:"relation"`
	StageKey    string `json:"stage_key" yaml:"stage_key"`
	Avatar      string `json:"avatar" yaml:"avatar"`
	ProfileURL  string `json:"profile_url" yaml:"profile_url"`
	IsPublic    *bool  `json:"is_public" yaml:"is_public"`
	SortOrder   *int   `json:"sort_order" yaml:"sort_order"`
}

// ImportHighlightStage 高光阶段及条目
type ImportHighlightStage struct {
	Title       string                `json:"title" yaml:"title"`
	Description string                `json:"description" yaml:"description"`
	StartDate   string                `json:"start_date" yaml:"start_date"`
	EndDate     string                `json:"end_date" yaml:"end_date"`
	SortOrder   *int                  `json:"sort_order" yaml:"sort_order"`
	Items       []ImportHighlightItem `json:"items" yaml:"items"`
}

// ImportHighlightItem 高光条目
type ImportHighlightItem struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	AchievedAt  string `json:"achieved_at" yaml:"achieved_at"`
	SortOrder   *int   `json:"sort_order" yaml:"sort_order"`
}

// ContentImportResult 导入计数
type ContentImportResult struct {
	Timeline        int  `json:"timeline"`
	Travel          int  `json:"travel"`
	Social          int  `json:"social"`
	HighlightStages int  `json:"highlight_stages"`
	HighlightItems  int  `json:"highlight_items"`
	DryRun          bool `json:"dry_run"`
}

// ContentImportService 结构化数据导入服务
type ContentImportService struct {
	repo repository.ContentImportRepository
}

// NewContentImportService 创建导入服务
func NewContentImportService(repo repository.ContentImportRepository) *ContentImportService {
	return &ContentImportService{repo: repo}
}

// DecodeContentImport 按扩展名解析，.yaml/.yml 走 YAML，其余按 JSON
func DecodeContentImport(raw []byte, filename string) (*ContentImportFile, error) {
	file := &ContentImportFile{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, file); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, file); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return file, nil
}

// Import 单事务导入，任一条目无效则整体回滚；dry-run 只校验并计数
func (s *ContentImportService) Import(file *ContentImportFile, dryRun, truncate bool) (*ContentImportResult, error) {
	if file == nil {
		file = &ContentImportFile{}
	}
	result := &ContentImportResult{DryRun: dryRun}
	apply := func(repo repository.ContentImportRepository) error {
		if truncate && repo != nil {
			if err := repo.Truncate(); err != nil {
				return err
			}
		}
		for index, item := range file.TimelineNodes {
			node := &models.TimelineNode{}
			nodeType := item.Type
			if strings.TrimSpace(nodeType) == "" {
				nodeType = constants.TimelineTypeLearning
			}
			err := applyTimelineInput(node, TimelineInput{
				Title:       item.Title,
				Description: item.Description,
				StartDate:   item.StartDate,
				EndDate:     item.EndDate,
				Type:        nodeType,
				Impact:      item.Impact,
				Phase:       item.Phase,
				Tags:        item.Tags,
				Cover:       item.Cover,
				Links:       item.Links,
				SortOrder:   sortOrderOrIndex(item.SortOrder, index),
			})
			if err != nil {
				return fmt.Errorf("timeline_nodes[%d]: %w", index, err)
			}
			if repo != nil {
				if err := repo.UpsertTimelineNode(node); err != nil {
					return err
				}
			}
			result.Timeline++
		}

		for index, item := range file.TravelPlaces {
			place := &models.TravelPlace{}
			err := applyTravelInput(place, TravelInput{
				Province:  item.Province,
				City:      item.City,
				Notes:     item.Notes,
				VisitedAt: item.VisitedAt,
				Latitude:  nullDecimal(item.Latitude),
				Longitude: nullDecimal(item.Longitude),
				Cover:     item.Cover,
				SortOrder: sortOrderOrIndex(item.SortOrder, index),
			})
			if err != nil {
				return fmt.Errorf("travel_places[%d]: %w", index, err)
			}
			if repo != nil {
				if err := repo.UpsertTravelPlace(place); err != nil {
					return err
				}
			}
			result.Travel++
		}

		for index, item := range file.SocialFriends {
			stageKey := strings.ToLower(strings.TrimSpace(item.StageKey))
			if !isValidStageKey(stageKey) {
				stageKey = constants.SocialStageCareer
			}
			name := item.Name
			if strings.TrimSpace(name) == "" {
				name = item.PublicLabel
			}
			friend := &models.SocialFriend{IsPublic: true}
			err := applySocialInput(friend, SocialFriendInput{
				Name:        name,
				PublicLabel: item.PublicLabel,
				Relation:    item.Relation,
				StageKey:    stageKey,
				Avatar:      item.Avatar,
				ProfileURL:  item.ProfileURL,
				IsPublic:    item.IsPublic,
				SortOrder:   sortOrderOrIndex(item.SortOrder, index),
			})
			if err != nil {
				return fmt.Errorf("social_friends[%d]: %w", index, err)
			}
			if repo != nil {
				if err := repo.UpsertSocialFriend(friend); err != nil {
					return err
				}
			}
			result.Social++
		}

		for stageIndex, item := range file.HighlightStages {
			stage := &models.HighlightStage{}
			err := applyStageInput(stage, HighlightStageInput{
				Title:       item.Title,
				Description: item.Description,
				StartDate:   item.StartDate,
				EndDate:     item.EndDate,
				SortOrder:   sortOrderOrIndex(item.SortOrder, stageIndex),
			})
			if err != nil {
				return fmt.Errorf("highlight_stages[%d]: %w", stageIndex, err)
			}
			if repo != nil {
				if err := repo.UpsertHighlightStage(stage); err != nil {
					return err
				}
			}
			result.HighlightStages++

			for itemIndex, entry := range item.Items {
				highlight := &models.HighlightItem{StageID: stage.ID}
				err := applyItemInput(highlight, HighlightItemInput{
					Title:       entry.Title,
					Description: entry.Description,
					AchievedAt:  entry.AchievedAt,
					SortOrder:   sortOrderOrIndex(entry.SortOrder, itemIndex),
				})
				if err != nil {
					return fmt.Errorf("highlight_stages[%d].items[%d]: %w", stageIndex, itemIndex, err)
				}
				if repo != nil {
					if err := repo.UpsertHighlightItem(highlight); err != nil {
						return err
					}
				}
				result.HighlightItems++
			}
		}
		return nil
	}

	if dryRun {
		if err := apply(nil); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := s.repo.Transaction(apply); err != nil {
		return nil, err
	}
	return result, nil
}

func sortOrderOrIndex(value *int, index int) int {
	if value != nil {
		return *value
	}
	return index
}

func nullDecimal(value *float64) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*value))
}
