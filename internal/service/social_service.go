package service

import (
	"fmt"
	"strings"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
)

// friendNodeOrderBase 好友节点排序基数，保证排在阶段节点之后
const friendNodeOrderBase = 1000

// SocialService 社交关系服务
type SocialService struct {
	repo repository.SocialFriendRepository
}

// NewSocialService 创建社交关系服务
func NewSocialService(repo repository.SocialFriendRepository) *SocialService {
	return &SocialService{repo: repo}
}

// SocialFriendInput 创建/更新社交关系输入
type SocialFriendInput struct {
	Name        string
	PublicLabel string
	Relation    string
	StageKey    string
	Avatar      string
	ProfileURL  string
	IsPublic    *bool
	SortOrder   int
}

// SocialGraphNode 图谱节点
type SocialGraphNode struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	StageKey string `json:"stage_key"`
	Order    int    `json:"order"`
}

// SocialGraphLink 图谱连线
type SocialGraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// SocialGraph 公开社交图谱
type SocialGraph struct {
	Nodes []SocialGraphNode `json:"nodes"`
	Links []SocialGraphLink `json:"links"`
}

// List 后台列表，按 sort_order、name、id 排序
func (s *SocialService) List() ([]models.SocialFriend, error) {
	return s.repo.List()
}

// Graph 构建公开图谱：固定阶段节点 + 公开好友节点
func (s *SocialService) Graph() (*SocialGraph, error) {
	friends, err := s.repo.ListPublic()
	if err != nil {
		return nil, err
	}
	return BuildSocialGraph(friends), nil
}

// Create 创建社交关系，未指定时默认公开
func (s *SocialService) Create(input SocialFriendInput) (*models.SocialFriend, error) {
	friend := &models.SocialFriend{IsPublic: true}
	if err := applySocialInput(friend, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(friend); err != nil {
		return nil, err
	}
	return friend, nil
}

// Update 更新社交关系
func (s *SocialService) Update(id uint, input SocialFriendInput) (*models.SocialFriend, error) {
	friend, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if friend == nil {
		return nil, ErrNotFound
	}
	if err := applySocialInput(friend, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(friend); err != nil {
		return nil, err
	}
	return friend, nil
}

// Delete 删除社交关系
func (s *SocialService) Delete(id uint) error {
	friend, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if friend == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func isValidStageKey(key string) bool {
	for _, stage := range constants.SocialStages {
		if stage.Key == key {
			return true
		}
	}
	return false
}

func applySocialInput(friend *models.SocialFriend, input SocialFriendInput) error {
	name := strings.TrimSpace(input.Name)
	label := strings.TrimSpace(input.PublicLabel)
	if name == "" || label == "" {
		return ErrInvalidSocialFriend
	}
	stageKey := strings.ToLower(strings.TrimSpace(input.StageKey))
	if stageKey == "" {
		stageKey = constants.SocialStageCareer
	}
	if !isValidStageKey(stageKey) {
		return ErrInvalidSocialFriend
	}
	friend.Name = name
	friend.PublicLabel = label
	friend.Relation = strings.TrimSpace(input.Relation)
	friend.StageKey = stageKey
	friend.Avatar = strings.TrimSpace(input.Avatar)
	friend.ProfileURL = strings.TrimSpace(input.ProfileURL)
	if input.IsPublic != nil {
		friend.IsPublic = *input.IsPublic
	}
	friend.SortOrder = input.SortOrder
	return nil
}

// BuildSocialGraph 好友按传入顺序连接到所属阶段
func BuildSocialGraph(friends []models.SocialFriend) *SocialGraph {
	graph := &SocialGraph{
		Nodes: make([]SocialGraphNode, 0, len(constants.SocialStages)+len(friends)),
		Links: make([]SocialGraphLink, 0, len(friends)),
	}
	for _, stage := range constants.SocialStages {
		graph.Nodes = append(graph.Nodes, SocialGraphNode{
			ID:       stageNodeID(stage.Key),
			Type:     "stage",
			Label:    stage.Label,
			StageKey: stage.Key,
			Order:    stage.Order,
		})
	}
	for _, friend := range friends {
		nodeID := fmt.Sprintf("friend-%d", friend.ID)
		graph.Nodes = append(graph.Nodes, SocialGraphNode{
			ID:       nodeID,
			Type:     "friend",
			Label:    friend.PublicLabel,
			StageKey: friend.StageKey,
			Order:    friendNodeOrderBase + friend.SortOrder,
		})
		graph.Links = append(graph.Links, SocialGraphLink{Source: stageNodeID(friend.StageKey), Target: nodeID})
	}
	return graph
}

func stageNodeID(key string) string {
	return "stage-" + key
}
