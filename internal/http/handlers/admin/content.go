package admin

import (
	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ====================  时间线  ====================

// TimelineRequest 时间线节点请求
type TimelineRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	StartDate   string                `json:"start_date" binding:"required"`
	EndDate     string                `json:"end_date"`
	Type        string                `json:"type"`
	Impact      string                `json:"impact"`
	Phase       string                `json:"phase"`
	Tags        []string              `json:"tags"`
	Cover       string                `json:"cover"`
	Links       []models.TimelineLink `json:"links"`
	SortOrder   int                   `json:"sort_order"`
}

func (r TimelineRequest) toInput() service.TimelineInput {
	return service.TimelineInput{
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Type:        r.Type,
		Impact:      r.Impact,
		Phase:       r.Phase,
		Tags:        r.Tags,
		Cover:       r.Cover,
		Links:       r.Links,
		SortOrder:   r.SortOrder,
	}
}

// ReorderRequest 排序权重批量更新请求
type ReorderRequest struct {
	Items []repository.SortOrderUpdate `json:"items" binding:"required"`
}

// ListTimeline 时间线列表
func (h *Handler) ListTimeline(c *gin.Context) {
	nodes, err := h.TimelineService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, nodes)
}

// CreateTimeline 创建时间线节点
func (h *Handler) CreateTimeline(c *gin.Context) {
	var req TimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	node, err := h.TimelineService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, node)
}

// UpdateTimeline 更新时间线节点
func (h *Handler) UpdateTimeline(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req TimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	node, err := h.TimelineService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, node)
}

// DeleteTimeline 删除时间线节点
func (h *Handler) DeleteTimeline(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.TimelineService.Delete(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ReorderTimeline 批量更新时间线排序
func (h *Handler) ReorderTimeline(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.TimelineService.Reorder(req.Items); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  旅行足迹  ====================

// TravelRequest 旅行足迹请求
type TravelRequest struct {
	Province  string              `json:"province" binding:"required"`
	City      string              `json:"city" binding:"required"`
	Notes     string              `json:"notes"`
	VisitedAt string              `json:"visited_at"`
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`
	Cover     string              `json:"cover"`
	SortOrder int                 `json:"sort_order"`
}

func (r TravelRequest) toInput() service.TravelInput {
	return service.TravelInput{
		Province:  r.Province,
		City:      r.City,
		Notes:     r.Notes,
		VisitedAt: r.VisitedAt,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Cover:     r.Cover,
		SortOrder: r.SortOrder,
	}
}

// ListTravel 旅行足迹列表
func (h *Handler) ListTravel(c *gin.Context) {
	places, err := h.TravelService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, places)
}

// CreateTravel 创建旅行足迹
func (h *Handler) CreateTravel(c *gin.Context) {
	var req TravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	place, err := h.TravelService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, place)
}

// UpdateTravel 更新旅行足迹
func (h *Handler) UpdateTravel(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req TravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	place, err := h.TravelService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, place)
}

// DeleteTravel 删除旅行足迹
func (h *Handler) DeleteTravel(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.TravelService.Delete(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  社交关系  ====================

// SocialFriendRequest 社交关系请求
type SocialFriendRequest struct {
	Name        string `json:"name" binding:"required"`
	PublicLabel string `json:"public_label"`
	Relation    string `json:"relation"`
	StageKey    string `json:"stage_key" binding:"required"`
	Avatar      string `json:"avatar"`
	ProfileURL  string `json:"profile_url"`
	IsPublic    *bool  `json:"is_public"`
	SortOrder   int    `json:"sort_order"`
}

func (r SocialFriendRequest) toInput() service.SocialFriendInput {
	return service.SocialFriendInput{
		Name:        r.Name,
		PublicLabel: r.PublicLabel,
		Relation:    r.Relation,
		StageKey:    r.StageKey,
		Avatar:      r.Avatar,
		ProfileURL:  r.ProfileURL,
		IsPublic:    r.IsPublic,
		SortOrder:   r.SortOrder,
	}
}

// ListSocial 社交关系列表
func (h *Handler) ListSocial(c *gin.Context) {
	friends, err := h.SocialService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, friends)
}

// CreateSocial 创建社交关系
func (h *Handler) CreateSocial(c *gin.Context) {
	var req SocialFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	friend, err := h.SocialService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, friend)
}

// UpdateSocial 更新社交关系
func (h *Handler) UpdateSocial(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req SocialFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	friend, err := h.SocialService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, friend)
}

// DeleteSocial 删除社交关系
func (h *Handler) DeleteSocial(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.SocialService.Delete(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  高光时刻  ====================

// HighlightStageRequest 高光阶段请求
type HighlightStageRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	SortOrder   int    `json:"sort_order"`
}

func (r HighlightStageRequest) toInput() service.HighlightStageInput {
	return service.HighlightStageInput{
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		SortOrder:   r.SortOrder,
	}
}

// HighlightItemRequest 高光条目请求
type HighlightItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AchievedAt  string `json:"achieved_at"`
	SortOrder   int    `json:"sort_order"`
}

func (r HighlightItemRequest) toInput() service.HighlightItemInput {
	return service.HighlightItemInput{
		Title:       r.Title,
		Description: r.Description,
		AchievedAt:  r.AchievedAt,
		SortOrder:   r.SortOrder,
	}
}

// ListHighlightStages 高光阶段列表（含条目）
func (h *Handler) ListHighlightStages(c *gin.Context) {
	stages, err := h.HighlightService.ListStages()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, stages)
}

// CreateHighlightStage 创建高光阶段
func (h *Handler) CreateHighlightStage(c *gin.Context) {
	var req HighlightStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	stage, err := h.HighlightService.CreateStage(req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, stage)
}

// UpdateHighlightStage 更新高光阶段
func (h *Handler) UpdateHighlightStage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req HighlightStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	stage, err := h.HighlightService.UpdateStage(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, stage)
}

// DeleteHighlightStage 删除高光阶段及其条目
func (h *Handler) DeleteHighlightStage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.HighlightService.DeleteStage(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// CreateHighlightItem 在阶段下创建条目
func (h *Handler) CreateHighlightItem(c *gin.Context) {
	stageID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req HighlightItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.HighlightService.CreateItem(stageID, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, item)
}

// UpdateHighlightItem 更新高光条目
func (h *Handler) UpdateHighlightItem(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req HighlightItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.HighlightService.UpdateItem(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, item)
}

// DeleteHighlightItem 删除高光条目
func (h *Handler) DeleteHighlightItem(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.HighlightService.DeleteItem(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ReorderHighlights 批量更新阶段与条目排序
func (h *Handler) ReorderHighlights(c *gin.Context) {
	var req service.HighlightReorderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.HighlightService.Reorder(req); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, nil)
}
