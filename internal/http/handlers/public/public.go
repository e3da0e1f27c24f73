package public

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/search"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

var postNotFound = handlershared.MappedError{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.post_not_found"}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// GetHome 首页聚合数据
func (h *Handler) GetHome(c *gin.Context) {
	payload, err := h.HomeService.Home()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, payload)
}

// GetPosts 获取已发布文章列表
func (h *Handler) GetPosts(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	posts, total, err := h.PostService.ListPublic(service.PostPublicListInput{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.post_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, posts, handlershared.BuildPagination(page, pageSize, total))
}

// SearchPosts 全文检索已发布文章
func (h *Handler) SearchPosts(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if keyword == "" {
		response.Success(c, gin.H{"hits": []search.Hit{}, "total": 0})
		return
	}
	hits, total, err := h.PostService.Search(keyword, limit)
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.search_failed")
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	response.Success(c, gin.H{"hits": hits, "total": total})
}

// GetPostBySlug 获取已发布文章详情
func (h *Handler) GetPostBySlug(c *gin.Context) {
	post, err := h.PostService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.post_fetch_failed", postNotFound)
		return
	}
	response.Success(c, post)
}

// RecordPostView 记录文章阅读，同一 IP 在节流期内只计一次
func (h *Handler) RecordPostView(c *gin.Context) {
	result, err := h.PostService.RecordView(c.Request.Context(), c.Param("slug"), c.ClientIP())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed", postNotFound)
		return
	}
	response.Success(c, result)
}

// GetTimeline 时间线
func (h *Handler) GetTimeline(c *gin.Context) {
	nodes, err := h.TimelineService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, nodes)
}

// GetHighlights 高光时刻
func (h *Handler) GetHighlights(c *gin.Context) {
	stages, err := h.HighlightService.ListStages()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, stages)
}

// GetTravel 旅行足迹（按省份分组）
func (h *Handler) GetTravel(c *gin.Context) {
	groups, err := h.TravelService.Grouped()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, groups)
}

// GetSocialGraph 社交图谱
func (h *Handler) GetSocialGraph(c *gin.Context) {
	graph, err := h.SocialService.Graph()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, graph)
}
