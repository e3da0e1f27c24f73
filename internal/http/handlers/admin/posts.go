package admin

import (
	"strings"

	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
)

// PostRequest 创建/更新文章请求
type PostRequest struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Cover    string   `json:"cover"`
	Draft    *bool    `json:"draft"`
}

func (r PostRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:    r.Title,
		Slug:     r.Slug,
		Excerpt:  r.Excerpt,
		Content:  r.Content,
		Category: r.Category,
		Tags:     r.Tags,
		Cover:    r.Cover,
		Draft:    r.Draft,
	}
}

// PostStatusRequest 发布状态切换请求
type PostStatusRequest struct {
	Draft *bool `json:"draft" binding:"required"`
}

var postNotFound = handlershared.MappedError{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.post_not_found"}

// GetAdminPosts 获取文章列表 (Admin)
func (h *Handler) GetAdminPosts(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	posts, total, err := h.PostService.ListAdmin(repository.PostListFilter{
		Page:       page,
		PageSize:   pageSize,
		Category:   strings.TrimSpace(c.Query("category")),
		Tag:        strings.TrimSpace(c.Query("tag")),
		Search:     strings.TrimSpace(c.Query("search")),
		SyncSource: strings.TrimSpace(c.Query("sync_source")),
		Draft:      handlershared.QueryBool(c, "draft"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.post_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, posts, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminPost 获取文章详情 (Admin)
func (h *Handler) GetAdminPost(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.PostService.GetAdmin(id)
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.post_fetch_failed", postNotFound)
		return
	}
	response.Success(c, post)
}

// CreatePost 创建文章
func (h *Handler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, post)
}

// UpdatePost 更新文章
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed", postNotFound)
		return
	}
	response.Success(c, post)
}

// UpdatePostStatus 切换文章发布状态
func (h *Handler) UpdatePostStatus(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req PostStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.SetDraft(id, *req.Draft)
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed", postNotFound)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除文章
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PostService.Delete(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.delete_failed", postNotFound)
		return
	}
	response.Success(c, nil)
}

// RebuildSearchIndex 以已发布文章重建全文检索索引
func (h *Handler) RebuildSearchIndex(c *gin.Context) {
	count, err := h.PostService.RebuildSearchIndex()
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.search_failed")
		return
	}
	response.Success(c, gin.H{"documents": count})
}
