package service

import (
	"context"
	"strings"
	"time"

	"github.com/openingclouds/internal/cache"
	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/search"
)

// 公开列表排序方式
const (
	PostSortLatest = "latest"
	PostSortViews  = "views"
)

// PostSearchEngine 文章检索引擎
type PostSearchEngine interface {
	PostSearchIndexer
	Search(keyword string, limit int) ([]search.Hit, uint64, error)
	Rebuild(docs []search.PostDocument) error
}

// PostService 文章业务服务
type PostService struct {
	repo     repository.PostRepository
	viewRepo repository.PostViewRepository
	engine   PostSearchEngine
	throttle cache.ViewThrottle
}

// NewPostService 创建文章服务，engine 为空时检索不可用
func NewPostService(repo repository.PostRepository, viewRepo repository.PostViewRepository, engine PostSearchEngine, throttle cache.ViewThrottle) *PostService {
	if throttle == nil {
		throttle = cache.NewMemoryViewThrottle(cache.DefaultViewThrottleTTL)
	}
	return &PostService{
		repo:     repo,
		viewRepo: viewRepo,
		engine:   engine,
		throttle: throttle,
	}
}

// PostInput 创建/更新文章输入
type PostInput struct {
	Title    string
	Slug     string
	Excerpt  string
	Content  string
	Category string
	Tags     []string
	Cover    string
	Draft    *bool
}

// PostPublicListInput 公开文章列表参数
type PostPublicListInput struct {
	Category string
	Tag      string
	Sort     string
	Page     int
	PageSize int
}

// PostViewResult 阅读计数结果
type PostViewResult struct {
	Slug      string `json:"slug"`
	Views     uint64 `json:"views"`
	Throttled bool   `json:"throttled"`
}

// ListPublic 获取公开文章列表（仅已发布）
func (s *PostService) ListPublic(input PostPublicListInput) ([]models.Post, int64, error) {
	filter := repository.PostListFilter{
		Page:          input.Page,
		PageSize:      input.PageSize,
		Category:      strings.TrimSpace(input.Category),
		Tag:           strings.TrimSpace(input.Tag),
		OnlyPublished: true,
		SortByViews:   strings.EqualFold(strings.TrimSpace(input.Sort), PostSortViews),
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开文章详情
func (s *PostService) GetPublicBySlug(slug string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// ListAdmin 获取后台文章列表
func (s *PostService) ListAdmin(filter repository.PostListFilter) ([]models.Post, int64, error) {
	filter.OnlyPublished = false
	return s.repo.List(filter)
}

// GetAdmin 获取后台文章详情
func (s *PostService) GetAdmin(id uint) (*models.Post, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *PostService) normalizeInput(input PostInput) (PostInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Slug == "" {
		input.Slug = obsidian.Slugify(input.Title)
	}
	if input.Slug == "" {
		return input, ErrSlugRequired
	}
	if input.Title == "" {
		input.Title = input.Slug
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = constants.DefaultPostCategory
	}
	if !obsidian.IsValidCategory(category) {
		return input, ErrInvalidCategory
	}
	input.Category = category
	input.Excerpt = strings.TrimSpace(input.Excerpt)
	input.Cover = strings.TrimSpace(input.Cover)
	input.Tags = obsidian.NormalizeTags(input.Tags)
	return input, nil
}

// Create 创建手工文章，未指定 draft 时默认草稿
func (s *PostService) Create(input PostInput) (*models.Post, error) {
	normalized, err := s.normalizeInput(input)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(normalized.Slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	draft := true
	if normalized.Draft != nil {
		draft = *normalized.Draft
	}
	post := &models.Post{
		Title:      normalized.Title,
		Slug:       normalized.Slug,
		Excerpt:    normalized.Excerpt,
		Content:    normalized.Content,
		Category:   normalized.Category,
		Tags:       models.StringArray(normalized.Tags),
		Cover:      normalized.Cover,
		Draft:      draft,
		SyncSource: constants.PostSyncSourceManual,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	s.syncSearchIndex(post, "")
	return post, nil
}

// Update 更新文章
func (s *PostService) Update(id uint, input PostInput) (*models.Post, error) {
	post, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	normalized, err := s.normalizeInput(input)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(normalized.Slug, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	previousSlug := post.Slug
	post.Title = normalized.Title
	post.Slug = normalized.Slug
	post.Excerpt = normalized.Excerpt
	post.Content = normalized.Content
	post.Category = normalized.Category
	post.Tags = models.StringArray(normalized.Tags)
	post.Cover = normalized.Cover
	if normalized.Draft != nil {
		post.Draft = *normalized.Draft
	}
	if err := s.repo.Update(post); err != nil {
		return nil, err
	}
	s.syncSearchIndex(post, previousSlug)
	return post, nil
}

// SetDraft 切换发布状态
func (s *PostService) SetDraft(id uint, draft bool) (*models.Post, error) {
	post, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.SetDraft([]uint{id}, draft, nil); err != nil {
		return nil, err
	}
	post.Draft = draft
	s.syncSearchIndex(post, "")
	return post, nil
}

// Delete 物理删除文章
func (s *PostService) Delete(id uint) error {
	post, err := s.GetAdmin(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if s.engine != nil {
		if err := s.engine.Delete(post.Slug); err != nil {
			logger.Warnw("search_index_delete_failed", "slug", post.Slug, "error", err)
		}
	}
	return nil
}

// RecordView 记录一次阅读，同一访客在节流期内不重复计数
func (s *PostService) RecordView(ctx context.Context, slug, ident string) (*PostViewResult, error) {
	post, err := s.GetPublicBySlug(slug)
	if err != nil {
		return nil, err
	}
	result := &PostViewResult{Slug: post.Slug, Views: post.Views}

	ident = strings.TrimSpace(ident)
	if ident == "" {
		ident = "unknown"
	}
	marked, err := s.throttle.Mark(ctx, post.Slug, ident)
	if err != nil {
		// 节流存储不可用时仍计数
		logger.Warnw("post_view_throttle_failed", "slug", post.Slug, "error", err)
		marked = true
	}
	if !marked {
		result.Throttled = true
		return result, nil
	}
	views, err := s.viewRepo.Increment(post.ID)
	if err != nil {
		return nil, err
	}
	result.Views = views
	return result, nil
}

// Search 全文检索已发布文章
func (s *PostService) Search(keyword string, limit int) ([]search.Hit, uint64, error) {
	if s.engine == nil {
		return nil, 0, ErrSearchDisabled
	}
	return s.engine.Search(keyword, limit)
}

// RebuildSearchIndex 以数据库中已发布文章重建检索索引
func (s *PostService) RebuildSearchIndex() (int, error) {
	if s.engine == nil {
		return 0, ErrSearchDisabled
	}
	started := time.Now()
	posts, err := s.repo.ListPublished()
	if err != nil {
		return 0, err
	}
	docs := make([]search.PostDocument, 0, len(posts))
	for i := range posts {
		docs = append(docs, search.DocumentFromPost(&posts[i]))
	}
	if err := s.engine.Rebuild(docs); err != nil {
		return 0, err
	}
	logger.Infow("search_index_rebuilt", "documents", len(docs), "duration_ms", time.Since(started).Milliseconds())
	return len(docs), nil
}

func (s *PostService) syncSearchIndex(post *models.Post, previousSlug string) {
	if s.engine == nil || post == nil {
		return
	}
	if previousSlug != "" && previousSlug != post.Slug {
		if err := s.engine.Delete(previousSlug); err != nil {
			logger.Warnw("search_index_delete_failed", "slug", previousSlug, "error", err)
		}
	}
	var err error
	if post.IsPublished() {
		err = s.engine.IndexPost(search.DocumentFromPost(post))
	} else {
		err = s.engine.Delete(post.Slug)
	}
	if err != nil {
		logger.Warnw("search_index_update_failed", "slug", post.Slug, "error", err)
	}
}
