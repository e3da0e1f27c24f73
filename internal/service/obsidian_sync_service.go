package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/search"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxSlugAttempts 冲突 slug 最大尝试次数
const maxSlugAttempts = 100

// PostSearchIndexer 文章检索索引
type PostSearchIndexer interface {
	IndexPost(doc search.PostDocument) error
	Delete(slug string) error
}

// SyncPayload 单篇同步载荷
type SyncPayload struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	Cover        string   `json:"cover"`
	Excerpt      string   `json:"excerpt"`
	Description  string   `json:"description"`
	ObsidianPath string   `json:"obsidian_path"`
}

// UnmarshalJSON 兼容 obsidianPath 字段名以及字符串形式的 tags
func (p *SyncPayload) UnmarshalJSON(data []byte) error {
	type plain SyncPayload
	var raw struct {
		plain
		Tags              json.RawMessage `json:"tags"`
		ObsidianPathCamel string          `json:"obsidianPath"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = SyncPayload(raw.plain)
	if strings.TrimSpace(p.ObsidianPath) == "" {
		p.ObsidianPath = raw.ObsidianPathCamel
	}
	p.Tags = nil
	trimmed := strings.TrimSpace(string(raw.Tags))
	switch {
	case trimmed == "" || trimmed == "null":
	case strings.HasPrefix(trimmed, "["):
		var list []interface{}
		if err := json.Unmarshal(raw.Tags, &list); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		for _, item := range list {
			if item == nil {
				continue
			}
			p.Tags = append(p.Tags, fmt.Sprint(item))
		}
	default:
		var scalar interface{}
		if err := json.Unmarshal(raw.Tags, &scalar); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		if scalar != nil {
			p.Tags = []string{fmt.Sprint(scalar)}
		}
	}
	return nil
}

// SyncPayloadInput 单篇同步输入
type SyncPayloadInput struct {
	Payload    SyncPayload
	Mode       string
	Source     string
	OperatorID *uint
	DryRun     bool
	// PublishTag 从标签中移除的发布标签，为空时使用服务默认值
	PublishTag string
	// RawPayload 调用方原始 JSON，写入日志；为空时由 Payload 序列化
	RawPayload []byte
}

// SyncResult 单篇同步结果
type SyncResult struct {
	Action  string       `json:"action"`
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Slug    string       `json:"slug"`
	Post    *models.Post `json:"post,omitempty"`
	LogID   uint         `json:"sync_log_id"`
}

// ReconcileInput 对账输入
type ReconcileInput struct {
	PublishedPaths []string
	ScopePrefixes  []string
	Behavior       string
	Source         string
	OperatorID     *uint
	DryRun         bool
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	Behavior string `json:"behavior"`
	Matched  int    `json:"matched"`
	Drafted  int    `json:"drafted"`
	Deleted  int    `json:"deleted"`
	Action   string `json:"action"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	LogID    uint   `json:"sync_log_id"`
}

// ObsidianSyncService Obsidian 单篇同步与对账服务
type ObsidianSyncService struct {
	postRepo        repository.PostRepository
	logRepo         repository.SyncLogRepository
	index           PostSearchIndexer
	publishTag      string
	defaultCategory string
}

// NewObsidianSyncService 创建同步服务，index 可为空
func NewObsidianSyncService(
	postRepo repository.PostRepository,
	logRepo repository.SyncLogRepository,
	index PostSearchIndexer,
	publishTag string,
	defaultCategory string,
) *ObsidianSyncService {
	if strings.TrimSpace(publishTag) == "" {
		publishTag = constants.DefaultPublishTag
	}
	return &ObsidianSyncService{
		postRepo:        postRepo,
		logRepo:         logRepo,
		index:           index,
		publishTag:      publishTag,
		defaultCategory: obsidian.NormalizeCategory(defaultCategory, constants.DefaultPostCategory),
	}
}

type coercedPayload struct {
	title        string
	slug         string
	content      string
	category     string
	tags         []string
	cover        string
	excerpt      string
	obsidianPath string
}

// NormalizeSyncMode 未知模式按 overwrite 处理
func NormalizeSyncMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case constants.SyncModeSkip:
		return constants.SyncModeSkip
	case constants.SyncModeMerge:
		return constants.SyncModeMerge
	default:
		return constants.SyncModeOverwrite
	}
}

// NormalizeReconcileBehavior 未知行为按 draft 处理
func NormalizeReconcileBehavior(behavior string) string {
	switch strings.ToLower(strings.TrimSpace(behavior)) {
	case constants.ReconcileBehaviorDelete:
		return constants.ReconcileBehaviorDelete
	case constants.ReconcileBehaviorNone:
		return constants.ReconcileBehaviorNone
	default:
		return constants.ReconcileBehaviorDraft
	}
}

func normalizeSyncSource(source string) string {
	if strings.TrimSpace(source) == constants.SyncLogSourceCommand {
		return constants.SyncLogSourceCommand
	}
	return constants.SyncLogSourceAPI
}

// NormalizePaths 去除空白、统一分隔符并丢弃空值
func NormalizePaths(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if item := obsidian.NormalizeRelativePath(value); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (s *ObsidianSyncService) coerce(payload SyncPayload, publishTag string) (*coercedPayload, error) {
	if strings.TrimSpace(publishTag) == "" {
		publishTag = s.publishTag
	}
	title := strings.TrimSpace(payload.Title)
	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = obsidian.Slugify(title)
	}
	if slug == "" {
		return nil, ErrSyncSlugRequired
	}
	if title == "" {
		title = slug
	}
	excerpt := strings.TrimSpace(payload.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(payload.Description)
	}
	return &coercedPayload{
		title:        title,
		slug:         slug,
		content:      payload.Content,
		category:     obsidian.NormalizeCategory(payload.Category, s.defaultCategory),
		tags:         obsidian.WithoutPublishTag(payload.Tags, publishTag),
		cover:        strings.TrimSpace(payload.Cover),
		excerpt:      excerpt,
		obsidianPath: obsidian.NormalizeRelativePath(payload.ObsidianPath),
	}, nil
}

// SyncPayload 同步单篇文章，无论成败都写入一条同步日志
func (s *ObsidianSyncService) SyncPayload(ctx context.Context, input SyncPayloadInput) (*SyncResult, error) {
	startedAt := time.Now()
	mode := NormalizeSyncMode(input.Mode)
	result := &SyncResult{
		Action: constants.SyncActionCreated,
		Status: constants.SyncStatusSuccess,
		Slug:   strings.TrimSpace(input.Payload.Slug),
	}

	var previousSlug string
	err := s.postRepo.Transaction(func(tx *gorm.DB) error {
		postRepo := s.postRepo.WithTx(tx)
		data, err := s.coerce(input.Payload, input.PublishTag)
		if err != nil {
			return err
		}

		existingByPath, err := postRepo.GetObsidianByPath(data.obsidianPath)
		if err != nil {
			return err
		}
		target, err := resolveTargetSlug(postRepo, data.slug, data.obsidianPath, existingByPath)
		if err != nil {
			return err
		}
		data.slug = target
		result.Slug = target

		existing := existingByPath
		if existing == nil {
			existing, err = postRepo.GetBySlug(target, false)
			if err != nil {
				return err
			}
		}

		switch {
		case existing != nil && mode == constants.SyncModeSkip:
			result.Action = constants.SyncActionSkipped
			result.Message = "mode=skip 且文章已存在，已跳过"
			result.Post = existing
			return nil
		case input.DryRun:
			if existing != nil {
				result.Action = constants.SyncActionUpdated
			}
			result.Status = constants.SyncStatusDryRun
			result.Message = "dry-run 仅预览，不写入数据库"
			result.Post = existing
			return nil
		}

		now := time.Now()
		if existing != nil {
			previousSlug = existing.Slug
			if mode == constants.SyncModeMerge {
				mergeSyncedPost(existing, data, now)
			} else {
				overwriteSyncedPost(existing, data, now)
			}
			if err := postRepo.Update(existing); err != nil {
				return err
			}
			result.Action = constants.SyncActionUpdated
			result.Post = existing
			return nil
		}

		post := &models.Post{Slug: data.slug}
		overwriteSyncedPost(post, data, now)
		if err := postRepo.Create(post); err != nil {
			return err
		}
		result.Post = post
		return nil
	})
	if err != nil {
		result.Action = constants.SyncActionFailed
		result.Status = constants.SyncStatusFailed
		result.Message = err.Error()
		result.Post = nil
	}

	var snapshot interface{}
	if result.Post != nil {
		snapshot = serializeSyncedPost(result.Post)
		if result.Slug == "" {
			result.Slug = result.Post.Slug
		}
	}
	logRow := &models.SyncLog{
		Source:     normalizeSyncSource(input.Source),
		Slug:       result.Slug,
		Mode:       mode,
		Action:     result.Action,
		Status:     result.Status,
		Message:    result.Message,
		Payload:    rawSyncPayload(input),
		Result:     marshalJSONOrEmpty(snapshot),
		StartedAt:  startedAt,
		OperatorID: input.OperatorID,
	}
	if logErr := s.writeLog(logRow); logErr != nil {
		logger.Errorw("obsidian_sync_log_write_failed", "slug", result.Slug, "error", logErr)
		if err == nil {
			return nil, logErr
		}
	}
	result.LogID = logRow.ID

	if err != nil {
		logger.Warnw("obsidian_sync_failed", "slug", result.Slug, "mode", mode, "error", err)
		return result, err
	}
	if result.Status == constants.SyncStatusSuccess && result.Action != constants.SyncActionSkipped {
		s.refreshSearchIndex(result.Post, previousSlug)
	}
	return result, nil
}

// resolveTargetSlug 处理不同源文件标题相同导致的 slug 冲突
func resolveTargetSlug(repo repository.PostRepository, slug, obsidianPath string, existingByPath *models.Post) (string, error) {
	if obsidianPath == "" {
		return slug, nil
	}
	owner, err := repo.GetBySlug(slug, false)
	if err != nil {
		return "", err
	}
	if owner == nil {
		return slug, nil
	}
	if existingByPath != nil && owner.ID == existingByPath.ID {
		return slug, nil
	}
	if owner.SyncSource == constants.PostSyncSourceObsidian && owner.ObsidianPath == obsidianPath {
		return slug, nil
	}
	// 手工文章或无路径的文章保持原 slug，由后续查找命中该文章
	if owner.SyncSource != constants.PostSyncSourceObsidian || owner.ObsidianPath == "" {
		return slug, nil
	}

	var excludeID uint
	if existingByPath != nil {
		excludeID = existingByPath.ID
	}
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate := obsidian.SlugWithPathDigest(slug, obsidianPath, attempt)
		count, err := repo.CountBySlug(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", ErrSyncSlugExhausted
}

// mergeSyncedPost 仅填充空字段，同步元数据总是刷新
func mergeSyncedPost(post *models.Post, data *coercedPayload, now time.Time) {
	if post.Title == "" && data.title != "" {
		post.Title = data.title
	}
	if post.Excerpt == "" && data.excerpt != "" {
		post.Excerpt = data.excerpt
	}
	if post.Content == "" && data.content != "" {
		post.Content = data.content
	}
	if len(post.Tags) == 0 && len(data.tags) > 0 {
		post.Tags = models.StringArray(data.tags)
	}
	if post.Cover == "" && data.cover != "" {
		post.Cover = data.cover
	}
	applySyncMetadata(post, data, now)
}

func overwriteSyncedPost(post *models.Post, data *coercedPayload, now time.Time) {
	post.Slug = data.slug
	post.Title = data.title
	post.Excerpt = data.excerpt
	post.Content = data.content
	post.Tags = models.StringArray(data.tags)
	post.Cover = data.cover
	applySyncMetadata(post, data, now)
}

func applySyncMetadata(post *models.Post, data *coercedPayload, now time.Time) {
	post.Category = data.category
	post.Draft = false
	post.ObsidianPath = data.obsidianPath
	post.LastSyncedAt = &now
	post.SyncSource = constants.PostSyncSourceObsidian
}

func serializeSyncedPost(post *models.Post) map[string]interface{} {
	var lastSyncedAt interface{}
	if post.LastSyncedAt != nil {
		lastSyncedAt = post.LastSyncedAt.Format(time.RFC3339Nano)
	}
	return map[string]interface{}{
		"id":             post.ID,
		"slug":           post.Slug,
		"title":          post.Title,
		"category":       post.Category,
		"updated_at":     post.UpdatedAt.Format(time.RFC3339Nano),
		"sync_source":    post.SyncSource,
		"obsidian_path":  post.ObsidianPath,
		"last_synced_at": lastSyncedAt,
	}
}

func rawSyncPayload(input SyncPayloadInput) datatypes.JSON {
	if raw := strings.TrimSpace(string(input.RawPayload)); raw != "" && json.Valid([]byte(raw)) {
		return datatypes.JSON(raw)
	}
	return marshalJSONOrEmpty(input.Payload)
}

func marshalJSONOrEmpty(value interface{}) datatypes.JSON {
	if value == nil {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

func (s *ObsidianSyncService) writeLog(row *models.SyncLog) error {
	row.FinishedAt = time.Now()
	row.DurationMs = row.FinishedAt.Sub(row.StartedAt).Milliseconds()
	if row.DurationMs < 0 {
		row.DurationMs = 0
	}
	return s.logRepo.Create(row)
}

// refreshSearchIndex 检索索引失败只记录日志，不影响同步结果
func (s *ObsidianSyncService) refreshSearchIndex(post *models.Post, previousSlug string) {
	if s.index == nil || post == nil {
		return
	}
	if previousSlug != "" && previousSlug != post.Slug {
		if err := s.index.Delete(previousSlug); err != nil {
			logger.Warnw("search_index_delete_failed", "slug", previousSlug, "error", err)
		}
	}
	var err error
	if post.IsPublished() {
		err = s.index.IndexPost(search.DocumentFromPost(post))
	} else {
		err = s.index.Delete(post.Slug)
	}
	if err != nil {
		logger.Warnw("search_index_update_failed", "slug", post.Slug, "error", err)
	}
}

// Reconcile 将不再发布的 obsidian 文章转为草稿或删除
func (s *ObsidianSyncService) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error) {
	startedAt := time.Now()
	behavior := NormalizeReconcileBehavior(input.Behavior)
	publishedPaths := NormalizePaths(input.PublishedPaths)
	scopePrefixes := NormalizePaths(input.ScopePrefixes)

	result := &ReconcileResult{
		Behavior: behavior,
		Action:   constants.SyncActionSkipped,
		Status:   constants.SyncStatusSuccess,
	}
	if input.DryRun {
		result.Status = constants.SyncStatusDryRun
	}

	published := make(map[string]struct{}, len(publishedPaths))
	for _, path := range publishedPaths {
		published[path] = struct{}{}
	}

	var affected []models.Post
	err := s.postRepo.Transaction(func(tx *gorm.DB) error {
		postRepo := s.postRepo.WithTx(tx)
		candidates, err := postRepo.ListObsidianSynced(scopePrefixes)
		if err != nil {
			return err
		}
		targets := make([]models.Post, 0, len(candidates))
		ids := make([]uint, 0, len(candidates))
		for _, post := range candidates {
			if _, ok := published[post.ObsidianPath]; ok {
				continue
			}
			targets = append(targets, post)
			ids = append(ids, post.ID)
		}
		result.Matched = len(targets)
		if result.Matched == 0 || behavior == constants.ReconcileBehaviorNone {
			return nil
		}

		result.Action = constants.SyncActionUpdated
		switch behavior {
		case constants.ReconcileBehaviorDraft:
			if input.DryRun {
				result.Drafted = result.Matched
				return nil
			}
			now := time.Now()
			rows, err := postRepo.SetDraft(ids, true, &now)
			if err != nil {
				return err
			}
			result.Drafted = int(rows)
		case constants.ReconcileBehaviorDelete:
			if input.DryRun {
				result.Deleted = result.Matched
				return nil
			}
			if err := postRepo.Delete(ids...); err != nil {
				return err
			}
			result.Deleted = result.Matched
		}
		affected = targets
		return nil
	})

	result.Message = fmt.Sprintf(
		"reconcile behavior=%s, matched=%d, drafted=%d, deleted=%d, dry_run=%v",
		behavior, result.Matched, result.Drafted, result.Deleted, input.DryRun,
	)
	if err != nil {
		result.Action = constants.SyncActionFailed
		result.Status = constants.SyncStatusFailed
		result.Message = err.Error()
	}

	logPayload := map[string]interface{}{
		"published_paths": publishedPaths,
		"scope_prefixes":  scopePrefixes,
		"behavior":        behavior,
		"dry_run":         input.DryRun,
	}
	logResult := map[string]interface{}{
		"behavior": behavior,
		"matched":  result.Matched,
		"drafted":  result.Drafted,
		"deleted":  result.Deleted,
	}
	logRow := &models.SyncLog{
		Source:     normalizeSyncSource(input.Source),
		Slug:       constants.ReconcileSlugSentinel,
		Mode:       constants.SyncModeOverwrite,
		Action:     result.Action,
		Status:     result.Status,
		Message:    result.Message,
		Payload:    marshalJSONOrEmpty(logPayload),
		Result:     marshalJSONOrEmpty(logResult),
		StartedAt:  startedAt,
		OperatorID: input.OperatorID,
	}
	if logErr := s.writeLog(logRow); logErr != nil {
		logger.Errorw("obsidian_reconcile_log_write_failed", "error", logErr)
		if err == nil {
			return nil, logErr
		}
	}
	result.LogID = logRow.ID
	if err != nil {
		logger.Warnw("obsidian_reconcile_failed", "behavior", behavior, "error", err)
		return result, err
	}

	if s.index != nil {
		for _, post := range affected {
			if err := s.index.Delete(post.Slug); err != nil {
				logger.Warnw("search_index_delete_failed", "slug", post.Slug, "error", err)
			}
		}
	}
	logger.Infow("obsidian_reconcile_completed",
		"behavior", behavior,
		"matched", result.Matched,
		"drafted", result.Drafted,
		"deleted", result.Deleted,
		"dry_run", input.DryRun,
	)
	return result, nil
}

// IsSyncClientError 判断同步错误是否由调用方输入导致
func IsSyncClientError(err error) bool {
	return errors.Is(err, ErrSyncSlugRequired) || errors.Is(err, ErrSyncSlugExhausted)
}
