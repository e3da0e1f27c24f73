package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/lock"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
	"github.com/openingclouds/internal/repository"

	"gorm.io/gorm"
)

// maxReportedParseErrors 运行说明中最多展示的解析错误数
const maxReportedParseErrors = 3

// DocumentPoolInput 文档池索引输入，空字段使用配置默认值
type DocumentPoolInput struct {
	SourceDir           string
	ExcludedDirs        []string
	Trigger             string
	PublishTag          string
	MissingBehavior     string
	AutoUpdatePublished *bool
	RepoURL             string
	RepoBranch          string
	RepoCommit          string
	OperatorID          *uint
}

// DocumentPoolResult 文档池索引结果
type DocumentPoolResult struct {
	Run     *models.ObsidianSyncRun `json:"run"`
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
}

// DocumentPoolService 文档池索引：镜像笔记库全部笔记（无论是否发布）
type DocumentPoolService struct {
	cfg      config.ObsidianConfig
	docRepo  repository.ObsidianDocumentRepository
	runRepo  repository.ObsidianSyncRunRepository
	postRepo repository.PostRepository
	sync     *ObsidianSyncService
	index    PostSearchIndexer
	locker   lock.Locker
}

// NewDocumentPoolService 创建文档池服务
func NewDocumentPoolService(
	cfg config.ObsidianConfig,
	docRepo repository.ObsidianDocumentRepository,
	runRepo repository.ObsidianSyncRunRepository,
	postRepo repository.PostRepository,
	syncService *ObsidianSyncService,
	index PostSearchIndexer,
	locker lock.Locker,
) *DocumentPoolService {
	return &DocumentPoolService{
		cfg:      cfg,
		docRepo:  docRepo,
		runRepo:  runRepo,
		postRepo: postRepo,
		sync:     syncService,
		index:    index,
		locker:   locker,
	}
}

// NormalizeSyncRunTrigger 未知触发方式按 manual 处理
func NormalizeSyncRunTrigger(trigger string) string {
	if strings.TrimSpace(trigger) == constants.SyncRunTriggerScheduled {
		return constants.SyncRunTriggerScheduled
	}
	return constants.SyncRunTriggerManual
}

// NormalizeMissingBehavior 未知处理方式按 draft 处理
func NormalizeMissingBehavior(behavior string) string {
	if strings.TrimSpace(behavior) == constants.MissingBehaviorNone {
		return constants.MissingBehaviorNone
	}
	return constants.MissingBehaviorDraft
}

type documentPoolStats struct {
	scanned          int
	created          int
	updated          int
	missing          int
	publishedUpdated int
	drafted          int
}

func (s *DocumentPoolService) applyDefaults(input *DocumentPoolInput) {
	if strings.TrimSpace(input.SourceDir) == "" {
		input.SourceDir = s.cfg.VaultPath
	}
	if len(input.ExcludedDirs) == 0 {
		input.ExcludedDirs = s.cfg.PoolExcludedDirs
	}
	if strings.TrimSpace(input.PublishTag) == "" {
		input.PublishTag = s.cfg.PublishTag
	}
	if strings.TrimSpace(input.PublishTag) == "" {
		input.PublishTag = constants.DefaultPublishTag
	}
	if strings.TrimSpace(input.MissingBehavior) == "" {
		input.MissingBehavior = s.cfg.MissingBehavior
	}
	if input.AutoUpdatePublished == nil {
		autoUpdate := s.cfg.AutoUpdatePublished
		input.AutoUpdatePublished = &autoUpdate
	}
}

// Index 扫描笔记库并刷新文档池，每次调用写入一条运行记录
func (s *DocumentPoolService) Index(ctx context.Context, input DocumentPoolInput) (*DocumentPoolResult, error) {
	s.applyDefaults(&input)
	startedAt := time.Now()
	trigger := NormalizeSyncRunTrigger(input.Trigger)
	missingBehavior := NormalizeMissingBehavior(input.MissingBehavior)

	stats := &documentPoolStats{}
	message, err := s.run(ctx, input, missingBehavior, stats)
	status := constants.SyncRunStatusSuccess
	if err != nil {
		status = constants.SyncRunStatusFailed
		message = err.Error()
	}

	finishedAt := time.Now()
	durationMs := finishedAt.Sub(startedAt).Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}
	run := &models.ObsidianSyncRun{
		Trigger:               trigger,
		Status:                status,
		RepoURL:               strings.TrimSpace(input.RepoURL),
		RepoBranch:            strings.TrimSpace(input.RepoBranch),
		RepoCommit:            strings.TrimSpace(input.RepoCommit),
		ScannedCount:          stats.scanned,
		CreatedCount:          stats.created,
		UpdatedCount:          stats.updated,
		MissingCount:          stats.missing,
		PublishedUpdatedCount: stats.publishedUpdated,
		DraftedCount:          stats.drafted,
		StartedAt:             startedAt,
		FinishedAt:            finishedAt,
		DurationMs:            durationMs,
		Message:               message,
		OperatorID:            input.OperatorID,
	}
	if runErr := s.runRepo.Create(run); runErr != nil {
		logger.Errorw("document_pool_run_write_failed", "error", runErr)
		if err == nil {
			return nil, runErr
		}
	}

	result := &DocumentPoolResult{Run: run, Status: status, Message: message}
	if err != nil {
		logger.Warnw("document_pool_index_failed", "trigger", trigger, "error", err)
		return result, err
	}
	logger.Infow("document_pool_index_completed",
		"trigger", trigger,
		"scanned", stats.scanned,
		"created", stats.created,
		"updated", stats.updated,
		"missing", stats.missing,
		"published_updated", stats.publishedUpdated,
		"drafted", stats.drafted,
	)
	return result, nil
}

func (s *DocumentPoolService) run(ctx context.Context, input DocumentPoolInput, missingBehavior string, stats *documentPoolStats) (string, error) {
	root, err := ResolveVaultRoot(input.SourceDir)
	if err != nil {
		return "", err
	}
	release, err := acquireVaultLock(ctx, s.locker, root)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warnw("vault_lock_release_failed", "root", root, "error", err)
		}
	}()

	files, err := obsidian.Scan(root, obsidian.ScanOptions{
		ExcludedDirs: excludedDirsOrDefault(input.ExcludedDirs, obsidian.DocumentPoolExcludedDirs),
	})
	if err != nil {
		return "", fmt.Errorf("scan vault: %w", err)
	}

	now := time.Now()
	seen := make(map[string]struct{}, len(files))
	parseErrors := make([]string, 0)
	parseOpts := obsidian.ParseOptions{
		Root:            root,
		PublishTag:      input.PublishTag,
		DefaultCategory: s.cfg.DefaultCategory,
	}

	for _, path := range files {
		stats.scanned++
		relative := obsidian.RelativePath(root, path)
		seen[relative] = struct{}{}

		raw, err := os.ReadFile(path)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", relative, err))
			continue
		}
		note, err := obsidian.ParseNote(obsidian.DecodeText(raw), path, parseOpts)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", relative, err))
			continue
		}
		if info, statErr := os.Stat(path); statErr == nil {
			note.ModTime = info.ModTime()
		}

		doc, created, err := s.upsertDocument(note, now)
		if err != nil {
			return "", err
		}
		if created {
			stats.created++
		} else {
			stats.updated++
		}

		if *input.AutoUpdatePublished {
			updated, err := s.refreshPublishedPost(ctx, doc, input.OperatorID)
			if err != nil {
				parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", relative, err))
				continue
			}
			if updated {
				stats.publishedUpdated++
			}
		}
	}

	if err := s.markMissing(seen, missingBehavior, now, stats); err != nil {
		return "", err
	}

	if len(parseErrors) == 0 {
		return "ok", nil
	}
	shown := parseErrors
	if len(shown) > maxReportedParseErrors {
		shown = shown[:maxReportedParseErrors]
	}
	return fmt.Sprintf("completed_with_parse_errors=%d: %s", len(parseErrors), strings.Join(shown, "; ")), nil
}

// upsertDocument 单个文档的写入在一个事务内完成
func (s *DocumentPoolService) upsertDocument(note *obsidian.Note, now time.Time) (*models.ObsidianDocument, bool, error) {
	var doc *models.ObsidianDocument
	created := false
	err := s.docRepo.Transaction(func(tx *gorm.DB) error {
		docRepo := s.docRepo.WithTx(tx)
		existing, err := docRepo.GetByVaultPath(note.RelativePath)
		if err != nil {
			return err
		}
		if existing == nil {
			created = true
			existing = &models.ObsidianDocument{VaultPath: note.RelativePath, FirstSeenAt: now}
		}

		existing.Title = note.Title
		existing.SlugCandidate = note.SlugHint
		existing.CategoryCandidate = note.Category
		existing.Tags = models.StringArray(note.Tags)
		existing.HasPublishTag = note.HasPublishTag
		existing.Content = note.Content
		existing.Excerpt = note.Excerpt
		existing.FileHash = note.RawHash
		if !note.ModTime.IsZero() {
			mtime := note.ModTime
			existing.SourceMtime = &mtime
		}
		existing.SourceExists = true
		existing.LastSeenAt = now
		existing.LastIndexedAt = now

		if existing.LinkedPostID == nil {
			post, err := s.postRepo.WithTx(tx).FindLatestByObsidianPath(note.RelativePath)
			if err != nil {
				return err
			}
			if post != nil {
				postID := post.ID
				existing.LinkedPostID = &postID
			}
		}

		if created {
			err = docRepo.Create(existing)
		} else {
			err = docRepo.Update(existing)
		}
		if err != nil {
			return err
		}
		doc = existing
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("save document %s: %w", note.RelativePath, err)
	}
	return doc, created, nil
}

// refreshPublishedPost 关联文章已发布时以覆盖模式重新同步
func (s *DocumentPoolService) refreshPublishedPost(ctx context.Context, doc *models.ObsidianDocument, operatorID *uint) (bool, error) {
	if doc.LinkedPostID == nil || s.sync == nil {
		return false, nil
	}
	post, err := s.postRepo.GetByID(*doc.LinkedPostID)
	if err != nil {
		return false, err
	}
	if post == nil || !post.IsPublished() {
		return false, nil
	}

	outcome, err := s.sync.SyncPayload(ctx, SyncPayloadInput{
		Payload: SyncPayload{
			Title:        doc.Title,
			Slug:         doc.SlugCandidate,
			Excerpt:      doc.Excerpt,
			Content:      doc.Content,
			Category:     doc.CategoryCandidate,
			Tags:         []string(doc.Tags),
			Cover:        post.Cover,
			ObsidianPath: doc.VaultPath,
		},
		Mode:       constants.SyncModeOverwrite,
		Source:     constants.SyncLogSourceCommand,
		OperatorID: operatorID,
	})
	if err != nil {
		return false, err
	}
	if outcome.Post != nil && outcome.Post.ID != *doc.LinkedPostID {
		postID := outcome.Post.ID
		doc.LinkedPostID = &postID
		if err := s.docRepo.Update(doc); err != nil {
			return false, err
		}
	}
	return outcome.Action == constants.SyncActionCreated || outcome.Action == constants.SyncActionUpdated, nil
}

// markMissing 本次未扫描到的文档标记为源文件缺失
// 每篇文档的缺失标记与关联文章转草稿在同一事务内提交
func (s *DocumentPoolService) markMissing(seen map[string]struct{}, missingBehavior string, now time.Time, stats *documentPoolStats) error {
	existing, err := s.docRepo.ListExisting()
	if err != nil {
		return err
	}
	for i := range existing {
		doc := &existing[i]
		if _, ok := seen[doc.VaultPath]; ok {
			continue
		}
		var drafted *models.Post
		err := s.docRepo.Transaction(func(tx *gorm.DB) error {
			doc.SourceExists = false
			doc.LastIndexedAt = now
			if err := s.docRepo.WithTx(tx).Update(doc); err != nil {
				return err
			}
			if missingBehavior != constants.MissingBehaviorDraft || doc.LinkedPostID == nil {
				return nil
			}
			postRepo := s.postRepo.WithTx(tx)
			post, err := postRepo.GetByID(*doc.LinkedPostID)
			if err != nil {
				return err
			}
			if post == nil || !post.IsPublished() {
				return nil
			}
			if _, err := postRepo.SetDraft([]uint{post.ID}, true, nil); err != nil {
				return err
			}
			drafted = post
			return nil
		})
		if err != nil {
			return fmt.Errorf("mark missing %s: %w", doc.VaultPath, err)
		}
		stats.missing++
		if drafted == nil {
			continue
		}
		stats.drafted++
		if s.index != nil {
			if err := s.index.Delete(drafted.Slug); err != nil {
				logger.Warnw("search_index_delete_failed", "slug", drafted.Slug, "error", err)
			}
		}
	}
	return nil
}
