package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/lock"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
	"github.com/openingclouds/internal/repository"
)

// VaultSyncInput 笔记库批量同步输入，空字段使用配置默认值
type VaultSyncInput struct {
	SourceDir         string
	IncludeRoots      []string
	ExcludedDirs      []string
	PublishTag        string
	Mode              string
	DryRun            bool
	Force             bool
	ReconcileBehavior string
	// ScopePrefixes 对账范围，为空时使用 IncludeRoots
	ScopePrefixes []string
	Source        string
	OperatorID    *uint
}

// VaultSyncFailure 单个文件同步失败明细
type VaultSyncFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// VaultSyncStats 批量同步计数
type VaultSyncStats struct {
	Files              int                `json:"files"`
	Created            int                `json:"created"`
	Updated            int                `json:"updated"`
	SkippedUnpublished int                `json:"skipped_unpublished"`
	SkippedUnchanged   int                `json:"skipped_unchanged"`
	SkippedMode        int                `json:"skipped_mode"`
	SkippedInvalid     int                `json:"skipped_invalid"`
	Failed             int                `json:"failed"`
	Drafted            int                `json:"drafted"`
	Deleted            int                `json:"deleted"`
	DryRun             bool               `json:"dry_run"`
	ReconcileLogID     uint               `json:"reconcile_log_id"`
	Failures           []VaultSyncFailure `json:"failures"`
}

// VaultSyncService 笔记库批量同步：扫描 → 解析 → 发布标签过滤 → 单篇同步 → 对账
type VaultSyncService struct {
	cfg      config.ObsidianConfig
	sync     *ObsidianSyncService
	postRepo repository.PostRepository
	locker   lock.Locker
}

// NewVaultSyncService 创建批量同步服务，locker 为空时不加锁
func NewVaultSyncService(cfg config.ObsidianConfig, syncService *ObsidianSyncService, postRepo repository.PostRepository, locker lock.Locker) *VaultSyncService {
	return &VaultSyncService{
		cfg:      cfg,
		sync:     syncService,
		postRepo: postRepo,
		locker:   locker,
	}
}

func (s *VaultSyncService) applyDefaults(input *VaultSyncInput) {
	if strings.TrimSpace(input.SourceDir) == "" {
		input.SourceDir = s.cfg.VaultPath
	}
	if len(input.IncludeRoots) == 0 {
		input.IncludeRoots = s.cfg.IncludeRoots
	}
	if len(input.ExcludedDirs) == 0 {
		input.ExcludedDirs = s.cfg.ExcludedDirs
	}
	if strings.TrimSpace(input.PublishTag) == "" {
		input.PublishTag = s.cfg.PublishTag
	}
	if strings.TrimSpace(input.PublishTag) == "" {
		input.PublishTag = constants.DefaultPublishTag
	}
	if strings.TrimSpace(input.Mode) == "" {
		input.Mode = s.cfg.Mode
	}
	if strings.TrimSpace(input.ReconcileBehavior) == "" {
		input.ReconcileBehavior = s.cfg.ReconcileBehavior
	}
	if len(input.ScopePrefixes) == 0 {
		input.ScopePrefixes = input.IncludeRoots
	}
}

// ResolveVaultRoot 校验并解析笔记库根目录
func ResolveVaultRoot(sourceDir string) (string, error) {
	if strings.TrimSpace(sourceDir) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidSourceDir)
	}
	root, err := obsidian.ResolveRoot(sourceDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSourceDir, err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidSourceDir, root)
	}
	return root, nil
}

func acquireVaultLock(ctx context.Context, locker lock.Locker, root string) (lock.ReleaseFunc, error) {
	if locker == nil {
		return func() error { return nil }, nil
	}
	release, err := locker.Acquire(ctx, lock.VaultKey(root))
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, ErrVaultLocked
		}
		return nil, err
	}
	return release, nil
}

func excludedDirsOrDefault(dirs, fallback []string) []string {
	if len(dirs) == 0 {
		return fallback
	}
	return dirs
}

// Run 执行批量同步，单个文件失败只计数不中断
func (s *VaultSyncService) Run(ctx context.Context, input VaultSyncInput) (*VaultSyncStats, error) {
	s.applyDefaults(&input)
	root, err := ResolveVaultRoot(input.SourceDir)
	if err != nil {
		return nil, err
	}
	release, err := acquireVaultLock(ctx, s.locker, root)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warnw("vault_lock_release_failed", "root", root, "error", err)
		}
	}()

	files, err := obsidian.Scan(root, obsidian.ScanOptions{
		IncludeRoots: input.IncludeRoots,
		ExcludedDirs: excludedDirsOrDefault(input.ExcludedDirs, obsidian.DefaultExcludedDirs),
	})
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}

	stats := &VaultSyncStats{Files: len(files), DryRun: input.DryRun, Failures: []VaultSyncFailure{}}
	logger.Infow("vault_sync_started",
		"root", root,
		"files", len(files),
		"mode", NormalizeSyncMode(input.Mode),
		"dry_run", input.DryRun,
		"force", input.Force,
	)

	parseOpts := obsidian.ParseOptions{
		Root:            root,
		PublishTag:      input.PublishTag,
		DefaultCategory: s.cfg.DefaultCategory,
	}
	publishedPaths := make([]string, 0, len(files))
	for _, path := range files {
		note, err := obsidian.ParseFile(path, parseOpts)
		if err != nil {
			stats.SkippedInvalid++
			logger.Warnw("vault_sync_note_invalid", "path", path, "error", err)
			continue
		}
		if !note.Publishable() {
			stats.SkippedUnpublished++
			continue
		}

		if !input.Force {
			unchanged, err := s.isUnchanged(note)
			if err != nil {
				stats.Failed++
				stats.Failures = append(stats.Failures, VaultSyncFailure{Path: note.RelativePath, Error: err.Error()})
				publishedPaths = append(publishedPaths, note.RelativePath)
				continue
			}
			if unchanged {
				stats.SkippedUnchanged++
				publishedPaths = append(publishedPaths, note.RelativePath)
				continue
			}
		}

		result, err := s.sync.SyncPayload(ctx, SyncPayloadInput{
			Payload:    NotePayload(note),
			Mode:       input.Mode,
			Source:     input.Source,
			OperatorID: input.OperatorID,
			DryRun:     input.DryRun,
			PublishTag: input.PublishTag,
		})
		// 同步失败的笔记仍视为已发布，避免被对账误转为草稿
		publishedPaths = append(publishedPaths, note.RelativePath)
		if err != nil {
			stats.Failed++
			stats.Failures = append(stats.Failures, VaultSyncFailure{Path: note.RelativePath, Error: err.Error()})
			continue
		}
		switch result.Action {
		case constants.SyncActionSkipped:
			stats.SkippedMode++
		case constants.SyncActionUpdated:
			stats.Updated++
		default:
			stats.Created++
		}
	}

	reconcile, err := s.sync.Reconcile(ctx, ReconcileInput{
		PublishedPaths: publishedPaths,
		ScopePrefixes:  input.ScopePrefixes,
		Behavior:       input.ReconcileBehavior,
		Source:         input.Source,
		OperatorID:     input.OperatorID,
		DryRun:         input.DryRun,
	})
	if reconcile != nil {
		stats.Drafted = reconcile.Drafted
		stats.Deleted = reconcile.Deleted
		stats.ReconcileLogID = reconcile.LogID
	}
	if err != nil {
		return stats, fmt.Errorf("reconcile: %w", err)
	}

	logger.Infow("vault_sync_completed",
		"root", root,
		"files", stats.Files,
		"created", stats.Created,
		"updated", stats.Updated,
		"skipped_unpublished", stats.SkippedUnpublished,
		"skipped_unchanged", stats.SkippedUnchanged,
		"skipped_mode", stats.SkippedMode,
		"skipped_invalid", stats.SkippedInvalid,
		"failed", stats.Failed,
		"drafted", stats.Drafted,
		"deleted", stats.Deleted,
	)
	return stats, nil
}

// isUnchanged 同路径的 Obsidian 文章已发布，且最后同步时间不早于文件修改时间
// 仅按路径归属判断，同名笔记即使 slug 相同也不视为同一篇文章
func (s *VaultSyncService) isUnchanged(note *obsidian.Note) (bool, error) {
	existing, err := s.postRepo.GetObsidianByPath(note.RelativePath)
	if err != nil {
		return false, err
	}
	return isSyncedAfter(existing, note), nil
}

func isSyncedAfter(post *models.Post, note *obsidian.Note) bool {
	if post == nil || !post.IsPublished() || post.LastSyncedAt == nil || note.ModTime.IsZero() {
		return false
	}
	if post.SyncSource != constants.PostSyncSourceObsidian || post.ObsidianPath != note.RelativePath {
		return false
	}
	return !note.ModTime.After(*post.LastSyncedAt)
}

// NotePayload 将解析后的笔记转换为同步载荷
func NotePayload(note *obsidian.Note) SyncPayload {
	return SyncPayload{
		Title:        note.Title,
		Slug:         note.SlugHint,
		Content:      note.Content,
		Category:     note.Category,
		Tags:         note.Tags,
		Cover:        strings.TrimSpace(note.Metadata.Cover),
		Excerpt:      note.Excerpt,
		ObsidianPath: note.RelativePath,
	}
}
