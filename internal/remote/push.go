package remote

import (
	"context"
	"fmt"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/obsidian"
	"github.com/openingclouds/internal/service"
)

// PushInput 本地笔记库推送到远端的参数
type PushInput struct {
	SourceDir         string
	IncludeRoots      []string
	ExcludedDirs      []string
	PublishTag        string
	DefaultCategory   string
	Mode              string
	DryRun            bool
	ReconcileBehavior string
	ScopePrefixes     []string
}

// Push 扫描本地笔记库，逐篇推送可发布笔记，最后推送对账请求。
// 单篇失败只计数，对账失败返回错误。
func Push(ctx context.Context, client *Client, input PushInput) (*service.VaultSyncStats, error) {
	root, err := service.ResolveVaultRoot(input.SourceDir)
	if err != nil {
		return nil, err
	}
	if input.PublishTag == "" {
		input.PublishTag = constants.DefaultPublishTag
	}
	if len(input.ExcludedDirs) == 0 {
		input.ExcludedDirs = obsidian.DefaultExcludedDirs
	}
	if len(input.ScopePrefixes) == 0 {
		input.ScopePrefixes = input.IncludeRoots
	}

	files, err := obsidian.Scan(root, obsidian.ScanOptions{
		IncludeRoots: input.IncludeRoots,
		ExcludedDirs: input.ExcludedDirs,
	})
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}

	stats := &service.VaultSyncStats{Files: len(files), DryRun: input.DryRun, Failures: []service.VaultSyncFailure{}}
	logger.Infow("remote_push_started", "root", root, "remote", client.baseURL, "files", len(files))

	parseOpts := obsidian.ParseOptions{
		Root:            root,
		PublishTag:      input.PublishTag,
		DefaultCategory: input.DefaultCategory,
	}
	publishedPaths := make([]string, 0, len(files))
	for _, path := range files {
		note, err := obsidian.ParseFile(path, parseOpts)
		if err != nil {
			stats.SkippedInvalid++
			logger.Warnw("remote_push_note_invalid", "path", path, "error", err)
			continue
		}
		if !note.Publishable() {
			stats.SkippedUnpublished++
			continue
		}
		publishedPaths = append(publishedPaths, note.RelativePath)

		result, err := client.Sync(ctx, SyncRequest{
			SyncPayload: service.NotePayload(note),
			Mode:        input.Mode,
			DryRun:      input.DryRun,
			PublishTag:  input.PublishTag,
		})
		if err != nil {
			stats.Failed++
			stats.Failures = append(stats.Failures, service.VaultSyncFailure{Path: note.RelativePath, Error: err.Error()})
			logger.Warnw("remote_push_note_failed", "path", note.RelativePath, "error", err)
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

	reconcile, err := client.Reconcile(ctx, ReconcileRequest{
		PublishedPaths: publishedPaths,
		ScopePrefixes:  input.ScopePrefixes,
		Behavior:       input.ReconcileBehavior,
		DryRun:         input.DryRun,
	})
	if err != nil {
		return stats, fmt.Errorf("reconcile: %w", err)
	}
	stats.Drafted = reconcile.Drafted
	stats.Deleted = reconcile.Deleted
	stats.ReconcileLogID = reconcile.LogID

	logger.Infow("remote_push_completed",
		"root", root,
		"files", stats.Files,
		"created", stats.Created,
		"updated", stats.Updated,
		"failed", stats.Failed,
		"drafted", stats.Drafted,
		"deleted", stats.Deleted,
	)
	return stats, nil
}
