package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/provider"
	"github.com/openingclouds/internal/queue"
	"github.com/openingclouds/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskObsidianVaultSync, c.handleVaultSync)
	mux.HandleFunc(queue.TaskObsidianIndex, c.handleDocumentIndex)
}

func (c *Consumer) handleVaultSync(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Container == nil || c.VaultSyncService == nil {
		logger.Debugw("worker_vault_sync_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VaultSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_vault_sync_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	stats, err := c.VaultSyncService.Run(ctx, service.VaultSyncInput{
		SourceDir:         payload.SourceDir,
		IncludeRoots:      payload.IncludeRoots,
		Mode:              payload.Mode,
		DryRun:            payload.DryRun,
		Force:             payload.Force,
		ReconcileBehavior: payload.ReconcileBehavior,
		Source:            constants.SyncLogSourceCommand,
		OperatorID:        payload.OperatorID,
	})
	if err != nil {
		logger.Warnw("worker_vault_sync_failed", "source_dir", payload.SourceDir, "error", err)
		return skipRetryOnPermanent(err)
	}
	logger.Infow("worker_vault_sync_done",
		"task_id", taskID(task),
		"created", stats.Created,
		"updated", stats.Updated,
		"failed", stats.Failed,
		"drafted", stats.Drafted,
	)
	return nil
}

func (c *Consumer) handleDocumentIndex(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Container == nil || c.DocumentPoolService == nil {
		logger.Debugw("worker_document_index_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DocumentIndexPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_document_index_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	result, err := c.DocumentPoolService.Index(ctx, service.DocumentPoolInput{
		SourceDir:           payload.SourceDir,
		Trigger:             payload.Trigger,
		MissingBehavior:     payload.MissingBehavior,
		AutoUpdatePublished: payload.AutoUpdatePublished,
		RepoURL:             payload.RepoURL,
		RepoBranch:          payload.RepoBranch,
		RepoCommit:          payload.RepoCommit,
		OperatorID:          payload.OperatorID,
	})
	if err != nil {
		logger.Warnw("worker_document_index_failed", "trigger", payload.Trigger, "error", err)
		return skipRetryOnPermanent(err)
	}
	logger.Infow("worker_document_index_done", "task_id", taskID(task), "run_id", result.Run.ID, "message", result.Message)
	return nil
}

// skipRetryOnPermanent 目录无效或锁被占用时重试没有意义
func skipRetryOnPermanent(err error) error {
	if errors.Is(err, service.ErrInvalidSourceDir) || errors.Is(err, service.ErrVaultLocked) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

func taskID(task *asynq.Task) string {
	if task == nil || task.ResultWriter() == nil {
		return ""
	}
	return task.ResultWriter().TaskID()
}
