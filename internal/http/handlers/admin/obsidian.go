package admin

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/openingclouds/internal/constants"
	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/i18n"
	"github.com/openingclouds/internal/queue"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
)

// obsidianSyncOptions 单篇同步请求中与载荷平级的控制字段
type obsidianSyncOptions struct {
	Mode       string `json:"mode"`
	DryRun     bool   `json:"dry_run"`
	PublishTag string `json:"publish_tag"`
}

// ReconcileRequest 对账请求
type ReconcileRequest struct {
	PublishedPaths []string `json:"published_paths"`
	ScopePrefixes  []string `json:"scope_prefixes"`
	Behavior       string   `json:"behavior"`
	DryRun         bool     `json:"dry_run"`
}

// VaultSyncRequest 笔记库批量同步请求
type VaultSyncRequest struct {
	SourceDir         string   `json:"source_dir"`
	IncludeRoots      []string `json:"include_roots"`
	ExcludedDirs      []string `json:"excluded_dirs"`
	PublishTag        string   `json:"publish_tag"`
	Mode              string   `json:"mode"`
	DryRun            bool     `json:"dry_run"`
	Force             bool     `json:"force"`
	ReconcileBehavior string   `json:"reconcile_behavior"`
	ScopePrefixes     []string `json:"scope_prefixes"`
	Async             bool     `json:"async"`
}

// DocumentIndexRequest 文档池索引请求
type DocumentIndexRequest struct {
	SourceDir           string `json:"source_dir"`
	Trigger             string `json:"trigger"`
	MissingBehavior     string `json:"missing_behavior"`
	AutoUpdatePublished *bool  `json:"auto_update_published"`
	RepoURL             string `json:"repo_url"`
	RepoBranch          string `json:"repo_branch"`
	RepoCommit          string `json:"repo_commit"`
	Async               bool   `json:"async"`
}

// SyncObsidianPayload 同步单篇笔记（JWT 或同步令牌）
func (h *Handler) SyncObsidianPayload(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var payload service.SyncPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var opts obsidianSyncOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.ObsidianSyncService.SyncPayload(c.Request.Context(), service.SyncPayloadInput{
		Payload:    payload,
		Mode:       opts.Mode,
		Source:     constants.SyncLogSourceAPI,
		OperatorID: operatorID(c),
		DryRun:     opts.DryRun,
		PublishTag: opts.PublishTag,
		RawPayload: raw,
	})
	if err != nil {
		if result != nil && service.IsSyncClientError(err) {
			locale := i18n.ResolveLocale(c)
			response.Fail(c, response.WrapError(response.CodeBadRequest, i18n.T(locale, "error.sync_failed")+": "+err.Error(), err).WithData(result))
			return
		}
		respondMappedError(c, err, response.CodeInternal, "error.sync_failed")
		return
	}

	locale := i18n.ResolveLocale(c)
	switch {
	case result.Status == constants.SyncStatusDryRun:
		response.SuccessWithMsg(c, i18n.T(locale, "message.sync_dry_run"), result)
	case result.Action == constants.SyncActionSkipped:
		response.SuccessWithMsg(c, i18n.T(locale, "message.sync_skipped_mode"), result)
	default:
		response.Success(c, result)
	}
}

// ReconcileObsidian 对账：不在已发布集合中的同步文章转草稿或删除
func (h *Handler) ReconcileObsidian(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.ObsidianSyncService.Reconcile(c.Request.Context(), service.ReconcileInput{
		PublishedPaths: req.PublishedPaths,
		ScopePrefixes:  req.ScopePrefixes,
		Behavior:       req.Behavior,
		Source:         constants.SyncLogSourceAPI,
		OperatorID:     operatorID(c),
		DryRun:         req.DryRun,
	})
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.sync_failed")
		return
	}
	response.Success(c, result)
}

// SyncVault 批量同步服务器上的笔记库，async=true 时推送到队列
func (h *Handler) SyncVault(c *gin.Context) {
	var req VaultSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if req.Async {
		info, err := h.QueueClient.EnqueueVaultSync(queue.VaultSyncPayload{
			SourceDir:         req.SourceDir,
			IncludeRoots:      req.IncludeRoots,
			Mode:              req.Mode,
			DryRun:            req.DryRun,
			Force:             req.Force,
			ReconcileBehavior: req.ReconcileBehavior,
			OperatorID:        operatorID(c),
		})
		if err != nil {
			respondMappedError(c, err, response.CodeInternal, "error.sync_failed")
			return
		}
		requestLog(c).Infow("vault_sync_enqueued", "task_id", info.TaskID, "source_dir", req.SourceDir)
		response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.vault_sync_queued"), info)
		return
	}

	stats, err := h.VaultSyncService.Run(c.Request.Context(), service.VaultSyncInput{
		SourceDir:         req.SourceDir,
		IncludeRoots:      req.IncludeRoots,
		ExcludedDirs:      req.ExcludedDirs,
		PublishTag:        req.PublishTag,
		Mode:              req.Mode,
		DryRun:            req.DryRun,
		Force:             req.Force,
		ReconcileBehavior: req.ReconcileBehavior,
		ScopePrefixes:     req.ScopePrefixes,
		Source:            constants.SyncLogSourceAPI,
		OperatorID:        operatorID(c),
	})
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.sync_failed")
		return
	}
	response.Success(c, stats)
}

// IndexObsidianDocuments 文档池索引，async=true 时推送到队列
func (h *Handler) IndexObsidianDocuments(c *gin.Context) {
	var req DocumentIndexRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	if async := handlershared.QueryBool(c, "async"); async != nil {
		req.Async = *async
	}

	if req.Async {
		info, err := h.QueueClient.EnqueueDocumentIndex(queue.DocumentIndexPayload{
			SourceDir:           req.SourceDir,
			Trigger:             req.Trigger,
			MissingBehavior:     req.MissingBehavior,
			AutoUpdatePublished: req.AutoUpdatePublished,
			RepoURL:             req.RepoURL,
			RepoBranch:          req.RepoBranch,
			RepoCommit:          req.RepoCommit,
			OperatorID:          operatorID(c),
		})
		if err != nil {
			respondMappedError(c, err, response.CodeInternal, "error.index_failed")
			return
		}
		requestLog(c).Infow("document_index_enqueued", "task_id", info.TaskID, "source_dir", req.SourceDir)
		response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.index_queued"), info)
		return
	}

	result, err := h.DocumentPoolService.Index(c.Request.Context(), service.DocumentPoolInput{
		SourceDir:           req.SourceDir,
		Trigger:             req.Trigger,
		MissingBehavior:     req.MissingBehavior,
		AutoUpdatePublished: req.AutoUpdatePublished,
		RepoURL:             req.RepoURL,
		RepoBranch:          req.RepoBranch,
		RepoCommit:          req.RepoCommit,
		OperatorID:          operatorID(c),
	})
	if err != nil {
		if result != nil && result.Run != nil && !errors.Is(err, service.ErrInvalidSourceDir) && !errors.Is(err, service.ErrVaultLocked) {
			requestLog(c).Errorw("document_index_failed", "run_id", result.Run.ID, "error", err)
			locale := i18n.ResolveLocale(c)
			response.Fail(c, response.WrapError(response.CodeInternal, i18n.T(locale, "error.index_failed")+": "+result.Message, err).WithData(result))
			return
		}
		respondMappedError(c, err, response.CodeInternal, "error.index_failed")
		return
	}
	response.Success(c, result)
}

// ListObsidianDocuments 文档池列表
func (h *Handler) ListObsidianDocuments(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	docs, total, err := h.ObsidianDocumentRepo.List(repository.ObsidianDocumentListFilter{
		Page:          page,
		PageSize:      pageSize,
		Search:        strings.TrimSpace(c.Query("search")),
		SourceExists:  handlershared.QueryBool(c, "source_exists"),
		HasPublishTag: handlershared.QueryBool(c, "has_publish_tag"),
		Linked:        handlershared.QueryBool(c, "linked"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, docs, handlershared.BuildPagination(page, pageSize, total))
}

// GetObsidianDocument 文档池详情
func (h *Handler) GetObsidianDocument(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.ObsidianDocumentRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	if doc == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, doc)
}

// ListObsidianSyncRuns 文档池运行记录
func (h *Handler) ListObsidianSyncRuns(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	runs, total, err := h.ObsidianSyncRunRepo.List(repository.ObsidianSyncRunListFilter{
		Page:     page,
		PageSize: pageSize,
		Trigger:  strings.TrimSpace(c.Query("trigger")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, runs, handlershared.BuildPagination(page, pageSize, total))
}

// ListSyncLogs 同步日志列表
func (h *Handler) ListSyncLogs(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	startedFrom, err := parseTimeNullable(c.Query("started_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	startedTo, err := parseTimeNullable(c.Query("started_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	logs, total, err := h.SyncLogRepo.List(repository.SyncLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		Source:      strings.TrimSpace(c.Query("source")),
		Status:      strings.TrimSpace(c.Query("status")),
		Action:      strings.TrimSpace(c.Query("action")),
		Slug:        strings.TrimSpace(c.Query("slug")),
		StartedFrom: startedFrom,
		StartedTo:   startedTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, handlershared.BuildPagination(page, pageSize, total))
}

// GetSyncLog 同步日志详情
func (h *Handler) GetSyncLog(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	row, err := h.SyncLogRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	if row == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, row)
}
