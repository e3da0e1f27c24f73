package queue

import (
	"encoding/json"

	"github.com/openingclouds/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskObsidianVaultSync 笔记库批量同步任务
	TaskObsidianVaultSync = constants.TaskObsidianVaultSync
	// TaskObsidianIndex 文档池索引任务
	TaskObsidianIndex = constants.TaskObsidianIndex
)

// VaultSyncPayload 笔记库批量同步任务载荷，空字段使用配置默认值
type VaultSyncPayload struct {
	SourceDir         string   `json:"source_dir"`
	IncludeRoots      []string `json:"include_roots,omitempty"`
	Mode              string   `json:"mode"`
	DryRun            bool     `json:"dry_run"`
	Force             bool     `json:"force"`
	ReconcileBehavior string   `json:"reconcile_behavior"`
	OperatorID        *uint    `json:"operator_id,omitempty"`
}

// DocumentIndexPayload 文档池索引任务载荷
type DocumentIndexPayload struct {
	SourceDir           string `json:"source_dir"`
	Trigger             string `json:"trigger"`
	MissingBehavior     string `json:"missing_behavior"`
	AutoUpdatePublished *bool  `json:"auto_update_published,omitempty"`
	RepoURL             string `json:"repo_url"`
	RepoBranch          string `json:"repo_branch"`
	RepoCommit          string `json:"repo_commit"`
	OperatorID          *uint  `json:"operator_id,omitempty"`
}

// NewVaultSyncTask 创建笔记库批量同步任务
func NewVaultSyncTask(payload VaultSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskObsidianVaultSync, body), nil
}

// NewDocumentIndexTask 创建文档池索引任务
func NewDocumentIndexTask(payload DocumentIndexPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskObsidianIndex, body), nil
}
