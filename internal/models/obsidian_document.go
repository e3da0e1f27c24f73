package models

import "time"

// ObsidianDocument 文档池条目
// 以笔记库相对路径为唯一键，源文件消失时仅标记 source_exists=false。
type ObsidianDocument struct {
	ID                uint        `gorm:"primarykey" json:"id"`                                         // 主键
	VaultPath         string      `gorm:"type:varchar(500);uniqueIndex;not null" json:"vault_path"`    // 相对路径
	Title             string      `gorm:"type:varchar(255);not null" json:"title"`                      // 标题
	SlugCandidate     string      `gorm:"type:varchar(255);not null;default:''" json:"slug_candidate"`  // 候选 slug
	CategoryCandidate string      `gorm:"type:varchar(20);not null;default:''" json:"category_candidate"`
	Tags              StringArray `gorm:"type:json" json:"tags"`                                        // 标签
	HasPublishTag     bool        `gorm:"not null;default:false;index" json:"has_publish_tag"`          // 是否带发布标签
	Content           string      `gorm:"type:text" json:"content,omitempty"`                           // 正文
	Excerpt           string      `gorm:"type:text" json:"excerpt"`                                     // 摘要
	FileHash          string      `gorm:"type:varchar(40);not null;default:''" json:"file_hash"`        // 原文 sha1
	SourceMtime       *time.Time  `json:"source_mtime"`                                                 // 源文件修改时间
	SourceExists      bool        `gorm:"not null;default:true;index" json:"source_exists"`             // 源文件是否存在
	FirstSeenAt       time.Time   `json:"first_seen_at"`                                                // 首次发现
	LastSeenAt        time.Time   `gorm:"index" json:"last_seen_at"`                                    // 最近发现
	LastIndexedAt     time.Time   `json:"last_indexed_at"`                                              // 最近索引
	LinkedPostID      *uint       `gorm:"index" json:"linked_post_id"`                                  // 关联文章（文章删除时置空）
	CreatedAt         time.Time   `json:"created_at"`                                                   // 创建时间
	UpdatedAt         time.Time   `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (ObsidianDocument) TableName() string {
	return "obsidian_documents"
}

// ObsidianSyncRun 文档池索引运行记录（只追加）
type ObsidianSyncRun struct {
	ID                    uint      `gorm:"primarykey" json:"id"`                                // 主键
	Trigger               string    `gorm:"type:varchar(20);not null;index" json:"trigger"`      // 触发方式（manual/scheduled）
	Status                string    `gorm:"type:varchar(20);not null;index" json:"status"`       // 状态
	RepoURL               string    `gorm:"type:varchar(500);not null;default:''" json:"repo_url"`
	RepoBranch            string    `gorm:"type:varchar(255);not null;default:''" json:"repo_branch"`
	RepoCommit            string    `gorm:"type:varchar(64);not null;default:''" json:"repo_commit"`
	ScannedCount          int       `gorm:"not null;default:0" json:"scanned_count"`
	CreatedCount          int       `gorm:"not null;default:0" json:"created_count"`
	UpdatedCount          int       `gorm:"not null;default:0" json:"updated_count"`
	MissingCount          int       `gorm:"not null;default:0" json:"missing_count"`
	PublishedUpdatedCount int       `gorm:"not null;default:0" json:"published_updated_count"`
	DraftedCount          int       `gorm:"not null;default:0" json:"drafted_count"`
	StartedAt             time.Time `gorm:"index" json:"started_at"`                            // 开始时间
	FinishedAt            time.Time `json:"finished_at"`                                        // 结束时间
	DurationMs            int64     `gorm:"not null;default:0" json:"duration_ms"`              // 耗时（毫秒）
	Message               string    `gorm:"type:text" json:"message"`                           // 说明
	OperatorID            *uint     `gorm:"index" json:"operator_id"`                           // 操作管理员
}

// TableName 指定表名
func (ObsidianSyncRun) TableName() string {
	return "obsidian_sync_runs"
}
