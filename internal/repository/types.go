package repository

import "time"

// PostListFilter 查询文章列表的过滤条件
type PostListFilter struct {
	Page          int
	PageSize      int
	Category      string
	Tag           string
	Search        string
	SyncSource    string
	OnlyPublished bool
	Draft         *bool
	// SortByViews 按阅读量倒序，否则按更新时间倒序
	SortByViews bool
}

// SyncLogListFilter 查询同步日志列表的过滤条件
type SyncLogListFilter struct {
	Page        int
	PageSize    int
	Source      string
	Status      string
	Action      string
	Slug        string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// ObsidianDocumentListFilter 查询文档池列表的过滤条件
type ObsidianDocumentListFilter struct {
	Page          int
	PageSize      int
	Search        string
	SourceExists  *bool
	HasPublishTag *bool
	Linked        *bool
}

// ObsidianSyncRunListFilter 查询文档池运行记录的过滤条件
type ObsidianSyncRunListFilter struct {
	Page     int
	PageSize int
	Trigger  string
	Status   string
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// SortOrderUpdate 排序权重更新项
type SortOrderUpdate struct {
	ID        uint `json:"id"`
	SortOrder int  `json:"sort_order"`
}
