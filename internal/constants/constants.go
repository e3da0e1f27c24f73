package constants

// 文章分类常量
const (
	PostCategoryTech     = "tech"
	PostCategoryLearning = "learning"
	PostCategoryLife     = "life"
)

// DefaultPostCategory 无法推断分类时的默认值（可通过 obsidian.default_category 覆盖）
const DefaultPostCategory = PostCategoryLearning

// PostCategories 合法分类集合
var PostCategories = []string{PostCategoryTech, PostCategoryLearning, PostCategoryLife}

// 文章来源常量
const (
	PostSyncSourceManual   = "manual"
	PostSyncSourceObsidian = "obsidian"
)

// 同步日志来源常量
const (
	SyncLogSourceAPI     = "api"
	SyncLogSourceCommand = "command"
)

// 同步冲突模式常量
const (
	SyncModeOverwrite = "overwrite"
	SyncModeSkip      = "skip"
	SyncModeMerge     = "merge"
)

// 同步动作常量
const (
	SyncActionCreated = "created"
	SyncActionUpdated = "updated"
	SyncActionSkipped = "skipped"
	SyncActionFailed  = "failed"
)

// 同步状态常量
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
	SyncStatusDryRun  = "dry_run"
)

// 对账行为常量
const (
	ReconcileBehaviorDraft  = "draft"
	ReconcileBehaviorDelete = "delete"
	ReconcileBehaviorNone   = "none"
)

// ReconcileSlugSentinel 对账日志使用的占位 slug
const ReconcileSlugSentinel = "__reconcile__"

// 文档池触发方式常量
const (
	SyncRunTriggerManual    = "manual"
	SyncRunTriggerScheduled = "scheduled"
)

// 文档池运行状态常量
const (
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
)

// 文档池缺失文件处理常量
const (
	MissingBehaviorDraft = "draft"
	MissingBehaviorNone  = "none"
)

// DefaultPublishTag 默认发布标签
const DefaultPublishTag = "publish"

// 时间线节点类型常量
const (
	TimelineTypeCareer     = "career"
	TimelineTypeHealth     = "health"
	TimelineTypeLearning   = "learning"
	TimelineTypeFamily     = "family"
	TimelineTypeReflection = "reflection"
)

// 时间线影响程度常量
const (
	TimelineImpactHigh   = "high"
	TimelineImpactMedium = "medium"
	TimelineImpactLow    = "low"
)

// 社交阶段常量
const (
	SocialStagePrimary = "primary"
	SocialStageMiddle  = "middle"
	SocialStageHigh    = "high"
	SocialStageTongji  = "tongji"
	SocialStageZJU     = "zju"
	SocialStageCareer  = "career"
	SocialStageFamily  = "family"
)

// SocialStageDef 社交阶段展示定义
type SocialStageDef struct {
	Key   string
	Label string
	Order int
}

// SocialStages 社交图谱阶段节点（按 Order 排序）
var SocialStages = []SocialStageDef{
	{Key: SocialStagePrimary, Label: "小学", Order: 10},
	{Key: SocialStageMiddle, Label: "初中", Order: 20},
	{Key: SocialStageHigh, Label: "高中", Order: 30},
	{Key: SocialStageTongji, Label: "同济", Order: 40},
	{Key: SocialStageZJU, Label: "浙大", Order: 50},
	{Key: SocialStageCareer, Label: "工作", Order: 60},
	{Key: SocialStageFamily, Label: "家庭", Order: 70},
}

// 队列常量
const (
	QueueDefault          = "default"
	TaskObsidianVaultSync = "obsidian:vault_sync"
	TaskObsidianIndex     = "obsidian:document_index"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "oc"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}

// SyncTokenHeader 同步令牌请求头
const SyncTokenHeader = "X-Sync-Token"
