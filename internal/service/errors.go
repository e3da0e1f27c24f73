package service

import "errors"

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrSlugRequired 文章缺少 slug 且无法由标题生成
	ErrSlugRequired = errors.New("slug or title is required")
	// ErrSlugExists slug 已被占用
	ErrSlugExists = errors.New("slug already exists")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidPassword 原密码错误
	ErrInvalidPassword = errors.New("invalid password")
	// ErrWeakPassword 密码不符合策略
	ErrWeakPassword = errors.New("weak password")
	// ErrAdminExists 管理员用户名已存在
	ErrAdminExists = errors.New("admin already exists")
	// ErrInvalidCategory 分类不合法
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidTimelineNode 时间线参数不合法
	ErrInvalidTimelineNode = errors.New("invalid timeline node")
	// ErrBadTravelPlace 旅行足迹参数不合法
	ErrBadTravelPlace = errors.New("invalid travel place")
	// ErrTravelPlaceExists 同一省市重复
	ErrTravelPlaceExists = errors.New("travel place already exists")
	// ErrInvalidSocialFriend 社交关系参数不合法
	ErrInvalidSocialFriend = errors.New("invalid social friend")
	// ErrInvalidHighlight 高光时刻参数不合法
	ErrInvalidHighlight = errors.New("invalid highlight")
	// ErrHighlightStageNotFound 高光阶段不存在
	ErrHighlightStageNotFound = errors.New("highlight stage not found")
	// ErrSyncSlugRequired 同步载荷缺少 slug 与 title
	ErrSyncSlugRequired = errors.New("slug 或 title 至少提供一个")
	// ErrSyncSlugExhausted 冲突 slug 重试次数用尽
	ErrSyncSlugExhausted = errors.New("unable to allocate unique slug for obsidian path")
	// ErrInvalidSourceDir 笔记库目录无效
	ErrInvalidSourceDir = errors.New("invalid source directory")
	// ErrVaultLocked 笔记库正在被其他任务同步
	ErrVaultLocked = errors.New("vault is locked by another sync")
	// ErrSearchDisabled 全文检索未启用
	ErrSearchDisabled = errors.New("search index is disabled")
)
