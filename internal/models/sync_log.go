package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncLog 同步日志（只追加）
// 每次单篇同步或对账各写入一行，payload 保存调用方原始输入。
type SyncLog struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Source     string         `gorm:"type:varchar(20);not null;index" json:"source"`         // 来源（api/command）
	Slug       string         `gorm:"type:varchar(255);not null;index" json:"slug"`          // 文章 slug 或 __reconcile__
	Mode       string         `gorm:"type:varchar(20);not null" json:"mode"`                 // 冲突模式
	Action     string         `gorm:"type:varchar(20);not null;index" json:"action"`         // 动作
	Status     string         `gorm:"type:varchar(20);not null;index" json:"status"`         // 状态
	Message    string         `gorm:"type:text" json:"message"`                              // 说明
	Payload    datatypes.JSON `json:"payload"`                                               // 原始输入
	Result     datatypes.JSON `json:"result"`                                                // 结果快照
	StartedAt  time.Time      `gorm:"index" json:"started_at"`                               // 开始时间
	FinishedAt time.Time      `json:"finished_at"`                                           // 结束时间
	DurationMs int64          `gorm:"not null;default:0" json:"duration_ms"`                 // 耗时（毫秒）
	OperatorID *uint          `gorm:"index" json:"operator_id"`                              // 操作管理员
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
}

// TableName 指定表名
func (SyncLog) TableName() string {
	return "sync_logs"
}
