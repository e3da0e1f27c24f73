package models

import (
	"time"

	"gorm.io/datatypes"
)

// HighlightStage 高光时刻阶段
type HighlightStage struct {
	ID          uint            `gorm:"primarykey" json:"id"`                        // 主键
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`     // 标题
	Description string          `gorm:"type:text" json:"description"`                // 描述
	StartDate   *datatypes.Date `json:"start_date"`                                  // 开始日期
	EndDate     *datatypes.Date `json:"end_date"`                                    // 结束日期
	SortOrder   int             `gorm:"not null;default:0;index" json:"sort_order"`  // 排序权重
	Items       []HighlightItem `gorm:"foreignKey:StageID" json:"items"`             // 阶段下的条目
	CreatedAt   time.Time       `json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`                                  // 更新时间
}

// TableName 指定表名
func (HighlightStage) TableName() string {
	return "highlight_stages"
}

// HighlightItem 高光时刻条目
type HighlightItem struct {
	ID          uint            `gorm:"primarykey" json:"id"`                        // 主键
	StageID     uint            `gorm:"not null;index" json:"stage_id"`              // 所属阶段
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`     // 标题
	Description string          `gorm:"type:text" json:"description"`                // 描述
	AchievedAt  *datatypes.Date `json:"achieved_at"`                                 // 达成日期
	SortOrder   int             `gorm:"not null;default:0;index" json:"sort_order"`  // 排序权重
	CreatedAt   time.Time       `json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`                                  // 更新时间
}

// TableName 指定表名
func (HighlightItem) TableName() string {
	return "highlight_items"
}
