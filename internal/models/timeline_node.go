package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TimelineLink 时间线节点外链
type TimelineLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// TimelineLinks 外链列表
type TimelineLinks []TimelineLink

// Value 实现 driver.Valuer 接口
func (l TimelineLinks) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (l *TimelineLinks) Scan(value interface{}) error {
	if value == nil {
		*l = TimelineLinks{}
		return nil
	}
	raw, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = TimelineLinks{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

// TimelineNode 人生时间线节点
type TimelineNode struct {
	ID          uint            `gorm:"primarykey" json:"id"`                                   // 主键
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`                // 标题
	Description string          `gorm:"type:text" json:"description"`                           // 描述
	StartDate   datatypes.Date  `gorm:"not null;index" json:"start_date"`                       // 开始日期
	EndDate     *datatypes.Date `json:"end_date"`                                               // 结束日期
	Type        string          `gorm:"type:varchar(20);not null;index" json:"type"`            // 类型
	Impact      string          `gorm:"type:varchar(10);not null;default:'medium'" json:"impact"`
	Phase       string          `gorm:"type:varchar(100);not null;default:''" json:"phase"`     // 阶段
	Tags        StringArray     `gorm:"type:json" json:"tags"`                                  // 标签
	Cover       string          `gorm:"type:varchar(500);not null;default:''" json:"cover"`     // 封面
	Links       TimelineLinks   `gorm:"type:json" json:"links"`                                 // 外链
	SortOrder   int             `gorm:"not null;default:0;index" json:"sort_order"`             // 排序权重
	CreatedAt   time.Time       `json:"created_at"`                                             // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (TimelineNode) TableName() string {
	return "timeline_nodes"
}
