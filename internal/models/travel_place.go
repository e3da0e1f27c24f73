package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TravelPlace 旅行足迹，省份+城市唯一
type TravelPlace struct {
	ID        uint                `gorm:"primarykey" json:"id"`                                                   // 主键
	Province  string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_travel_province_city" json:"province"`
	City      string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_travel_province_city" json:"city"`
	Notes     string              `gorm:"type:text" json:"notes"`                                                 // 备注
	VisitedAt *datatypes.Date     `json:"visited_at"`                                                             // 到访日期
	Latitude  decimal.NullDecimal `gorm:"type:decimal(9,6)" json:"latitude"`                                      // 纬度
	Longitude decimal.NullDecimal `gorm:"type:decimal(9,6)" json:"longitude"`                                     // 经度
	Cover     string              `gorm:"type:varchar(500);not null;default:''" json:"cover"`                     // 封面
	SortOrder int                 `gorm:"not null;default:0;index" json:"sort_order"`                             // 排序权重
	CreatedAt time.Time           `json:"created_at"`                                                             // 创建时间
	UpdatedAt time.Time           `json:"updated_at"`                                                             // 更新时间
}

// TableName 指定表名
func (TravelPlace) TableName() string {
	return "travel_places"
}
