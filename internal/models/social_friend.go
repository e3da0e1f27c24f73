package models

import "time"

// SocialFriend 社交关系
type SocialFriend struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                          // 主键
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`                        // 真实姓名（仅后台）
	PublicLabel string    `gorm:"type:varchar(100);not null" json:"public_label"`                // 公开展示名
	Relation    string    `gorm:"type:varchar(100);not null;default:''" json:"relation"`         // 关系
	StageKey    string    `gorm:"type:varchar(20);not null;default:'career';index" json:"stage_key"`
	Avatar      string    `gorm:"type:varchar(500);not null;default:''" json:"avatar"`           // 头像
	ProfileURL  string    `gorm:"type:varchar(500);not null;default:''" json:"profile_url"`      // 主页
	IsPublic    bool      `gorm:"not null;index" json:"is_public"`                               // 是否公开（新建默认 true，由业务层设置）
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"`                    // 排序权重
	CreatedAt   time.Time `json:"created_at"`                                                    // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (SocialFriend) TableName() string {
	return "social_friends"
}
