package models

import "time"

// Post 文章表
// 同一 obsidian_path 在 sync_source=obsidian 下最多对应一篇文章，删除为物理删除。
type Post struct {
	ID           uint        `gorm:"primarykey" json:"id"`                                                        // 主键
	Title        string      `gorm:"type:varchar(255);not null" json:"title"`                                     // 标题
	Slug         string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Excerpt      string      `gorm:"type:text" json:"excerpt"`                                                    // 摘要
	Content      string      `gorm:"type:text" json:"content"`                                                    // Markdown 正文
	Category     string      `gorm:"type:varchar(20);not null;index" json:"category"`                             // 分类（tech/learning/life）
	Tags         StringArray `gorm:"type:json" json:"tags"`                                                       // 标签（有序）
	Cover        string      `gorm:"type:varchar(500);not null;default:''" json:"cover"`                          // 封面
	Draft        bool        `gorm:"not null;index" json:"draft"`                                                 // 是否草稿（新建默认 true，由业务层设置）
	ObsidianPath string      `gorm:"type:varchar(500);not null;default:'';index" json:"obsidian_path"`           // Obsidian 相对路径
	SyncSource   string      `gorm:"type:varchar(20);not null;default:'manual';index" json:"sync_source"`         // 来源（manual/obsidian）
	LastSyncedAt *time.Time  `json:"last_synced_at"`                                                              // 最后同步时间
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`                                                     // 创建时间
	UpdatedAt    time.Time   `gorm:"index" json:"updated_at"`                                                     // 更新时间
	Views        uint64      `gorm:"->;-:migration" json:"views"`                                                 // 阅读量（来自 post_views，只读）
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// IsPublished 是否已发布
func (p *Post) IsPublished() bool {
	return p != nil && !p.Draft
}

// PostView 文章阅读计数
type PostView struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	PostID    uint      `gorm:"uniqueIndex;not null" json:"post_id"`    // 文章 ID
	Views     uint64    `gorm:"not null;default:0" json:"views"`        // 阅读量
	UpdatedAt time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (PostView) TableName() string {
	return "post_views"
}
