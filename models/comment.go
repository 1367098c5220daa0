package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Comment 评论表
// 只支持一级嵌套：ParentID 为 nil 是顶级评论，否则指向一条顶级评论。
// 创建后只有 RepliesCount 会原地变化。
type Comment struct {
	ID           uint64                      `gorm:"primarykey" json:"id"`
	PostID       uint64                      `gorm:"index;not null" json:"postId"`
	AuthorID     uint64                      `gorm:"index;not null" json:"authorId"`
	ParentID     *uint64                     `gorm:"index" json:"parentId,omitempty"`
	Content      string                      `gorm:"type:text" json:"content,omitempty"`
	ImageURLs    datatypes.JSONSlice[string] `gorm:"type:json" json:"imageUrls,omitempty"`
	RepliesCount int                         `gorm:"default:0" json:"repliesCount"`
	CreatedAt    time.Time                   `json:"createdAt"`
	DeletedAt    gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Comment) TableName() string { return prefix + "comment" }

// IsTopLevel 是否顶级评论
func (c Comment) IsTopLevel() bool { return c.ParentID == nil }

// ReplyGroup 某条顶级评论下按需加载的回复
// Loaded 与 Expanded 相互独立：收起不会丢弃已缓存的 Items。
type ReplyGroup struct {
	CommentID uint64    `json:"commentId"`
	Loaded    bool      `json:"loaded"`
	Expanded  bool      `json:"expanded"`
	Items     []Comment `json:"items"`
}
