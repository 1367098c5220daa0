package models

import "time"

// Reaction 点赞（爱心）记录，(post_id, user_id) 唯一
type Reaction struct {
	ID        uint64 `gorm:"primarykey"`
	PostID    uint64 `gorm:"not null;uniqueIndex:idx_post_user"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_post_user"`
	CreatedAt time.Time
}

func (Reaction) TableName() string { return prefix + "reaction" }

// ReactionState 当前查看者对某帖子的点赞状态
// IsLoved 与 Count 必须一起更新。
type ReactionState struct {
	IsLoved bool `json:"isLoved"`
	Count   int  `json:"count"`
}
