package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	prefix = "sn_"
)

// User 用户表（参考后端使用；客户端只关心 UserBrief）
type User struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Username  string         `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return prefix + "user"
}

// Brief 转成对外展示的精简结构
func (u User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Username: u.Username, Nickname: u.Nickname, Avatar: u.Avatar}
}

// UserBrief 搜索结果、最近搜索、点赞列表里展示的用户
type UserBrief struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Post 帖子表，只保留评论/点赞/通知需要的字段
type Post struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint64         `gorm:"index;not null" json:"userId"` // 发布者
	Content   string         `gorm:"type:text" json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string { return prefix + "post" }
