package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification 用户通知
// Target 是可选的跳转引用，例如 {"type":"post","id":1}。
type Notification struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint64         `gorm:"index:idx_user_created,priority:1;not null" json:"userId"`
	Message   string         `gorm:"size:500;not null" json:"message"`
	IsRead    bool           `gorm:"default:false;index" json:"isRead"`
	Target    datatypes.JSON `gorm:"type:json" json:"target,omitempty"`
	ReadAt    *time.Time     `json:"-"`
	CreatedAt time.Time      `gorm:"index:idx_user_created,priority:2" json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Notification) TableName() string { return prefix + "notification" }

// NotificationPage 分页结果，页码从 1 开始
type NotificationPage struct {
	Data       []Notification `json:"data"`
	TotalPages int            `json:"totalPages"`
}

// UnreadCount 未读数
type UnreadCount struct {
	Count int64 `json:"count"`
}
