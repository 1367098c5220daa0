package models

import "time"

// FriendStatus 查看者与目标用户之间的关系状态
type FriendStatus string

const (
	FriendStatusNone             FriendStatus = "NONE"
	FriendStatusRequestedBySelf  FriendStatus = "REQUESTED_BY_SELF"
	FriendStatusRequestedByOther FriendStatus = "REQUESTED_BY_OTHER"
	FriendStatusAccepted         FriendStatus = "ACCEPTED"
	FriendStatusBlocked          FriendStatus = "BLOCKED"
)

// Valid 是否已知状态
func (s FriendStatus) Valid() bool {
	switch s {
	case FriendStatusNone, FriendStatusRequestedBySelf, FriendStatusRequestedByOther,
		FriendStatusAccepted, FriendStatusBlocked:
		return true
	}
	return false
}

// 关系行状态
const (
	FriendshipPending  = 0
	FriendshipAccepted = 1
	FriendshipBlocked  = 2
)

// Friendship 好友关系表
// 一对用户只保留一行；拒绝/取消/删除好友直接删除该行。
type Friendship struct {
	ID          uint64 `gorm:"primarykey"`
	RequesterID uint64 `gorm:"not null;uniqueIndex:idx_pair,priority:1"` // 发起方（拉黑时为拉黑者）
	AddresseeID uint64 `gorm:"not null;uniqueIndex:idx_pair,priority:2;index"`
	Status      uint8  `gorm:"type:tinyint;default:0"` // 0-待处理 1-已是好友 2-拉黑
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Friendship) TableName() string { return prefix + "friendship" }

// StatusFor 以 viewerID 的视角换算关系状态
func (f *Friendship) StatusFor(viewerID uint64) FriendStatus {
	if f == nil {
		return FriendStatusNone
	}
	switch f.Status {
	case FriendshipAccepted:
		return FriendStatusAccepted
	case FriendshipBlocked:
		return FriendStatusBlocked
	case FriendshipPending:
		if f.RequesterID == viewerID {
			return FriendStatusRequestedBySelf
		}
		return FriendStatusRequestedByOther
	}
	return FriendStatusNone
}
