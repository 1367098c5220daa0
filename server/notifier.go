package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/push"
	"github.com/cydxin/social-sdk/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Target 通知跳转引用
type Target struct {
	Type string `json:"type"` // post / user
	ID   uint64 `json:"id"`
}

// Notifier 落库通知并推送到用户主题。
// 推送尽力而为：失败只记日志，不影响业务接口的返回。
type Notifier struct {
	dao    *repository.NotificationDAO
	pub    push.Publisher
	logger *zap.Logger
}

func NewNotifier(dao *repository.NotificationDAO, pub push.Publisher, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{dao: dao, pub: pub, logger: logger}
}

// Notify 给 userID 生成一条通知，推送完整通知和最新未读数
func (n *Notifier) Notify(ctx context.Context, userID uint64, msg string, target *Target) (*models.Notification, error) {
	row := &models.Notification{UserID: userID, Message: msg}
	if target != nil {
		b, err := json.Marshal(target)
		if err != nil {
			return nil, err
		}
		row.Target = datatypes.JSON(b)
	}
	if err := n.dao.Create(row); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if b, err := json.Marshal(row); err == nil {
		if err := n.pub.Publish(ctx, cons.NotificationTopic(userID), b); err != nil {
			n.logger.Warn("通知推送失败", zap.Uint64("user_id", userID), zap.Error(err))
		}
	}
	n.PublishCount(ctx, userID)
	return row, nil
}

// PublishCount 推送最新未读数 {"count":n}
func (n *Notifier) PublishCount(ctx context.Context, userID uint64) {
	cnt, err := n.dao.CountUnread(userID)
	if err != nil {
		n.logger.Warn("查询未读数失败", zap.Uint64("user_id", userID), zap.Error(err))
		return
	}
	b, _ := json.Marshal(models.UnreadCount{Count: cnt})
	if err := n.pub.Publish(ctx, cons.NotificationCountTopic(userID), b); err != nil {
		n.logger.Warn("未读数推送失败", zap.Uint64("user_id", userID), zap.Error(err))
	}
}
