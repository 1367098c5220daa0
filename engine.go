package social_sdk

import (
	"context"
	"errors"
	"sync"

	"github.com/cydxin/social-sdk/alert"
	"github.com/cydxin/social-sdk/api"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/push"
	"github.com/cydxin/social-sdk/service"
	"go.uber.org/zap"
)

// Engine 一个用户会话的全部客户端状态。
// 未读数、通知列表、最近搜索随会话存在；评论、点赞、好友状态按页面创建，由调用方 Close。
type Engine struct {
	config *Config

	API    *api.Client
	Push   push.Channel
	Alerts alert.Sink

	UnreadCounter     *service.UnreadCounter
	NotificationStore *service.NotificationStore
	RecentSearchStore *service.RecentSearchStore

	svc       *service.Service
	ownsPush  bool
	closeOnce sync.Once
}

var (
	ErrMissingBaseURL = errors.New("base url is required")
	ErrMissingUserID  = errors.New("user id is required")
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) (*Engine, error) {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if c.UserID == 0 {
		return nil, ErrMissingUserID
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Alert == nil {
		c.Alert = alert.LogSink{Logger: c.Logger.Named("alert")}
	}

	e := &Engine{config: c, Alerts: c.Alert, Push: c.Push}
	if e.Push == nil && c.RDB != nil {
		e.Push = push.NewRedisChannel(context.Background(), c.RDB, c.Logger.Named("push"))
		e.ownsPush = true
	}

	e.API = api.NewClient(api.Config{
		BaseURL:    c.BaseURL,
		UserID:     c.UserID,
		HTTPClient: c.HTTPClient,
		Logger:     c.Logger.Named("api"),
	})

	// 初始化基础 Service
	e.svc = &service.Service{
		API:    e.API,
		Push:   e.Push,
		Alert:  c.Alert,
		Logger: c.Logger,
		UserID: c.UserID,
	}

	e.UnreadCounter = service.NewUnreadCounter(e.svc, c.PollInterval)
	e.NotificationStore = service.NewNotificationStore(e.svc, e.UnreadCounter, c.PageSize)
	e.RecentSearchStore = service.NewRecentSearchStore(c.RDB, c.UserID, c.Logger)
	return e, nil
}

// Start 订阅推送、拉取未读数并开始轮询、读取最近搜索
func (e *Engine) Start(ctx context.Context) error {
	if e.Push != nil {
		if err := e.NotificationStore.Attach(); err != nil {
			return err
		}
	}
	if err := e.UnreadCounter.Start(ctx); err != nil {
		e.config.Logger.Warn("未读数初始化失败", zap.Error(err))
	}
	if err := e.RecentSearchStore.Load(ctx); err != nil {
		e.config.Logger.Warn("最近搜索读取失败", zap.Error(err))
	}
	return nil
}

// UserID 当前用户
func (e *Engine) UserID() uint64 { return e.config.UserID }

// Comments 某帖子详情页的评论区
func (e *Engine) Comments() *service.CommentStore {
	return service.NewCommentStore(e.svc)
}

// Reaction 帖子的点赞按钮
func (e *Engine) Reaction(postID uint64, initial models.ReactionState) *service.ReactionToggle {
	return service.NewReactionToggle(e.svc, postID, initial)
}

// Friend 与某用户的好友关系按钮
func (e *Engine) Friend(peerID uint64, initial models.FriendStatus) *service.FriendStatusMachine {
	return service.NewFriendStatusMachine(e.svc, peerID, initial)
}

// Search 用户搜索框，选中结果会写入最近搜索
func (e *Engine) Search() *service.UserSearch {
	return service.NewUserSearch(e.svc, e.RecentSearchStore, e.config.SearchDebounce)
}

// Close 释放会话级订阅与轮询；自建的推送通道一并关闭
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.NotificationStore.Close()
		e.UnreadCounter.Close()
		if e.ownsPush && e.Push != nil {
			err = e.Push.Close()
		}
	})
	return err
}
