package service

import (
	"context"
	"sync"
	"time"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/push"
	"go.uber.org/zap"
)

const defaultPollInterval = 30 * time.Second

// UnreadCounter 未读角标。
// 三个来源各自独立：定时轮询、计数主题推送、本地手动递减。最终以服务端为准。
type UnreadCounter struct {
	*Service
	interval time.Duration

	mu      sync.Mutex
	count   int64
	sub     push.Subscription
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	closed  bool
}

// NewUnreadCounter interval <= 0 时默认 30s
func NewUnreadCounter(s *Service, interval time.Duration) *UnreadCounter {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &UnreadCounter{Service: s, interval: interval}
}

// Start 先拉一次，再订阅计数主题并开始轮询。重复调用无副作用。
func (c *UnreadCounter) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	if c.Push != nil {
		sub, err := c.Push.Subscribe(cons.NotificationCountTopic(c.UserID), c.onPush)
		if err != nil {
			// 推送不可用时只靠轮询
			c.logger().Warn("订阅未读数主题失败", zap.Uint64("user_id", c.UserID), zap.Error(err))
		} else if !c.keepSub(sub) {
			return nil
		}
	}

	_ = c.Refresh(loopCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	// 订阅或首次拉取期间已 Close
	if c.closed {
		return nil
	}
	c.wg.Add(1)
	go c.poll(loopCtx)
	return nil
}

// keepSub 保存订阅；已 Close 时立即退订并返回 false
func (c *UnreadCounter) keepSub(sub push.Subscription) bool {
	c.mu.Lock()
	if !c.closed {
		c.sub = sub
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()
	if err := sub.Unsubscribe(); err != nil {
		c.logger().Warn("退订未读数主题失败", zap.String("topic", sub.Topic()), zap.Error(err))
	}
	return false
}

func (c *UnreadCounter) poll(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}

func (c *UnreadCounter) onPush(topic string, payload []byte) {
	p, err := push.ParseCount(payload)
	if err != nil {
		c.logger().Warn("未读数推送格式无法识别", zap.String("topic", topic), zap.Error(err))
		return
	}
	c.logger().Debug("未读数推送", zap.Stringer("shape", p.Shape), zap.Int64("count", p.Count))
	c.Set(p.Count)
}

// Refresh 立即从服务端拉取未读数；失败只记日志
func (c *UnreadCounter) Refresh(ctx context.Context) error {
	n, err := c.API.UnreadCount(ctx, c.UserID)
	if err != nil {
		if ctx.Err() == nil {
			c.logger().Warn("拉取未读数失败", zap.Uint64("user_id", c.UserID), zap.Error(err))
		}
		return err
	}
	c.Set(n)
	return nil
}

// Decrement 本地减一，最小为 0
func (c *UnreadCounter) Decrement() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.count > 0 {
		c.count--
	}
}

// Set 覆盖当前值，负数按 0 处理
func (c *UnreadCounter) Set(n int64) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.count = n
}

func (c *UnreadCounter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Close 停止轮询并退订
func (c *UnreadCounter) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			c.logger().Warn("退订未读数主题失败", zap.String("topic", sub.Topic()), zap.Error(err))
		}
	}
	c.wg.Wait()
}
