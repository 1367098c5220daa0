package push

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisChannel 基于 Redis Pub/Sub 的推送通道，主题名即 Redis channel。
// 所有主题共用一个 PubSub 连接；某主题最后一个订阅者退订时才向 Redis 退订。
type RedisChannel struct {
	rdb    *redis.Client
	ps     *redis.PubSub
	reg    *registry
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewRedisChannel(ctx context.Context, rdb *redis.Client, logger *zap.Logger) *RedisChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &RedisChannel{
		rdb:    rdb,
		ps:     rdb.Subscribe(ctx),
		reg:    newRegistry(),
		logger: logger,
		done:   make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *RedisChannel) loop() {
	defer close(c.done)
	for msg := range c.ps.Channel() {
		if n := c.reg.dispatch(msg.Channel, []byte(msg.Payload)); n == 0 {
			c.logger.Debug("redis 推送无订阅者", zap.String("topic", msg.Channel))
		}
	}
}

func (c *RedisChannel) Subscribe(topic string, h Handler) (Subscription, error) {
	if err := checkSubscribe(topic, h); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	id, first := c.reg.add(topic, h)
	if first {
		if err := c.ps.Subscribe(context.Background(), topic); err != nil {
			c.reg.remove(topic, id)
			return nil, err
		}
	}
	return &subscription{topic: topic, cancel: func() error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.reg.remove(topic, id) || c.closed {
			return nil
		}
		return c.ps.Unsubscribe(context.Background(), topic)
	}}, nil
}

func (c *RedisChannel) Publish(ctx context.Context, topic string, payload []byte) error {
	return c.rdb.Publish(ctx, topic, payload).Err()
}

// Close 关闭 PubSub 连接并等待分发协程退出
func (c *RedisChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.ps.Close()
	<-c.done
	return err
}
