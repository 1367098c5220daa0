package push

import (
	"context"
	"errors"
)

// Handler 主题消息回调；payload 为原始消息体
type Handler func(topic string, payload []byte)

// Subscription 订阅句柄，Unsubscribe 可重复调用
type Subscription interface {
	Topic() string
	Unsubscribe() error
}

// Channel 推送通道：按主题订阅服务端下发的异步消息。
// 一个用户会话只持有一条逻辑连接，多个 store 在各自主题上订阅。
type Channel interface {
	Subscribe(topic string, h Handler) (Subscription, error)
	Close() error
}

// Publisher 发布端（参考后端、进程内 Hub、Redis）
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

var (
	ErrClosed       = errors.New("push channel closed")
	ErrEmptyTopic   = errors.New("topic is required")
	ErrNilHandler   = errors.New("handler is required")
	ErrNotConnected = errors.New("push channel not connected")
)

func checkSubscribe(topic string, h Handler) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if h == nil {
		return ErrNilHandler
	}
	return nil
}
