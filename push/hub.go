package push

import (
	"context"
	"sync/atomic"
)

// Hub 进程内推送通道，同步投递。
// 用于测试、嵌入式场景，也作为参考后端的本地扇出。
type Hub struct {
	reg    *registry
	closed atomic.Bool
}

func NewHub() *Hub {
	return &Hub{reg: newRegistry()}
}

func (h *Hub) Subscribe(topic string, fn Handler) (Subscription, error) {
	if err := checkSubscribe(topic, fn); err != nil {
		return nil, err
	}
	if h.closed.Load() {
		return nil, ErrClosed
	}
	id, _ := h.reg.add(topic, fn)
	return &subscription{topic: topic, cancel: func() error {
		h.reg.remove(topic, id)
		return nil
	}}, nil
}

// Publish 同步调用该主题下所有回调
func (h *Hub) Publish(_ context.Context, topic string, payload []byte) error {
	if h.closed.Load() {
		return ErrClosed
	}
	h.reg.dispatch(topic, payload)
	return nil
}

// Subscribers 某主题当前订阅数
func (h *Hub) Subscribers(topic string) int {
	return h.reg.count(topic)
}

func (h *Hub) Close() error {
	h.closed.Store(true)
	return nil
}
