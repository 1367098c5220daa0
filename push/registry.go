package push

import (
	"sync"

	"github.com/google/uuid"
)

// registry 主题 -> 订阅ID -> 回调，三种通道实现共用
type registry struct {
	mu     sync.RWMutex
	topics map[string]map[string]Handler
}

func newRegistry() *registry {
	return &registry{topics: make(map[string]map[string]Handler)}
}

// add 返回订阅ID以及是否是该主题的第一个订阅者
func (r *registry) add(topic string, h Handler) (string, bool) {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	hs, ok := r.topics[topic]
	if !ok {
		hs = make(map[string]Handler)
		r.topics[topic] = hs
	}
	hs[id] = h
	return id, !ok
}

// remove 返回该主题是否已没有订阅者
func (r *registry) remove(topic, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	hs, ok := r.topics[topic]
	if !ok {
		return false
	}
	delete(hs, id)
	if len(hs) == 0 {
		delete(r.topics, topic)
		return true
	}
	return false
}

func (r *registry) handlers(topic string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := r.topics[topic]
	out := make([]Handler, 0, len(hs))
	for _, h := range hs {
		out = append(out, h)
	}
	return out
}

func (r *registry) topicList() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.topics))
	for t := range r.topics {
		out = append(out, t)
	}
	return out
}

func (r *registry) count(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[topic])
}

// dispatch 在锁外调用回调，回调里允许再订阅/退订
func (r *registry) dispatch(topic string, payload []byte) int {
	hs := r.handlers(topic)
	for _, h := range hs {
		h(topic, payload)
	}
	return len(hs)
}

// subscription 通用订阅句柄
type subscription struct {
	topic  string
	once   sync.Once
	cancel func() error
	err    error
}

func (s *subscription) Topic() string { return s.topic }

func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.err = s.cancel()
	})
	return s.err
}
