package alert

import (
	"sync"

	"go.uber.org/zap"
)

// Alert 一条面向用户的错误提示
type Alert struct {
	Op      string // 触发的操作，例如 comment.submit
	Message string // 服务端消息或本地兜底文案
	Err     error
}

// Sink 全局提示出口（UI 弹窗、toast 等由调用方实现）
type Sink interface {
	Alert(a Alert)
}

// Func 把函数适配成 Sink
type Func func(a Alert)

func (f Func) Alert(a Alert) { f(a) }

// LogSink 只写日志的 Sink，未配置 UI 出口时使用
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Alert(a Alert) {
	logger := s.Logger
	if logger == nil {
		return
	}
	logger.Warn(a.Message, zap.String("op", a.Op), zap.Error(a.Err))
}

// Recorder 记录所有提示，便于测试或 UI 轮询
type Recorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *Recorder) Alert(a Alert) {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	r.mu.Unlock()
}

// Alerts 返回快照
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// Last 最近一条，没有时 ok=false
func (r *Recorder) Last() (Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.alerts) == 0 {
		return Alert{}, false
	}
	return r.alerts[len(r.alerts)-1], true
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}
