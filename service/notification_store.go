package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/push"
	"go.uber.org/zap"
)

// FeedState 通知列表状态
type FeedState int

const (
	FeedIdle FeedState = iota
	FeedLoading
	FeedLoaded
	FeedLoadingMore
)

func (s FeedState) String() string {
	switch s {
	case FeedLoading:
		return "loading"
	case FeedLoaded:
		return "loaded"
	case FeedLoadingMore:
		return "loading_more"
	default:
		return "idle"
	}
}

const (
	defaultPageSize = 20
	// 滚动到可滚动高度的 80% 时加载下一页
	scrollThreshold = 0.8
)

// NotificationStore 分页通知列表 + 实时推送合并。
//
// 各操作的一致性策略：
// - MarkRead 乐观更新，失败只记日志，不回滚；
// - DeleteOne/DeleteAll 悲观更新，服务端确认后才改列表；
// - 推送按 ID 去重后插到最前，不影响分页信息。
type NotificationStore struct {
	*Service
	counter  *UnreadCounter
	pageSize int

	mu             sync.Mutex
	items          []models.Notification
	ids            map[uint64]struct{}
	currentPage    int
	totalPages     int
	state          FeedState
	initialLoading bool
	loadingMore    bool
	loadingPage    int
	sub            push.Subscription
	closed         bool
	closeOnce      sync.Once
}

// NewNotificationStore counter 可为空；pageSize <= 0 时用默认 20
func NewNotificationStore(s *Service, counter *UnreadCounter, pageSize int) *NotificationStore {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &NotificationStore{
		Service:  s,
		counter:  counter,
		pageSize: pageSize,
		ids:      make(map[uint64]struct{}),
	}
}

// Attach 订阅当前用户的完整通知主题，重复调用无副作用
func (s *NotificationStore) Attach() error {
	if s.Push == nil {
		return push.ErrNotConnected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return push.ErrClosed
	}
	if s.sub != nil {
		return nil
	}
	sub, err := s.Push.Subscribe(cons.NotificationTopic(s.UserID), s.onPush)
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

func (s *NotificationStore) onPush(topic string, payload []byte) {
	var n models.Notification
	if err := json.Unmarshal(payload, &n); err != nil || n.ID == 0 {
		s.logger().Warn("通知推送格式错误", zap.String("topic", topic), zap.ByteString("payload", payload), zap.Error(err))
		return
	}
	s.ReceivePush(n)
}

// LoadPage 拉取第 page 页（从 1 开始）。
// more=false 为首次/刷新加载，整体替换；more=true 为加载更多，按 ID 去重追加。
// 首次加载和加载更多各自有在途标记，同类请求对相同或更小页码的重复调用直接忽略。
func (s *NotificationStore) LoadPage(ctx context.Context, page int, more bool) error {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if more {
		if s.initialLoading || (s.loadingMore && page <= s.loadingPage) || page <= s.currentPage {
			s.mu.Unlock()
			return nil
		}
		s.loadingMore = true
		s.loadingPage = page
		s.state = FeedLoadingMore
	} else {
		if s.initialLoading {
			s.mu.Unlock()
			return nil
		}
		s.initialLoading = true
		s.state = FeedLoading
	}
	s.mu.Unlock()

	p, err := s.API.ListNotifications(ctx, s.UserID, page, s.pageSize)

	s.mu.Lock()
	if more {
		s.loadingMore = false
		s.loadingPage = 0
	} else {
		s.initialLoading = false
	}
	if err != nil {
		s.state = s.settledState()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			s.failGeneric("notification.load", err, cons.MsgNotificationError)
		}
		return err
	}
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	if !more {
		s.items = make([]models.Notification, 0, len(p.Data))
		s.ids = make(map[uint64]struct{}, len(p.Data))
	}
	for _, n := range p.Data {
		if _, dup := s.ids[n.ID]; dup {
			continue
		}
		s.ids[n.ID] = struct{}{}
		s.items = append(s.items, n)
	}
	s.currentPage = page
	s.totalPages = p.TotalPages
	s.state = s.settledState()
	return nil
}

// settledState 请求结束后的状态，调用方持锁
func (s *NotificationStore) settledState() FeedState {
	switch {
	case s.initialLoading:
		return FeedLoading
	case s.loadingMore:
		return FeedLoadingMore
	case s.currentPage > 0:
		return FeedLoaded
	default:
		return FeedIdle
	}
}

// OnScroll 滚动位置越过 80% 且还有下一页时加载更多，返回是否触发了加载
func (s *NotificationStore) OnScroll(ctx context.Context, scrollTop, clientHeight, scrollHeight float64) (bool, error) {
	if scrollHeight <= 0 || (scrollTop+clientHeight)/scrollHeight < scrollThreshold {
		return false, nil
	}
	s.mu.Lock()
	if s.closed || s.initialLoading || s.loadingMore || s.currentPage >= s.totalPages {
		s.mu.Unlock()
		return false, nil
	}
	next := s.currentPage + 1
	s.mu.Unlock()
	return true, s.LoadPage(ctx, next, true)
}

// ReceivePush 合并一条推送通知：已存在则忽略，否则插到最前。返回是否插入。
func (s *NotificationStore) ReceivePush(n models.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, dup := s.ids[n.ID]; dup {
		return false
	}
	s.ids[n.ID] = struct{}{}
	s.items = append([]models.Notification{n}, s.items...)
	return true
}

// MarkRead 立即本地置为已读再请求服务端。
// 失败不回滚也不提示：服务端幂等，下次可再试。
func (s *NotificationStore) MarkRead(ctx context.Context, id uint64) {
	s.mu.Lock()
	flipped := false
	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].IsRead {
				s.items[i].IsRead = true
				flipped = true
			}
			break
		}
	}
	s.mu.Unlock()

	if flipped && s.counter != nil {
		s.counter.Decrement()
	}
	if err := s.API.MarkNotificationRead(ctx, id); err != nil {
		s.logger().Warn("标记已读失败", zap.Uint64("notification_id", id), zap.Error(err))
	}
}

// DeleteOne 删除单条，服务端确认后才移除
func (s *NotificationStore) DeleteOne(ctx context.Context, id uint64) error {
	if err := s.API.DeleteNotification(ctx, id); err != nil {
		s.fail("notification.delete", err, cons.MsgDeleteError)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			delete(s.ids, id)
			break
		}
	}
	return nil
}

// DeleteAll 清空当前用户全部通知
func (s *NotificationStore) DeleteAll(ctx context.Context) error {
	if err := s.API.DeleteAllNotifications(ctx, s.UserID); err != nil {
		s.fail("notification.delete_all", err, cons.MsgDeleteError)
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.items = []models.Notification{}
	s.ids = make(map[uint64]struct{})
	s.totalPages = s.currentPage
	s.mu.Unlock()

	if s.counter != nil {
		s.counter.Set(0)
	}
	return nil
}

// Items 通知快照（最新在前）
func (s *NotificationStore) Items() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// HasMore currentPage < totalPages
func (s *NotificationStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage < s.totalPages
}

func (s *NotificationStore) State() FeedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *NotificationStore) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

func (s *NotificationStore) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPages
}

// Close 卸载：退订推送并丢弃之后返回的请求结果
func (s *NotificationStore) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		sub := s.sub
		s.sub = nil
		s.mu.Unlock()
		if sub != nil {
			if err := sub.Unsubscribe(); err != nil {
				s.logger().Warn("退订通知主题失败", zap.String("topic", sub.Topic()), zap.Error(err))
			}
		}
	})
}
