package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"go.uber.org/zap"
)

const defaultSearchDebounce = 300 * time.Millisecond

// SearchState 搜索框状态快照
type SearchState struct {
	Query       string
	Loading     bool
	HasSearched bool
	Results     []models.UserBrief
}

// UserSearch 输入防抖的用户搜索。
// 只有最后一次输入对应的响应会写入状态，旧查询的结果直接丢弃。
type UserSearch struct {
	*Service
	debounce time.Duration
	recent   *RecentSearchStore

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
	state SearchState
}

// NewUserSearch recent 可为空；debounce <= 0 时默认 300ms
func NewUserSearch(s *Service, recent *RecentSearchStore, debounce time.Duration) *UserSearch {
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &UserSearch{
		Service:  s,
		debounce: debounce,
		recent:   recent,
		ctx:      ctx,
		cancel:   cancel,
		state:    SearchState{Results: []models.UserBrief{}},
	}
}

// Input 输入变化。去空白后为空时立即清空结果，不发请求。
func (u *UserSearch) Input(query string) {
	q := strings.TrimSpace(query)

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ctx.Err() != nil {
		return
	}
	u.seq++
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	u.state.Query = query
	if q == "" {
		u.state.Loading = false
		u.state.HasSearched = false
		u.state.Results = []models.UserBrief{}
		return
	}
	seq := u.seq
	u.timer = time.AfterFunc(u.debounce, func() { u.run(seq, q) })
}

func (u *UserSearch) run(seq uint64, q string) {
	u.mu.Lock()
	if seq != u.seq || u.ctx.Err() != nil {
		u.mu.Unlock()
		return
	}
	u.state.Loading = true
	u.mu.Unlock()

	users, err := u.API.SearchUsers(u.ctx, q)

	u.mu.Lock()
	if seq != u.seq || u.ctx.Err() != nil {
		u.mu.Unlock()
		u.logger().Debug("丢弃过期的搜索结果", zap.String("keyword", q))
		return
	}
	u.state.Loading = false
	if err != nil {
		u.mu.Unlock()
		u.fail("user.search", err, cons.MsgSearchError)
		return
	}
	if users == nil {
		users = []models.UserBrief{}
	}
	u.state.HasSearched = true
	u.state.Results = users
	u.mu.Unlock()
}

// Pick 选中一个搜索结果，记入最近搜索
func (u *UserSearch) Pick(ctx context.Context, user models.UserBrief) {
	if u.recent != nil {
		u.recent.Add(ctx, user)
	}
}

// Recent 最近搜索；没有配置时为空
func (u *UserSearch) Recent() []models.UserBrief {
	if u.recent == nil {
		return []models.UserBrief{}
	}
	return u.recent.Items()
}

func (u *UserSearch) State() SearchState {
	u.mu.Lock()
	defer u.mu.Unlock()
	st := u.state
	st.Results = make([]models.UserBrief, len(u.state.Results))
	copy(st.Results, u.state.Results)
	return st
}

// Close 取消等待中的防抖和在途请求
func (u *UserSearch) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cancel()
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
}
