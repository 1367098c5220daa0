package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cydxin/social-sdk/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routeSearchUsers = "GET /user/search"

type searchBackend struct {
	mu       sync.Mutex
	users    []models.UserBrief
	keywords []string
	slow     map[string]chan struct{} // 指定关键字阻塞到 channel 关闭
}

func (sb *searchBackend) register(r *gin.Engine) {
	r.GET("/user/search", func(c *gin.Context) {
		kw := c.Query("keyword")
		sb.mu.Lock()
		sb.keywords = append(sb.keywords, kw)
		gate := sb.slow[kw]
		sb.mu.Unlock()
		if gate != nil {
			<-gate
		}
		out := []models.UserBrief{}
		for _, u := range sb.users {
			if strings.Contains(u.Username, kw) {
				out = append(out, u)
			}
		}
		ok(c, out)
	})
}

func (sb *searchBackend) searched() []string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return append([]string(nil), sb.keywords...)
}

func TestUserSearch_ZeroResults(t *testing.T) {
	sb := &searchBackend{users: []models.UserBrief{{ID: 2, Username: "bob"}}}
	env := newTestEnv(t, sb.register)
	s := NewUserSearch(env.svc, nil, 20*time.Millisecond)
	defer s.Close()

	s.Input("an")
	require.Eventually(t, func() bool { return s.State().HasSearched }, 2*time.Second, 5*time.Millisecond)

	st := s.State()
	assert.Equal(t, "an", st.Query)
	assert.False(t, st.Loading)
	assert.NotNil(t, st.Results)
	assert.Empty(t, st.Results)
}

func TestUserSearch_DebounceCollapsesTyping(t *testing.T) {
	sb := &searchBackend{users: []models.UserBrief{{ID: 1, Username: "ann"}, {ID: 2, Username: "andy"}}}
	env := newTestEnv(t, sb.register)
	s := NewUserSearch(env.svc, nil, 50*time.Millisecond)
	defer s.Close()

	s.Input("a")
	s.Input("an")
	s.Input("ann")
	require.Eventually(t, func() bool { return s.State().HasSearched }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"ann"}, sb.searched())
	assert.Equal(t, []uint64{1}, ids(s.State().Results))
}

func TestUserSearch_EmptyQueryClearsWithoutNetwork(t *testing.T) {
	sb := &searchBackend{users: []models.UserBrief{{ID: 1, Username: "ann"}}}
	env := newTestEnv(t, sb.register)
	s := NewUserSearch(env.svc, nil, 10*time.Millisecond)
	defer s.Close()

	s.Input("ann")
	require.Eventually(t, func() bool { return len(s.State().Results) == 1 }, 2*time.Second, 5*time.Millisecond)

	s.Input("   ")
	st := s.State()
	assert.False(t, st.HasSearched)
	assert.Empty(t, st.Results)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, env.backend.count(routeSearchUsers))
}

func TestUserSearch_StaleResponseDropped(t *testing.T) {
	gate := make(chan struct{})
	sb := &searchBackend{
		users: []models.UserBrief{{ID: 1, Username: "ann"}, {ID: 2, Username: "bob"}},
		slow:  map[string]chan struct{}{"ann": gate},
	}
	env := newTestEnv(t, sb.register)
	s := NewUserSearch(env.svc, nil, 10*time.Millisecond)
	defer s.Close()

	s.Input("ann")
	env.backend.waitCalls(t, routeSearchUsers, 1)
	assert.True(t, s.State().Loading)

	s.Input("bob")
	require.Eventually(t, func() bool {
		st := s.State()
		return st.HasSearched && len(st.Results) == 1 && st.Results[0].ID == 2
	}, 2*time.Second, 5*time.Millisecond)

	close(gate)
	time.Sleep(30 * time.Millisecond)
	st := s.State()
	assert.Equal(t, "bob", st.Query)
	assert.Equal(t, []uint64{2}, ids(st.Results))
}

func TestUserSearch_PickRecordsRecent(t *testing.T) {
	_, rdb := newTestRedis(t)
	env := newTestEnv(t, (&searchBackend{}).register)
	recent := NewRecentSearchStore(rdb, 1, env.svc.Logger)
	s := NewUserSearch(env.svc, recent, 0)
	defer s.Close()
	ctx := context.Background()

	s.Pick(ctx, models.UserBrief{ID: 9, Username: "zoe"})
	s.Pick(ctx, models.UserBrief{ID: 8, Username: "yan"})
	s.Pick(ctx, models.UserBrief{ID: 9, Username: "zoe"})
	assert.Equal(t, []uint64{9, 8}, ids(s.Recent()))

	reloaded := NewRecentSearchStore(rdb, 1, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []uint64{9, 8}, ids(reloaded.Items()))
}
