package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cydxin/social-sdk/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func ids(users []models.UserBrief) []uint64 {
	out := make([]uint64, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestRecentSearchStore_OrderDedupAndCap(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	s := NewRecentSearchStore(rdb, 1, nil)
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Items())

	for i := uint64(1); i <= 12; i++ {
		s.Add(ctx, models.UserBrief{ID: i, Username: fmt.Sprintf("u%d", i)})
	}
	assert.Equal(t, []uint64{12, 11, 10, 9, 8, 7, 6, 5, 4, 3}, ids(s.Items()))

	// 再次添加移到最前，不重复
	s.Add(ctx, models.UserBrief{ID: 5, Username: "u5"})
	assert.Equal(t, []uint64{5, 12, 11, 10, 9, 8, 7, 6, 4, 3}, ids(s.Items()))

	s.Add(ctx, models.UserBrief{})
	assert.Len(t, s.Items(), MaxRecentSearches)

	s.Remove(ctx, 12)
	assert.Equal(t, []uint64{5, 11, 10, 9, 8, 7, 6, 4, 3}, ids(s.Items()))
}

func TestRecentSearchStore_PersistsAcrossInstances(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	a := NewRecentSearchStore(rdb, 7, nil)
	a.Add(ctx, models.UserBrief{ID: 1, Username: "ann"})
	a.Add(ctx, models.UserBrief{ID: 2, Username: "andy"})

	raw, err := mr.Get("sn:recent_search:7")
	require.NoError(t, err)
	var stored []models.UserBrief
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, []uint64{2, 1}, ids(stored))

	b := NewRecentSearchStore(rdb, 7, nil)
	require.NoError(t, b.Load(ctx))
	assert.Equal(t, []uint64{2, 1}, ids(b.Items()))

	// 其他用户互不影响
	other := NewRecentSearchStore(rdb, 8, nil)
	require.NoError(t, other.Load(ctx))
	assert.Empty(t, other.Items())

	b.Clear(ctx)
	assert.Empty(t, b.Items())
	assert.False(t, mr.Exists("sn:recent_search:7"))
}

func TestRecentSearchStore_CorruptDataLoadsEmpty(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("sn:recent_search:3", "{not json"))

	s := NewRecentSearchStore(rdb, 3, nil)
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Items())
}

func TestRecentSearchStore_MemoryOnly(t *testing.T) {
	s := NewRecentSearchStore(nil, 1, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	s.Add(ctx, models.UserBrief{ID: 3})
	s.Add(ctx, models.UserBrief{ID: 4})
	assert.Equal(t, []uint64{4, 3}, ids(s.Items()))
	s.Clear(ctx)
	assert.Empty(t, s.Items())
}
