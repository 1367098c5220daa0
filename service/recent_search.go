package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cydxin/social-sdk/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	recentSearchKeyPrefix = "sn:recent_search:"
	// MaxRecentSearches 最近搜索最多保留条数
	MaxRecentSearches = 10
)

// RecentSearchStore 最近点开过的搜索结果。
// 最新在前，按用户 ID 去重，最多 10 条。rdb 为空时只存内存。
// 每次变更后立即持久化；持久化失败只记日志，内存状态照常生效。
type RecentSearchStore struct {
	rdb    *redis.Client
	userID uint64
	log    *zap.Logger

	mu    sync.Mutex
	items []models.UserBrief
}

func NewRecentSearchStore(rdb *redis.Client, userID uint64, logger *zap.Logger) *RecentSearchStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecentSearchStore{rdb: rdb, userID: userID, log: logger, items: []models.UserBrief{}}
}

func (s *RecentSearchStore) key() string {
	return fmt.Sprintf("%s%d", recentSearchKeyPrefix, s.userID)
}

// Load 从存储读取；不存在或内容损坏时视为空列表
func (s *RecentSearchStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		s.items = []models.UserBrief{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load recent searches: %w", err)
	}
	var items []models.UserBrief
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("最近搜索数据损坏，已重置", zap.String("key", s.key()), zap.Error(err))
		s.items = []models.UserBrief{}
		return nil
	}
	s.items = normalizeRecent(items)
	return nil
}

// normalizeRecent 去掉无效与重复项并截断
func normalizeRecent(items []models.UserBrief) []models.UserBrief {
	out := make([]models.UserBrief, 0, len(items))
	seen := make(map[uint64]struct{}, len(items))
	for _, u := range items {
		if u.ID == 0 {
			continue
		}
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
		if len(out) == MaxRecentSearches {
			break
		}
	}
	return out
}

// Add 放到最前；已存在则移到最前
func (s *RecentSearchStore) Add(ctx context.Context, u models.UserBrief) {
	if u.ID == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.UserBrief, 0, len(s.items)+1)
	next = append(next, u)
	for _, it := range s.items {
		if it.ID != u.ID {
			next = append(next, it)
		}
	}
	if len(next) > MaxRecentSearches {
		next = next[:MaxRecentSearches]
	}
	s.items = next
	s.persist(ctx)
}

// Remove 删除一条
func (s *RecentSearchStore) Remove(ctx context.Context, userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.UserBrief, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != userID {
			next = append(next, it)
		}
	}
	if len(next) == len(s.items) {
		return
	}
	s.items = next
	s.persist(ctx)
}

// Clear 清空
func (s *RecentSearchStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []models.UserBrief{}
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, s.key()).Err(); err != nil {
		s.log.Warn("清空最近搜索失败", zap.String("key", s.key()), zap.Error(err))
	}
}

// persist 调用方持锁
func (s *RecentSearchStore) persist(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(s.items)
	if err != nil {
		s.log.Error("序列化最近搜索失败", zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, s.key(), b, 0).Err(); err != nil {
		s.log.Warn("保存最近搜索失败", zap.String("key", s.key()), zap.Error(err))
	}
}

// Items 快照，最新在前
func (s *RecentSearchStore) Items() []models.UserBrief {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserBrief, len(s.items))
	copy(out, s.items)
	return out
}
