package service

import (
	"context"
	"sync"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"go.uber.org/zap"
)

// ReactionToggle 单个帖子的点赞开关。
// Toggle 乐观更新，失败时恢复到请求前的快照；同一时刻只允许一个 Toggle 在途。
type ReactionToggle struct {
	*Service
	postID uint64

	mu            sync.Mutex
	state         models.ReactionState
	toggling      bool
	loadingDetail bool
	closed        bool
}

func NewReactionToggle(s *Service, postID uint64, initial models.ReactionState) *ReactionToggle {
	if initial.Count < 0 {
		initial.Count = 0
	}
	return &ReactionToggle{Service: s, postID: postID, state: initial}
}

func (r *ReactionToggle) PostID() uint64 { return r.postID }

// Toggle 切换点赞。请求在途时直接返回当前状态，不排队。
func (r *ReactionToggle) Toggle(ctx context.Context) (models.ReactionState, error) {
	r.mu.Lock()
	if r.closed || r.toggling {
		cur := r.state
		r.mu.Unlock()
		return cur, nil
	}
	r.toggling = true
	snapshot := r.state
	if r.state.IsLoved {
		r.state.IsLoved = false
		if r.state.Count > 0 {
			r.state.Count--
		}
	} else {
		r.state.IsLoved = true
		r.state.Count++
	}
	r.mu.Unlock()

	err := r.API.ToggleReaction(ctx, r.postID)

	r.mu.Lock()
	r.toggling = false
	if err != nil && !r.closed {
		r.state = snapshot
	}
	cur := r.state
	r.mu.Unlock()

	if err != nil {
		r.fail("reaction.toggle", err, cons.MsgReactionError)
		return cur, err
	}
	return cur, nil
}

// ViewDetail 点赞用户列表，只读，不影响 Toggle 状态
func (r *ReactionToggle) ViewDetail(ctx context.Context) ([]models.UserBrief, error) {
	r.mu.Lock()
	if r.loadingDetail {
		r.mu.Unlock()
		return nil, ErrInFlight
	}
	r.loadingDetail = true
	r.mu.Unlock()

	users, err := r.API.ReactionDetail(ctx, r.postID)

	r.mu.Lock()
	r.loadingDetail = false
	r.mu.Unlock()

	if err != nil {
		r.fail("reaction.detail", err, cons.MsgReactionError)
		return nil, err
	}
	if users == nil {
		users = []models.UserBrief{}
	}
	return users, nil
}

// Refresh 查询自己是否已点赞，只更新 IsLoved；Toggle 在途时不覆盖
func (r *ReactionToggle) Refresh(ctx context.Context) error {
	loved, err := r.API.CheckReaction(ctx, r.postID)
	if err != nil {
		r.logger().Warn("查询点赞状态失败", zap.Uint64("post_id", r.postID), zap.Error(err))
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed && !r.toggling {
		r.state.IsLoved = loved
	}
	return nil
}

// State 当前状态快照
func (r *ReactionToggle) State() models.ReactionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Toggling 是否有 Toggle 在途
func (r *ReactionToggle) Toggling() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toggling
}

func (r *ReactionToggle) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
