package service

import (
	"context"
	"sync"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/errs"
	"github.com/cydxin/social-sdk/models"
)

// FriendAction 好友操作
type FriendAction string

const (
	ActionSendRequest   FriendAction = "send_request"
	ActionCancelRequest FriendAction = "cancel_request"
	ActionAccept        FriendAction = "accept"
	ActionReject        FriendAction = "reject"
	ActionUnfriend      FriendAction = "unfriend"
)

type friendTransition struct {
	from models.FriendStatus
	to   models.FriendStatus
	call func(ctx context.Context, m *FriendStatusMachine) error
}

var friendTransitions = map[FriendAction]friendTransition{
	ActionSendRequest: {models.FriendStatusNone, models.FriendStatusRequestedBySelf, func(ctx context.Context, m *FriendStatusMachine) error {
		return m.API.SendFriendRequest(ctx, m.peerID)
	}},
	ActionCancelRequest: {models.FriendStatusRequestedBySelf, models.FriendStatusNone, func(ctx context.Context, m *FriendStatusMachine) error {
		return m.API.CancelFriendRequest(ctx, m.peerID)
	}},
	ActionAccept: {models.FriendStatusRequestedByOther, models.FriendStatusAccepted, func(ctx context.Context, m *FriendStatusMachine) error {
		return m.API.AcceptFriendRequest(ctx, m.peerID)
	}},
	ActionReject: {models.FriendStatusRequestedByOther, models.FriendStatusNone, func(ctx context.Context, m *FriendStatusMachine) error {
		return m.API.RejectFriendRequest(ctx, m.peerID)
	}},
	ActionUnfriend: {models.FriendStatusAccepted, models.FriendStatusNone, func(ctx context.Context, m *FriendStatusMachine) error {
		return m.API.Unfriend(ctx, m.peerID)
	}},
}

// FriendStatusMachine 当前用户与 peerID 的好友关系。
// 所有操作都是悲观的，状态只在服务端确认后变化；所有操作共用一个处理中标记。
type FriendStatusMachine struct {
	*Service
	peerID uint64

	mu         sync.Mutex
	status     models.FriendStatus
	processing bool
	closed     bool
}

func NewFriendStatusMachine(s *Service, peerID uint64, initial models.FriendStatus) *FriendStatusMachine {
	if !initial.Valid() {
		initial = models.FriendStatusNone
	}
	return &FriendStatusMachine{Service: s, peerID: peerID, status: initial}
}

// Load 从服务端读取当前关系
func (m *FriendStatusMachine) Load(ctx context.Context) error {
	st, err := m.API.FriendStatus(ctx, m.peerID)
	if err != nil {
		m.mu.Lock()
		closed := m.closed
		m.mu.Unlock()
		if !closed {
			m.failGeneric("friend.status", err, cons.MsgFriendError)
		}
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed && !m.processing {
		m.status = st
	}
	return nil
}

// Do 执行一次状态迁移。
// 拉黑状态下拒绝一切操作；当前状态不允许的操作返回校验错误且不发请求；
// 已有操作在途时直接返回。
func (m *FriendStatusMachine) Do(ctx context.Context, action FriendAction) error {
	t, ok := friendTransitions[action]
	if !ok {
		return errs.Validation(cons.MsgInvalidAction)
	}

	m.mu.Lock()
	if m.closed || m.processing {
		m.mu.Unlock()
		return nil
	}
	if m.status == models.FriendStatusBlocked {
		m.mu.Unlock()
		return errs.Validation(cons.MsgBlocked)
	}
	if m.status != t.from {
		m.mu.Unlock()
		return errs.Validation(cons.MsgInvalidAction)
	}
	m.processing = true
	m.mu.Unlock()

	err := t.call(ctx, m)

	m.mu.Lock()
	m.processing = false
	if err == nil && !m.closed {
		m.status = t.to
	}
	m.mu.Unlock()

	if err != nil {
		m.fail("friend."+string(action), err, cons.MsgFriendError)
		return err
	}
	return nil
}

func (m *FriendStatusMachine) SendRequest(ctx context.Context) error {
	return m.Do(ctx, ActionSendRequest)
}

func (m *FriendStatusMachine) CancelRequest(ctx context.Context) error {
	return m.Do(ctx, ActionCancelRequest)
}

func (m *FriendStatusMachine) Accept(ctx context.Context) error {
	return m.Do(ctx, ActionAccept)
}

func (m *FriendStatusMachine) Reject(ctx context.Context) error {
	return m.Do(ctx, ActionReject)
}

func (m *FriendStatusMachine) Unfriend(ctx context.Context) error {
	return m.Do(ctx, ActionUnfriend)
}

// Allowed 当前状态下可执行的操作
func (m *FriendStatusMachine) Allowed() []FriendAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processing || m.status == models.FriendStatusBlocked {
		return nil
	}
	var out []FriendAction
	for _, a := range []FriendAction{ActionSendRequest, ActionCancelRequest, ActionAccept, ActionReject, ActionUnfriend} {
		if friendTransitions[a].from == m.status {
			out = append(out, a)
		}
	}
	return out
}

func (m *FriendStatusMachine) PeerID() uint64 { return m.peerID }

func (m *FriendStatusMachine) Status() models.FriendStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Blocked 被拉黑时界面应隐藏好友操作
func (m *FriendStatusMachine) Blocked() bool {
	return m.Status() == models.FriendStatusBlocked
}

func (m *FriendStatusMachine) Processing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processing
}

func (m *FriendStatusMachine) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
