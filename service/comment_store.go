package service

import (
	"context"
	"strings"
	"sync"

	"github.com/cydxin/social-sdk/api"
	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/errs"
	"github.com/cydxin/social-sdk/models"
	"go.uber.org/zap"
)

// CommentStore 某帖子的顶级评论 + 按需加载的回复分组。
//
// 策略：
// - 发布评论是悲观的：服务端确认前不改本地状态。
// - 回复按需加载，同一评论的加载请求在途时重复调用直接忽略。
// - 收起回复不丢弃缓存，再次展开不发请求。
type CommentStore struct {
	*Service

	mu             sync.Mutex
	postID         uint64
	comments       []models.Comment
	groups         map[uint64]*models.ReplyGroup
	loadingReplies keyedFlight
	// 加载在途期间有新回复提交，返回后需要再拉一次
	staleReplies map[uint64]bool
	closed       bool
}

func NewCommentStore(s *Service) *CommentStore {
	return &CommentStore{
		Service:        s,
		groups:         make(map[uint64]*models.ReplyGroup),
		loadingReplies: make(keyedFlight),
		staleReplies:   make(map[uint64]bool),
	}
}

// SubmitCommentReq 发布评论/回复
type SubmitCommentReq struct {
	PostID     uint64           `validate:"required"`
	Content    string           `validate:"max=2000"`
	Images     []api.Attachment `validate:"max=9,dive"`
	ParentID   *uint64
	MentionIDs []uint64
}

// CanDelete 作者或帖子作者可删除。只用于界面展示，真正的权限由服务端校验。
func CanDelete(c models.Comment, viewerID, postAuthorID uint64) bool {
	return viewerID != 0 && (c.AuthorID == viewerID || postAuthorID == viewerID)
}

// LoadComments 整体替换顶级评论列表；失败时保留原列表
func (s *CommentStore) LoadComments(ctx context.Context, postID uint64) error {
	list, err := s.API.ListComments(ctx, postID)
	if err != nil {
		if !s.isClosed() {
			s.failGeneric("comment.load", err, cons.MsgLoadCommentsError)
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if postID != s.postID {
		// 换帖子了，旧的回复缓存全部作废
		s.postID = postID
		s.groups = make(map[uint64]*models.ReplyGroup)
		s.staleReplies = make(map[uint64]bool)
	}
	if list == nil {
		list = []models.Comment{}
	}
	s.comments = list
	return nil
}

// SubmitComment 发布评论或回复。
// 内容（去空白后）和图片至少有一个，否则本地直接返回校验错误，不发请求。
// 回复的 ParentID 若指向一条回复，会被展平到它的顶级评论下。
func (s *CommentStore) SubmitComment(ctx context.Context, req SubmitCommentReq) (*models.Comment, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Images) == 0 {
		return nil, errs.Validation(cons.MsgEmptyComment)
	}

	var parentID *uint64
	if req.ParentID != nil {
		pid, ok := s.resolveParent(*req.ParentID)
		if !ok {
			return nil, errs.Validation(cons.MsgUnknownParent)
		}
		parentID = &pid
	}

	created, err := s.API.AddComment(ctx, api.AddCommentReq{
		PostID:     req.PostID,
		Content:    strings.TrimSpace(req.Content),
		MentionIDs: req.MentionIDs,
		ParentID:   parentID,
		Images:     req.Images,
	})
	if err != nil {
		subErr := errs.Submission(err, cons.MsgSubmitError)
		s.fail("comment.submit", err, cons.MsgSubmitError)
		return nil, subErr
	}

	if parentID == nil {
		// 顶级评论：顺序与回复数以服务端为准，整体重新拉取
		_ = s.LoadComments(ctx, req.PostID)
		return created, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return created, nil
	}
	for i := range s.comments {
		if s.comments[i].ID == *parentID {
			s.comments[i].RepliesCount++
			break
		}
	}
	reload := false
	if s.loadingReplies.busy(*parentID) {
		// 在途的结果不含这条回复，等它返回后再拉一次
		s.staleReplies[*parentID] = true
	} else if g := s.groups[*parentID]; g != nil && g.Loaded {
		reload = true
	}
	s.mu.Unlock()

	if reload {
		_ = s.LoadReplies(ctx, *parentID)
	}
	return created, nil
}

// resolveParent 返回回复应挂载的顶级评论 ID
func (s *CommentStore) resolveParent(id uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.ID == id {
			return id, true
		}
	}
	for gid, g := range s.groups {
		for _, r := range g.Items {
			if r.ID == id {
				if r.ParentID != nil {
					return *r.ParentID, true
				}
				return gid, true
			}
		}
	}
	return 0, false
}

// LoadReplies 加载某条顶级评论的回复。
// 同一评论请求在途时再次调用是空操作；失败时分组状态不变。
// 在途期间提交了新回复时，返回后会再拉一次，避免旧结果覆盖缓存。
func (s *CommentStore) LoadReplies(ctx context.Context, commentID uint64) error {
	s.mu.Lock()
	if s.closed || !s.loadingReplies.tryAcquire(commentID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	var items []models.Comment
	var err error
	for {
		items, err = s.API.ListReplies(ctx, commentID)
		s.mu.Lock()
		if err != nil || s.closed || !s.staleReplies[commentID] {
			break
		}
		delete(s.staleReplies, commentID)
		s.mu.Unlock()
	}

	s.loadingReplies.release(commentID)
	delete(s.staleReplies, commentID)
	if err != nil {
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			s.failGeneric("comment.replies", err, cons.MsgLoadRepliesError)
		}
		return err
	}
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if items == nil {
		items = []models.Comment{}
	}
	g := s.group(commentID)
	g.Items = items
	g.Loaded = true
	g.Expanded = true
	return nil
}

// ToggleReplies 展开/收起回复。
// 收起保留缓存；已加载过的分组再次展开直接用缓存。
func (s *CommentStore) ToggleReplies(ctx context.Context, commentID uint64) error {
	s.mu.Lock()
	if g, ok := s.groups[commentID]; ok {
		if g.Expanded {
			g.Expanded = false
			s.mu.Unlock()
			return nil
		}
		if g.Loaded {
			g.Expanded = true
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()
	return s.LoadReplies(ctx, commentID)
}

// DeleteComment 删除评论，服务端确认后再从所在列表移除
func (s *CommentStore) DeleteComment(ctx context.Context, commentID uint64) error {
	if err := s.API.DeleteComment(ctx, commentID); err != nil {
		s.fail("comment.delete", err, cons.MsgDeleteError)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for i, c := range s.comments {
		if c.ID == commentID {
			s.comments = append(s.comments[:i:i], s.comments[i+1:]...)
			delete(s.groups, commentID)
			return nil
		}
	}
	for gid, g := range s.groups {
		for i, r := range g.Items {
			if r.ID != commentID {
				continue
			}
			g.Items = append(g.Items[:i:i], g.Items[i+1:]...)
			for j := range s.comments {
				if s.comments[j].ID == gid && s.comments[j].RepliesCount > 0 {
					s.comments[j].RepliesCount--
					break
				}
			}
			return nil
		}
	}
	s.logger().Debug("删除的评论不在本地列表中", zap.Uint64("comment_id", commentID))
	return nil
}

func (s *CommentStore) group(commentID uint64) *models.ReplyGroup {
	g, ok := s.groups[commentID]
	if !ok {
		g = &models.ReplyGroup{CommentID: commentID}
		s.groups[commentID] = g
	}
	return g
}

// PostID 当前加载的帖子
func (s *CommentStore) PostID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postID
}

// Comments 顶级评论快照
func (s *CommentStore) Comments() []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// Comment 按 ID 取顶级评论
func (s *CommentStore) Comment(id uint64) (models.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.ID == id {
			return c, true
		}
	}
	return models.Comment{}, false
}

// Replies 回复分组快照；未加载过时返回空分组
func (s *CommentStore) Replies(commentID uint64) models.ReplyGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[commentID]
	if !ok {
		return models.ReplyGroup{CommentID: commentID}
	}
	out := *g
	out.Items = make([]models.Comment, len(g.Items))
	copy(out.Items, g.Items)
	return out
}

// LoadingReplies 某评论的回复是否正在加载
func (s *CommentStore) LoadingReplies(commentID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingReplies.busy(commentID)
}

func (s *CommentStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close 卸载：之后返回的请求结果不再写入状态，也不再提示
func (s *CommentStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
