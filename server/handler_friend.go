package server

import (
	"fmt"
	"net/http"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// -------------------- 好友相关接口 --------------------

// peerParam 解析对方 ID 并查出两人的关系行（可能为 nil）
func (s *Server) peerParam(ctx *gin.Context) (uid, peer uint64, row *models.Friendship, ok bool) {
	if uid, ok = currentUser(ctx); !ok {
		return
	}
	if peer, ok = uintParam(ctx, "userId"); !ok {
		return
	}
	if peer == uid {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "不能对自己操作"))
		return uid, peer, nil, false
	}
	row, err := s.friendships.FindPair(uid, peer)
	if err != nil {
		s.internalError(ctx, err)
		return uid, peer, nil, false
	}
	return uid, peer, row, true
}

func stateConflict(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, response.Error(response.CodeStateConflict, msg))
}

// GinHandleFriendStatus 与某用户的关系
// @Summary 好友状态
// @Tags 好友
// @Produce json
// @Param userId path int true "对方用户ID"
// @Success 200 {object} response.Response{data=map[string]string} "{status}"
// @Security UserID
// @Router /friend/status/{userId} [get]
func (s *Server) GinHandleFriendStatus(ctx *gin.Context) {
	uid, _, row, ok := s.peerParam(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, response.Success(gin.H{"status": row.StatusFor(uid)}))
}

// GinHandleSendFriendRequest 发送好友请求
// @Summary 发送好友请求
// @Tags 好友
// @Produce json
// @Param userId path int true "对方用户ID"
// @Success 200 {object} response.Response "成功"
// @Failure 200 {object} response.Response "状态冲突"
// @Security UserID
// @Router /friend/request/{userId} [post]
func (s *Server) GinHandleSendFriendRequest(ctx *gin.Context) {
	uid, peer, row, ok := s.peerParam(ctx)
	if !ok {
		return
	}
	if row != nil {
		if row.Status == models.FriendshipBlocked {
			stateConflict(ctx, cons.MsgBlocked)
			return
		}
		stateConflict(ctx, "已存在好友关系或请求")
		return
	}
	u, err := s.users.GetByID(peer)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if u == nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeUserNotFound, "用户不存在"))
		return
	}

	if err := s.friendships.Create(&models.Friendship{RequesterID: uid, AddresseeID: peer, Status: models.FriendshipPending}); err != nil {
		s.internalError(ctx, err)
		return
	}
	s.notifyFriend(ctx, uid, peer, cons.NoticeFriendRequest)
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleCancelFriendRequest 撤回自己发出的请求
// @Summary 撤回好友请求
// @Tags 好友
// @Produce json
// @Param userId path int true "对方用户ID"
// @Success 200 {object} response.Response "成功"
// @Security UserID
// @Router /friend/request/{userId} [delete]
func (s *Server) GinHandleCancelFriendRequest(ctx *gin.Context) {
	uid, _, row, ok := s.peerParam(ctx)
	if !ok {
		return
	}
	if row.StatusFor(uid) != models.FriendStatusRequestedBySelf {
		stateConflict(ctx, cons.MsgInvalidAction)
		return
	}
	s.deleteFriendship(ctx, row)
}

// GinHandleAcceptFriend 接受对方的请求
// @Summary 接受好友请求
// @Tags 好友
// @Produce json
// @Param userId path int true "对方用户ID"
// @Success 200 {object} response.Response "成功"
// @Security UserID
// @Router /friend/accept/{userId} [post]
func (s *Server) GinHandleAcceptFriend(ctx *gin.Context) {
	uid, peer, row, ok := s.peerParam(ctx)
	if !ok {
		return
	}
	if row.StatusFor(uid) != models.FriendStatusRequestedByOther {
		stateConflict(ctx, cons.MsgInvalidAction)
		return
	}
	if err := s.friendships.UpdateStatus(row.ID, models.FriendshipAccepted); err != nil {
		s.internalError(ctx, err)
		return
	}
	s.notifyFriend(ctx, uid, peer, cons.NoticeFriendAccept)
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleRejectFriend 拒绝对方的请求
// @Summary 拒绝好友请求
// @Tags 好友
// @Produce json
// @Param userId path int true "对方用户ID"
// @Success 200 {object} response.Response "成功"
// @Security UserID
// @Router /friend/reject/{userId} [post]
func (s *Server) GinHandleRejectFriend(ctx *gin.Context) {
	uid, _, row, ok := s.peerParam(ctx)
	if !ok {
		return
	}
	if row.StatusFor(uid) != models.FriendStatusRequestedByOther {
		stateConflict(ctx, cons.MsgInvalidAction)
		return
	}
	s.deleteFriendship(ctx, row)
}

// GinHandleUnfriend 删除好友
// @Summary 删除好友
// @Tags 好友
// @Produce json
// @Param userId path int true "对方用户ID"
// @Success 200 {object} response.Response "成功"
// @Security UserID
// @Router /friend/{userId} [delete]
func (s *Server) GinHandleUnfriend(ctx *gin.Context) {
	uid, _, row, ok := s.peerParam(ctx)
	if !ok {
		return
	}
	if row.StatusFor(uid) != models.FriendStatusAccepted {
		stateConflict(ctx, cons.MsgInvalidAction)
		return
	}
	s.deleteFriendship(ctx, row)
}

func (s *Server) deleteFriendship(ctx *gin.Context, row *models.Friendship) {
	if err := s.friendships.DeleteByID(row.ID); err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

func (s *Server) notifyFriend(ctx *gin.Context, from, to uint64, format string) {
	msg := fmt.Sprintf(format, s.actorName(from))
	if _, err := s.notifier.Notify(ctx.Request.Context(), to, msg, &Target{Type: "user", ID: from}); err != nil {
		s.logger.Warn("好友通知失败", zap.Uint64("to", to), zap.Error(err))
	}
}
