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

// -------------------- 点赞相关接口 --------------------

// GinHandleToggleReaction 点赞/取消点赞
// @Summary 切换点赞
// @Description 已点赞则取消，否则点赞；首次点赞会通知帖子作者
// @Tags 点赞
// @Produce json
// @Param postId path int true "帖子ID"
// @Success 200 {object} response.Response{data=models.ReactionState} "切换后的状态"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未识别用户"
// @Security UserID
// @Router /reaction/{postId} [post]
func (s *Server) GinHandleToggleReaction(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	postID, ok := uintParam(ctx, "postId")
	if !ok {
		return
	}

	post, err := s.posts.GetByID(postID)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if post == nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, "帖子不存在"))
		return
	}

	loved, err := s.reactions.Exists(postID, uid)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if loved {
		_, err = s.reactions.Delete(postID, uid)
	} else {
		err = s.reactions.Create(postID, uid)
	}
	if err != nil {
		s.internalError(ctx, err)
		return
	}

	if !loved && post.UserID != uid {
		msg := fmt.Sprintf(cons.NoticeLoved, s.actorName(uid))
		if _, err := s.notifier.Notify(ctx.Request.Context(), post.UserID, msg, &Target{Type: "post", ID: postID}); err != nil {
			s.logger.Warn("点赞通知失败", zap.Uint64("post_id", postID), zap.Error(err))
		}
	}

	cnt, err := s.reactions.Count(postID)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(models.ReactionState{IsLoved: !loved, Count: int(cnt)}))
}

// GinHandleReactionDetail 点赞用户列表
// @Summary 点赞详情
// @Tags 点赞
// @Produce json
// @Param postId path int true "帖子ID"
// @Success 200 {object} response.Response{data=[]models.UserBrief} "点赞用户"
// @Security UserID
// @Router /reaction/{postId} [get]
func (s *Server) GinHandleReactionDetail(ctx *gin.Context) {
	postID, ok := uintParam(ctx, "postId")
	if !ok {
		return
	}
	users, err := s.reactions.ListUsers(postID)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(users))
}

// GinHandleCheckReaction 当前用户是否已点赞
// @Summary 检查点赞
// @Tags 点赞
// @Produce json
// @Param postId path int true "帖子ID"
// @Success 200 {object} response.Response{data=bool} "是否已点赞"
// @Security UserID
// @Router /reaction/check/{postId} [get]
func (s *Server) GinHandleCheckReaction(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	postID, ok := uintParam(ctx, "postId")
	if !ok {
		return
	}
	loved, err := s.reactions.Exists(postID, uid)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(loved))
}
