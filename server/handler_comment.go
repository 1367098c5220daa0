package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// -------------------- 评论相关接口 --------------------

// GinHandleAddComment 发表评论或回复
// @Summary 发表评论
// @Description multipart 表单；parentId 指向回复时会挂到其顶级评论下
// @Tags 评论
// @Accept multipart/form-data
// @Produce json
// @Param postId formData int true "帖子ID"
// @Param content formData string false "内容（与图片至少有一个）"
// @Param mentionIds formData []int false "@的用户"
// @Param parentId formData int false "回复的评论ID"
// @Param images formData file false "图片，最多9张"
// @Success 200 {object} response.Response{data=models.Comment} "新评论"
// @Failure 400 {object} response.Response "参数错误"
// @Security UserID
// @Router /comment [post]
func (s *Server) GinHandleAddComment(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	postID, err := strconv.ParseUint(firstValue(form.Value["postId"]), 10, 64)
	if err != nil || postID == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid postId"))
		return
	}
	content := strings.TrimSpace(firstValue(form.Value["content"]))
	images := form.File["images"]
	if content == "" && len(images) == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, cons.MsgEmptyComment))
		return
	}
	if err := checkImages(images); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	mentions, err := parseIDs(form.Value["mentionIds"])
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid mentionIds"))
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

	// 回复：找到被回复的评论，回复的回复挂到顶级评论下
	var parent *models.Comment
	if raw := firstValue(form.Value["parentId"]); raw != "" {
		pid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || pid == 0 {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid parentId"))
			return
		}
		parent, err = s.comments.GetByID(pid)
		if err != nil {
			s.internalError(ctx, err)
			return
		}
		if parent == nil || parent.PostID != postID {
			ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, cons.MsgUnknownParent))
			return
		}
	}

	urls, saved, err := s.saveImages(ctx, images)
	if err != nil {
		s.internalError(ctx, err)
		return
	}

	c := &models.Comment{
		PostID:    postID,
		AuthorID:  uid,
		Content:   content,
		ImageURLs: datatypes.JSONSlice[string](urls),
	}
	if parent != nil {
		top := parent.ID
		if !parent.IsTopLevel() {
			top = *parent.ParentID
		}
		c.ParentID = &top
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		dao := s.comments.WithDB(tx)
		if err := dao.Create(c); err != nil {
			return err
		}
		if c.ParentID != nil {
			return dao.AdjustRepliesCount(*c.ParentID, 1)
		}
		return nil
	})
	if err != nil {
		s.removeFiles(saved)
		s.internalError(ctx, err)
		return
	}

	s.notifyComment(ctx.Request.Context(), uid, post, parent, mentions)
	ctx.JSON(http.StatusOK, response.Success(c))
}

// notifyComment 回复通知被回复者，否则通知帖子作者；@的人另外通知，同一人只通知一次
func (s *Server) notifyComment(ctx context.Context, uid uint64, post *models.Post, parent *models.Comment, mentions []uint64) {
	name := s.actorName(uid)
	target := &Target{Type: "post", ID: post.ID}
	notified := map[uint64]bool{uid: true}

	send := func(to uint64, format string) {
		if notified[to] {
			return
		}
		notified[to] = true
		if _, err := s.notifier.Notify(ctx, to, fmt.Sprintf(format, name), target); err != nil {
			s.logger.Warn("评论通知失败", zap.Uint64("to", to), zap.Error(err))
		}
	}

	if parent != nil {
		send(parent.AuthorID, cons.NoticeReplied)
	} else {
		send(post.UserID, cons.NoticeCommented)
	}
	for _, m := range mentions {
		send(m, cons.NoticeMentioned)
	}
}

// GinHandleListComments 帖子的顶级评论
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param postId path int true "帖子ID"
// @Success 200 {object} response.Response{data=[]models.Comment} "顶级评论，最新在前"
// @Security UserID
// @Router /comment/{postId} [get]
func (s *Server) GinHandleListComments(ctx *gin.Context) {
	postID, ok := uintParam(ctx, "postId")
	if !ok {
		return
	}
	list, err := s.comments.ListTopLevel(postID)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleListReplies 某条评论的回复
// @Summary 回复列表
// @Tags 评论
// @Produce json
// @Param parentId path int true "顶级评论ID"
// @Success 200 {object} response.Response{data=[]models.Comment} "回复，按时间正序"
// @Security UserID
// @Router /comment/replies/{parentId} [get]
func (s *Server) GinHandleListReplies(ctx *gin.Context) {
	parentID, ok := uintParam(ctx, "parentId")
	if !ok {
		return
	}
	list, err := s.comments.ListReplies(parentID)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleDeleteComment 删除评论
// @Summary 删除评论
// @Description 评论作者或帖子作者可删；删除顶级评论会连带删除回复
// @Tags 评论
// @Produce json
// @Param commentId path int true "评论ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 403 {object} response.Response "无权删除"
// @Security UserID
// @Router /comment/{commentId} [delete]
func (s *Server) GinHandleDeleteComment(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uintParam(ctx, "commentId")
	if !ok {
		return
	}

	c, err := s.comments.GetByID(id)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if c == nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, "评论不存在"))
		return
	}
	if c.AuthorID != uid {
		post, err := s.posts.GetByID(c.PostID)
		if err != nil {
			s.internalError(ctx, err)
			return
		}
		if post == nil || post.UserID != uid {
			ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "无权删除该评论"))
			return
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		dao := s.comments.WithDB(tx)
		if err := dao.Delete(c); err != nil {
			return err
		}
		if !c.IsTopLevel() {
			return dao.AdjustRepliesCount(*c.ParentID, -1)
		}
		return nil
	})
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// parseIDs 解析重复字段或逗号分隔的 ID 列表
func parseIDs(vs []string) ([]uint64, error) {
	var out []uint64
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}
