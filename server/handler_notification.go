package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// -------------------- 通知相关接口 --------------------

// GinHandleListNotifications 通知分页
// @Summary 通知列表
// @Description 页码从 1 开始，最新在前
// @Tags 通知
// @Produce json
// @Param userId path int true "用户ID（必须是本人）"
// @Param page query int false "页码"
// @Param size query int false "每页数量"
// @Success 200 {object} response.Response{data=models.NotificationPage} "通知分页"
// @Failure 403 {object} response.Response "只能访问自己的数据"
// @Security UserID
// @Router /notification/{userId} [get]
func (s *Server) GinHandleListNotifications(ctx *gin.Context) {
	uid, ok := selfParam(ctx, "userId")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(ctx.Query("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(ctx.Query("size"))
	if size <= 0 {
		size = defaultNotificationPageSize
	}
	if size > maxNotificationPageSize {
		size = maxNotificationPageSize
	}

	list, total, err := s.notifications.ListPage(uid, page, size)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(models.NotificationPage{
		Data:       list,
		TotalPages: totalPages(total, size),
	}))
}

// GinHandleUnreadCount 未读数
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Param userId path int true "用户ID（必须是本人）"
// @Success 200 {object} response.Response{data=models.UnreadCount} "未读数"
// @Security UserID
// @Router /notification/count/{userId} [get]
func (s *Server) GinHandleUnreadCount(ctx *gin.Context) {
	uid, ok := selfParam(ctx, "userId")
	if !ok {
		return
	}
	n, err := s.notifications.CountUnread(uid)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(models.UnreadCount{Count: n}))
}

// GinHandleMarkRead 标记已读
// @Summary 标记通知已读
// @Description 重复标记幂等；状态变化时推送最新未读数
// @Tags 通知
// @Produce json
// @Param notificationId path int true "通知ID"
// @Success 200 {object} response.Response "成功"
// @Security UserID
// @Router /notification/{notificationId} [put]
func (s *Server) GinHandleMarkRead(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uintParam(ctx, "notificationId")
	if !ok {
		return
	}
	changed, err := s.notifications.MarkRead(id, uid, time.Now())
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if changed {
		s.notifier.PublishCount(ctx.Request.Context(), uid)
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleDeleteNotification 删除一条通知
// @Summary 删除通知
// @Tags 通知
// @Produce json
// @Param notificationId path int true "通知ID"
// @Success 200 {object} response.Response "成功"
// @Failure 200 {object} response.Response "通知不存在"
// @Security UserID
// @Router /notification/{notificationId} [delete]
func (s *Server) GinHandleDeleteNotification(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := uintParam(ctx, "notificationId")
	if !ok {
		return
	}
	n, err := s.notifications.Delete(id, uid)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if n == 0 {
		ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, "通知不存在"))
		return
	}
	s.notifier.PublishCount(ctx.Request.Context(), uid)
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleDeleteAllNotifications 清空通知
// @Summary 清空全部通知
// @Tags 通知
// @Produce json
// @Param userId path int true "用户ID（必须是本人）"
// @Success 200 {object} response.Response "成功"
// @Security UserID
// @Router /notification/all/{userId} [delete]
func (s *Server) GinHandleDeleteAllNotifications(ctx *gin.Context) {
	uid, ok := selfParam(ctx, "userId")
	if !ok {
		return
	}
	if err := s.notifications.DeleteAll(uid); err != nil {
		s.internalError(ctx, err)
		return
	}
	s.notifier.PublishCount(ctx.Request.Context(), uid)
	ctx.JSON(http.StatusOK, response.Success(nil))
}

func totalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
