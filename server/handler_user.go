package server

import (
	"net/http"

	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
)

const searchLimit = 20

// GinHandleSearchUsers 用户搜索
// @Summary 搜索用户
// @Description 按用户名/昵称模糊匹配；空关键字返回空列表
// @Tags 用户
// @Produce json
// @Param keyword query string true "关键字"
// @Success 200 {object} response.Response{data=[]models.UserBrief} "匹配的用户"
// @Security UserID
// @Router /user/search [get]
func (s *Server) GinHandleSearchUsers(ctx *gin.Context) {
	users, err := s.users.Search(ctx.Query("keyword"), searchLimit)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(users))
}

// GinHandleWs 建立推送连接
// @Summary WebSocket 推送
// @Description 浏览器无法设置请求头时用 ?uid= 传身份；连接后发送 subscribe 帧订阅自己的通知主题
// @Tags 推送
// @Param uid query int false "用户ID"
// @Success 101 "Switching Protocols"
// @Security UserID
// @Router /ws [get]
func (s *Server) GinHandleWs(ctx *gin.Context) {
	uid, ok := currentUser(ctx)
	if !ok {
		return
	}
	s.Hub.ServeWS(ctx.Writer, ctx.Request, uid)
}
