package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cydxin/social-sdk/middleware"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUser 取调用方 ID，缺失时直接写 401
func currentUser(ctx *gin.Context) (uint64, bool) {
	uid, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return 0, false
	}
	return uid, true
}

// uintParam 解析路径参数，非法时直接写 400
func uintParam(ctx *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || v == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid "+name))
		return 0, false
	}
	return v, true
}

// selfParam 路径里的 userId 必须是调用方本人
func selfParam(ctx *gin.Context, name string) (uint64, bool) {
	uid, ok := currentUser(ctx)
	if !ok {
		return 0, false
	}
	target, ok := uintParam(ctx, name)
	if !ok {
		return 0, false
	}
	if target != uid {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "只能访问自己的数据"))
		return 0, false
	}
	return uid, true
}

func (s *Server) internalError(ctx *gin.Context, err error) {
	s.logger.Error("请求处理失败",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.FullPath()),
		zap.Error(err))
	ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
}

// actorName 通知文案里展示的名字，查不到时用 ID 兜底
func (s *Server) actorName(uid uint64) string {
	u, err := s.users.GetByID(uid)
	if err != nil || u == nil {
		return fmt.Sprintf("用户%d", uid)
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}
