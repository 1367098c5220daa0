package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey gin context 里保存 user id 的 key
	ContextUserIDKey = "user_id"
	// HeaderUserID 调用方身份头
	HeaderUserID = "X-User-ID"
)

// IdentityOptions 可选配置。
type IdentityOptions struct {
	// HeaderKey 默认 X-User-ID
	HeaderKey string
	// QueryKey 默认 uid（浏览器建立 websocket 时无法自定义请求头）
	QueryKey string
	// UserIDKey 默认 user_id
	UserIDKey string
}

func (o *IdentityOptions) withDefaults() IdentityOptions {
	if o == nil {
		return IdentityOptions{HeaderKey: HeaderUserID, QueryKey: "uid", UserIDKey: ContextUserIDKey}
	}
	out := *o
	if out.HeaderKey == "" {
		out.HeaderKey = HeaderUserID
	}
	if out.QueryKey == "" {
		out.QueryKey = "uid"
	}
	if out.UserIDKey == "" {
		out.UserIDKey = ContextUserIDKey
	}
	return out
}

/*
	GinIdentityMiddleware 识别调用方：

- 优先从 X-User-ID 请求头读取
- 如果没有，再从 query 参数读取（默认 uid=xxx）
- 解析成功后写入 gin.Context

只做身份识别，不做鉴权。
使用：router.Use(middleware.GinIdentityMiddleware(nil))
*/
func GinIdentityMiddleware(opt *IdentityOptions) gin.HandlerFunc {
	cfg := opt.withDefaults()

	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(cfg.HeaderKey))
		if raw == "" {
			raw = strings.TrimSpace(c.Query(cfg.QueryKey))
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "missing user id"))
			return
		}

		uid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || uid == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "invalid user id"))
			return
		}

		c.Set(cfg.UserIDKey, uid)
		c.Next()
	}
}

// CurrentUserID 取中间件写入的用户 ID
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	uid, ok := v.(uint64)
	return uid, ok && uid != 0
}
