package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cydxin/social-sdk/errs"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, register func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", UserID: 42})
}

func TestClient_EnvelopeAndIdentity(t *testing.T) {
	var gotUser string
	c := newTestClient(t, func(r *gin.Engine) {
		r.GET("/comment/:postId", func(ctx *gin.Context) {
			gotUser = ctx.GetHeader(HeaderUserID)
			ctx.JSON(http.StatusOK, response.Success([]models.Comment{{ID: 1, PostID: 7, Content: "hi"}}))
		})
	})

	list, err := c.ListComments(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hi", list[0].Content)
	assert.Equal(t, "42", gotUser)
}

func TestClient_ErrorClassification(t *testing.T) {
	c := newTestClient(t, func(r *gin.Engine) {
		r.DELETE("/comment/1", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, response.Error(response.CodePermissionDeny, "无权删除"))
		})
		r.DELETE("/comment/2", func(ctx *gin.Context) {
			ctx.String(http.StatusInternalServerError, "boom")
		})
		r.DELETE("/comment/3", func(ctx *gin.Context) {
			ctx.JSON(http.StatusNotFound, response.Error(response.CodeNotFound, "评论不存在"))
		})
		r.GET("/comment/4", func(ctx *gin.Context) {
			ctx.String(http.StatusOK, "<html>")
		})
		r.DELETE("/comment/5", func(ctx *gin.Context) {
			ctx.Status(http.StatusForbidden)
		})
	})
	ctx := context.Background()

	err := c.DeleteComment(ctx, 1)
	var ae *errs.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, errs.KindServer, ae.Kind)
	assert.Equal(t, response.CodePermissionDeny, ae.Code)
	assert.Equal(t, "无权删除", ae.Message)
	assert.True(t, errs.IsAuthorization(err))

	err = c.DeleteComment(ctx, 2)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, errs.KindServer, ae.Kind)
	assert.Equal(t, http.StatusInternalServerError, ae.Code)
	assert.Empty(t, ae.Message)
	assert.False(t, errs.IsAuthorization(err))

	err = c.DeleteComment(ctx, 3)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, response.CodeNotFound, ae.Code)
	assert.Equal(t, "评论不存在", ae.Message)

	// 403 无业务体时同样识别为权限不足
	err = c.DeleteComment(ctx, 5)
	assert.True(t, errs.IsAuthorization(err))
	assert.True(t, errs.Is(err, errs.KindServer))

	_, err = c.ListComments(ctx, 4)
	assert.True(t, errs.Is(err, errs.KindServer))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL})

	err := c.ToggleReaction(context.Background(), 1)
	assert.True(t, errs.Is(err, errs.KindNetwork))
}

func TestClient_AddCommentMultipart(t *testing.T) {
	var (
		form     map[string][]string
		fileName string
		fileType string
		fileBody []byte
	)
	c := newTestClient(t, func(r *gin.Engine) {
		r.POST("/comment", func(ctx *gin.Context) {
			mf, err := ctx.MultipartForm()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
				return
			}
			form = mf.Value
			if fhs := mf.File["images"]; len(fhs) == 1 {
				fileName = fhs[0].Filename
				fileType = fhs[0].Header.Get("Content-Type")
				if f, err := fhs[0].Open(); err == nil {
					fileBody, _ = io.ReadAll(f)
					_ = f.Close()
				}
			}
			ctx.JSON(http.StatusOK, response.Success(models.Comment{ID: 99, PostID: 7}))
		})
	})

	parent := uint64(3)
	created, err := c.AddComment(context.Background(), AddCommentReq{
		PostID:     7,
		Content:    "look",
		MentionIDs: []uint64{5, 6},
		ParentID:   &parent,
		Images:     []Attachment{{Filename: "cat.png", ContentType: "image/png", Data: []byte("PNG")}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 99, created.ID)

	assert.Equal(t, []string{"7"}, form["postId"])
	assert.Equal(t, []string{"look"}, form["content"])
	assert.Equal(t, []string{"5", "6"}, form["mentionIds"])
	assert.Equal(t, []string{"3"}, form["parentId"])
	assert.Equal(t, "cat.png", fileName)
	assert.Equal(t, "image/png", fileType)
	assert.Equal(t, []byte("PNG"), fileBody)
}

func TestClient_UnreadCountShapes(t *testing.T) {
	bodies := map[string]string{
		"1": `{"code":0,"msg":"success","data":3}`,
		"2": `{"code":0,"msg":"success","data":{"count":4}}`,
		"3": `{"code":0,"msg":"success","data":"5"}`,
		"4": `{"code":0,"msg":"success","data":{"total":1}}`,
	}
	c := newTestClient(t, func(r *gin.Engine) {
		r.GET("/notification/count/:userId", func(ctx *gin.Context) {
			ctx.Data(http.StatusOK, "application/json", []byte(bodies[ctx.Param("userId")]))
		})
	})
	ctx := context.Background()

	for uid, want := range map[uint64]int64{1: 3, 2: 4, 3: 5} {
		n, err := c.UnreadCount(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	_, err := c.UnreadCount(ctx, 4)
	assert.Error(t, err)
}

func TestClient_NotificationsQuery(t *testing.T) {
	var page, size string
	c := newTestClient(t, func(r *gin.Engine) {
		r.GET("/notification/:userId", func(ctx *gin.Context) {
			page, size = ctx.Query("page"), ctx.Query("size")
			ctx.JSON(http.StatusOK, response.Success(models.NotificationPage{
				Data:       []models.Notification{{ID: 1, Message: "m"}},
				TotalPages: 4,
			}))
		})
	})

	p, err := c.ListNotifications(context.Background(), 42, 2, 20)
	require.NoError(t, err)
	assert.Equal(t, "2", page)
	assert.Equal(t, "20", size)
	assert.Equal(t, 4, p.TotalPages)
	assert.Len(t, p.Data, 1)
}

func TestClient_FriendStatus(t *testing.T) {
	c := newTestClient(t, func(r *gin.Engine) {
		r.GET("/friend/status/:userId", func(ctx *gin.Context) {
			if ctx.Param("userId") == "2" {
				ctx.JSON(http.StatusOK, response.Success(gin.H{"status": "REQUESTED_BY_OTHER"}))
				return
			}
			ctx.JSON(http.StatusOK, response.Success(gin.H{"status": "WHATEVER"}))
		})
	})

	st, err := c.FriendStatus(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.FriendStatusRequestedByOther, st)

	_, err = c.FriendStatus(context.Background(), 3)
	assert.Error(t, err)
}

func TestClient_SearchUsersEscapesKeyword(t *testing.T) {
	var kw string
	c := newTestClient(t, func(r *gin.Engine) {
		r.GET("/user/search", func(ctx *gin.Context) {
			kw = ctx.Query("keyword")
			ctx.JSON(http.StatusOK, response.Success(nil))
		})
	})

	users, err := c.SearchUsers(context.Background(), "a&b c")
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, "a&b c", kw)
}
