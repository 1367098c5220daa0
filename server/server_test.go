package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/push"
	"github.com/cydxin/social-sdk/repository"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock := newMockDB(t)
	s := New(db, WithUploadDir(t.TempDir(), "/uploads"))
	s.Start()
	t.Cleanup(s.Stop)
	return s, mock, s.Handler()
}

func doRequest(h http.Handler, method, path string, uid string) (*httptest.ResponseRecorder, response.Envelope) {
	req := httptest.NewRequest(method, path, nil)
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var env response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestServer_IdentityRequired(t *testing.T) {
	_, _, h := newTestServer(t)

	w, env := doRequest(h, http.MethodGet, "/comment/1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeTokenInvalid, env.Code)
}

func TestServer_NotificationsOnlyForSelf(t *testing.T) {
	_, mock, h := newTestServer(t)

	for _, path := range []string{"/notification/2", "/notification/count/2"} {
		w, env := doRequest(h, http.MethodGet, path, "1")
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, response.CodePermissionDeny, env.Code, path)
	}
	w, _ := doRequest(h, http.MethodDelete, "/notification/all/2", "1")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_ListNotificationsTotalPages(t *testing.T) {
	_, mock, h := newTestServer(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sn_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery("SELECT \\* FROM `sn_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "message", "is_read"}).
			AddRow(41, 1, "a", false).
			AddRow(40, 1, "b", true))

	w, env := doRequest(h, http.MethodGet, "/notification/1?page=3&size=20", "1")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, response.CodeSuccess, env.Code)

	var page models.NotificationPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_FriendStatusFromViewer(t *testing.T) {
	_, mock, h := newTestServer(t)

	mock.ExpectQuery("SELECT \\* FROM `sn_friendship`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "addressee_id", "status"}).AddRow(1, 2, 1, models.FriendshipPending))

	_, env := doRequest(h, http.MethodGet, "/friend/status/2", "1")
	require.Equal(t, response.CodeSuccess, env.Code)
	var body struct {
		Status models.FriendStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, models.FriendStatusRequestedByOther, body.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_FriendActionConflict(t *testing.T) {
	_, mock, h := newTestServer(t)

	// 没有关系时不能接受
	mock.ExpectQuery("SELECT \\* FROM `sn_friendship`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "addressee_id", "status"}))

	_, env := doRequest(h, http.MethodPost, "/friend/accept/2", "1")
	assert.Equal(t, response.CodeStateConflict, env.Code)
	assert.Equal(t, cons.MsgInvalidAction, env.Msg)

	w, env := doRequest(h, http.MethodPost, "/friend/request/1", "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeParamError, env.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_DeleteCommentPermission(t *testing.T) {
	_, mock, h := newTestServer(t)

	mock.ExpectQuery("SELECT \\* FROM `sn_comment`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "author_id"}).AddRow(3, 9, 5))
	mock.ExpectQuery("SELECT \\* FROM `sn_post`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(9, 6))

	w, env := doRequest(h, http.MethodDelete, "/comment/3", "1")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.CodePermissionDeny, env.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_SearchEmptyKeyword(t *testing.T) {
	_, mock, h := newTestServer(t)

	_, env := doRequest(h, http.MethodGet, "/user/search?keyword=%20", "1")
	require.Equal(t, response.CodeSuccess, env.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordPublisher struct {
	mu   sync.Mutex
	msgs map[string][]byte
}

func (p *recordPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.msgs == nil {
		p.msgs = map[string][]byte{}
	}
	p.msgs[topic] = payload
	return nil
}

func TestNotifier_NotifyPublishesNotificationAndCount(t *testing.T) {
	db, mock := newMockDB(t)
	pub := &recordPublisher{}
	n := NewNotifier(repository.NewNotificationDAO(db), pub, nil)

	mock.ExpectExec("INSERT INTO `sn_notification`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sn_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	row, err := n.Notify(context.Background(), 7, "ann 赞了你的帖子", &Target{Type: "post", ID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 5, row.ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	var got models.Notification
	require.NoError(t, json.Unmarshal(pub.msgs[cons.NotificationTopic(7)], &got))
	assert.EqualValues(t, 5, got.ID)
	assert.Equal(t, "ann 赞了你的帖子", got.Message)
	assert.JSONEq(t, `{"type":"post","id":1}`, string(got.Target))

	cnt, err := push.ParseCount(pub.msgs[cons.NotificationCountTopic(7)])
	require.NoError(t, err)
	assert.EqualValues(t, 3, cnt.Count)
	assert.Equal(t, push.ShapeObject, cnt.Shape)
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{41, 20, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, totalPages(tc.total, tc.size), "%d/%d", tc.total, tc.size)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "2,3", " ", "4 "})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 4}, ids)

	_, err = parseIDs([]string{"x"})
	assert.Error(t, err)
}

func TestServer_SwaggerDoc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _ := newMockDB(t)
	h := New(db, WithSwagger("")).Handler()

	// 文档不需要身份
	w, _ := doRequest(h, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Social SDK API", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/notification/count/{userId}")

	// 未开启时不挂载
	_, _, plain := newTestServer(t)
	w, _ = doRequest(plain, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
