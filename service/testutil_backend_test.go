package service

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cydxin/social-sdk/alert"
	"github.com/cydxin/social-sdk/api"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeBackend 用 gin 路由模拟后端，并按 "METHOD /route" 统计调用次数
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int
	srv   *httptest.Server
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// waitCalls 等到某路由被调用 n 次
func (b *fakeBackend) waitCalls(t *testing.T, key string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return b.count(key) >= n }, 2*time.Second, 5*time.Millisecond)
}

type testEnv struct {
	svc     *Service
	backend *fakeBackend
	alerts  *alert.Recorder
	logs    *observer.ObservedLogs
}

// newTestEnv 启动假后端，返回以 userID=1 身份连接它的 Service
func newTestEnv(t *testing.T, register func(r *gin.Engine)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &fakeBackend{calls: make(map[string]int)}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		b.mu.Lock()
		b.calls[c.Request.Method+" "+c.FullPath()]++
		b.mu.Unlock()
		c.Next()
	})
	register(r)
	b.srv = httptest.NewServer(r)
	t.Cleanup(b.srv.Close)

	core, logs := observer.New(zap.DebugLevel)
	rec := &alert.Recorder{}
	svc := &Service{
		API:    api.NewClient(api.Config{BaseURL: b.srv.URL, UserID: 1}),
		Alert:  rec,
		Logger: zap.New(core),
		UserID: 1,
	}
	return &testEnv{svc: svc, backend: b, alerts: rec, logs: logs}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response.Success(data))
}

func bizErr(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, response.Error(code, msg))
}

func u64(v uint64) *uint64 { return &v }
