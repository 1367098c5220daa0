package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestWs(t *testing.T, srv *httptest.Server, uid string) *push.WsChannel {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	h := http.Header{}
	h.Set("X-User-ID", uid)
	ch, err := push.DialWs(context.Background(), url, h, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestWsHub_SubscribeAndPublish(t *testing.T) {
	s, _, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ch := dialTestWs(t, srv, "7")
	topic := cons.NotificationTopic(7)
	got := make(chan []byte, 4)
	sub, err := ch.Subscribe(topic, func(_ string, payload []byte) { got <- payload })
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Hub.Subscribers(topic) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Hub.Publish(context.Background(), topic, []byte(`{"id":1,"message":"hi"}`)))
	require.NoError(t, s.Hub.Publish(context.Background(), topic, []byte(`{"id":2,"message":"again"}`)))

	// 每条消息一帧，顺序保持
	for _, want := range []string{`{"id":1,"message":"hi"}`, `{"id":2,"message":"again"}`} {
		select {
		case p := <-got:
			assert.JSONEq(t, want, string(p))
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	}

	require.NoError(t, sub.Unsubscribe())
	require.Eventually(t, func() bool { return s.Hub.Subscribers(topic) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWsHub_RejectsOtherUsersTopic(t *testing.T) {
	s, _, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ch := dialTestWs(t, srv, "7")
	own := cons.NotificationCountTopic(7)
	other := cons.NotificationTopic(8)

	_, err := ch.Subscribe(other, func(string, []byte) {})
	require.NoError(t, err)
	_, err = ch.Subscribe(own, func(string, []byte) {})
	require.NoError(t, err)

	// 帧按顺序处理：自己的主题生效时，前面越权的订阅已被拒绝
	require.Eventually(t, func() bool { return s.Hub.Subscribers(own) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Hub.Subscribers(other))
}

func TestWsHub_DisconnectReleasesSubscriptions(t *testing.T) {
	s, _, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ch := dialTestWs(t, srv, "3")
	topic := cons.NotificationTopic(3)
	_, err := ch.Subscribe(topic, func(string, []byte) {})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Hub.Subscribers(topic) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ch.Close())
	require.Eventually(t, func() bool { return s.Hub.Subscribers(topic) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWsHub_RequiresIdentity(t *testing.T) {
	_, _, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, err := push.DialWs(context.Background(), url, nil, nil)
	assert.Error(t, err)

	ch, err := push.DialWs(context.Background(), url+"?uid=5", nil, nil)
	require.NoError(t, err)
	_ = ch.Close()
}
