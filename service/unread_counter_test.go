package service

import (
	"context"
	"testing"
	"time"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadCounter_PushShapes(t *testing.T) {
	nb := &notificationBackend{unread: 4}
	env := newTestEnv(t, nb.register)
	hub := push.NewHub()
	env.svc.Push = hub
	c := NewUnreadCounter(env.svc, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Start(ctx))
	defer c.Close()
	assert.EqualValues(t, 4, c.Count())
	assert.Equal(t, 1, hub.Subscribers(cons.NotificationCountTopic(1)))
	// 完整通知主题与计数主题互不影响
	assert.Equal(t, 0, hub.Subscribers(cons.NotificationTopic(1)))

	topic := cons.NotificationCountTopic(1)
	cases := []struct {
		payload string
		want    int64
	}{
		{`7`, 7},
		{`{"count":3}`, 3},
		{`{"data":{"count":2}}`, 2},
		{`"{\"count\":9}"`, 9},
		{`"5"`, 5},
	}
	for _, tc := range cases {
		require.NoError(t, hub.Publish(ctx, topic, []byte(tc.payload)))
		assert.Equal(t, tc.want, c.Count(), tc.payload)
	}

	// 无法识别的形态丢弃，保持原值
	require.NoError(t, hub.Publish(ctx, topic, []byte(`{"total":1}`)))
	assert.EqualValues(t, 5, c.Count())
	assert.Equal(t, 1, env.logs.FilterMessage("未读数推送格式无法识别").Len())
}

func TestUnreadCounter_PollsAndStops(t *testing.T) {
	nb := &notificationBackend{unread: 1}
	env := newTestEnv(t, nb.register)
	c := NewUnreadCounter(env.svc, 20*time.Millisecond)

	require.NoError(t, c.Start(context.Background()))
	assert.EqualValues(t, 1, c.Count())

	nb.set(func(nb *notificationBackend) { nb.unread = 6 })
	require.Eventually(t, func() bool { return c.Count() == 6 }, 2*time.Second, 5*time.Millisecond)

	c.Close()
	c.Close()
	calls := env.backend.count(routeUnreadCount)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, env.backend.count(routeUnreadCount))
}

func TestUnreadCounter_DecrementFloorsAtZero(t *testing.T) {
	c := NewUnreadCounter(&Service{}, 0)
	c.Set(1)
	c.Decrement()
	c.Decrement()
	assert.EqualValues(t, 0, c.Count())
	c.Set(-3)
	assert.EqualValues(t, 0, c.Count())
}

// blockingChannel Subscribe 阻塞到 gate 关闭
type blockingChannel struct {
	*push.Hub
	entered chan struct{}
	gate    chan struct{}
}

func (b *blockingChannel) Subscribe(topic string, h push.Handler) (push.Subscription, error) {
	close(b.entered)
	<-b.gate
	return b.Hub.Subscribe(topic, h)
}

func TestUnreadCounter_CloseDuringStartReleasesSubscription(t *testing.T) {
	nb := &notificationBackend{unread: 2}
	env := newTestEnv(t, nb.register)
	ch := &blockingChannel{Hub: push.NewHub(), entered: make(chan struct{}), gate: make(chan struct{})}
	env.svc.Push = ch
	c := NewUnreadCounter(env.svc, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()
	<-ch.entered

	c.Close()
	close(ch.gate)
	require.NoError(t, <-done)

	assert.Equal(t, 0, ch.Subscribers(cons.NotificationCountTopic(1)))
	// 不再轮询
	calls := env.backend.count(routeUnreadCount)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, env.backend.count(routeUnreadCount))
	assert.EqualValues(t, 0, c.Count())
}
