package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SubscribePublishUnsubscribe(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	var got []string
	sub, err := h.Subscribe("/topic/a", func(topic string, payload []byte) {
		got = append(got, topic+":"+string(payload))
	})
	require.NoError(t, err)
	assert.Equal(t, "/topic/a", sub.Topic())

	require.NoError(t, h.Publish(ctx, "/topic/a", []byte("1")))
	require.NoError(t, h.Publish(ctx, "/topic/b", []byte("ignored")))
	assert.Equal(t, []string{"/topic/a:1"}, got)
	assert.Equal(t, 1, h.Subscribers("/topic/a"))

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe()) // 重复退订无副作用
	assert.Equal(t, 0, h.Subscribers("/topic/a"))

	require.NoError(t, h.Publish(ctx, "/topic/a", []byte("2")))
	assert.Len(t, got, 1)
}

func TestHub_Validation(t *testing.T) {
	h := NewHub()
	_, err := h.Subscribe("", func(string, []byte) {})
	assert.ErrorIs(t, err, ErrEmptyTopic)
	_, err = h.Subscribe("/t", nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	require.NoError(t, h.Close())
	_, err = h.Subscribe("/t", func(string, []byte) {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, h.Publish(context.Background(), "/t", nil), ErrClosed)
}
