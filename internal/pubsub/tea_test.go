package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReturnsEvent(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()
	ctx := context.Background()
	ch := b.Subscribe(ctx)

	b.Publish(LogEvent, "line")

	msg := ListenCmd(ctx, ch)()
	event, ok := msg.(Event[string])
	require.True(t, ok, "got %T", msg)
	require.Equal(t, "line", event.Payload)
}

func TestListenCmd_NilWhenDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Nil(t, ListenCmd(ctx, make(chan Event[string]))())

	closed := make(chan Event[string])
	close(closed)
	require.Nil(t, ListenCmd(context.Background(), closed)())
}

func TestContinuousListener_ReissuesOnSameSubscription(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()
	l := NewContinuousListener[int](context.Background(), b)
	require.Equal(t, 1, b.SubscriberCount())

	b.Publish(ScrollStarted, 1)
	b.Publish(ScrollSettled, 2)

	first := l.Listen()().(Event[int])
	second := l.Listen()().(Event[int])
	require.Equal(t, 1, first.Payload)
	require.Equal(t, 2, second.Payload)
	require.Equal(t, 1, b.SubscriberCount(), "listening again does not resubscribe")
}

func TestContinuousListener_StopsWithContext(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	l := NewContinuousListener[int](ctx, b)

	cancel()
	require.Nil(t, l.Listen()())
}
