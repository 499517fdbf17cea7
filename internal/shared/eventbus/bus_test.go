package eventbus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus(nil)

	var got []string
	bus.Subscribe("thing.changed", func(ctx context.Context, event Event) error {
		got = append(got, event.Data().(string))
		return nil
	})
	bus.Subscribe("thing.changed", func(ctx context.Context, event Event) error {
		got = append(got, "second:"+event.Data().(string))
		return nil
	})

	err := bus.Publish(context.Background(), NewBasicEvent("thing.changed", "test", "payload"))
	require.NoError(t, err)
	assert.Equal(t, []string{"payload", "second:payload"}, got)
}

func TestPublishIgnoresUnrelatedEventTypes(t *testing.T) {
	bus := NewEventBus(nil)

	called := false
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewBasicEvent("b", "test", nil)))
	assert.False(t, called)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	bus := NewEventBus(nil)

	var secondRan bool
	bus.Subscribe("x", func(ctx context.Context, event Event) error {
		return fmt.Errorf("first handler broke")
	})
	bus.Subscribe("x", func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	})

	err := bus.Publish(context.Background(), NewBasicEvent("x", "test", nil))
	assert.Error(t, err)
	assert.True(t, secondRan)
}

func TestPublishAndForgetSurvivesCancelledContext(t *testing.T) {
	bus := NewEventBus(nil)

	delivered := make(chan struct{})
	bus.Subscribe("x", func(ctx context.Context, event Event) error {
		assert.NoError(t, ctx.Err(), "handler context must outlive the request context")
		close(delivered)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.PublishAndForget(ctx, NewBasicEvent("x", "test", nil))

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("x", func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount("x"))

	bus.Unsubscribe("x")
	assert.Equal(t, 0, bus.GetSubscriberCount("x"))
}
