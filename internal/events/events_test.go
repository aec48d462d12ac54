package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainpass/chainpass-api/internal/events"
	"github.com/chainpass/chainpass-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := events.NewBus()

	first, cancelFirst := bus.Subscribe()
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	require.NoError(t, bus.BroadcastTicketsChanged(context.Background()))

	for _, ch := range []<-chan string{first, second} {
		select {
		case signal := <-ch:
			assert.Equal(t, events.TicketsChanged, signal)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the signal")
		}
	}
}

func TestBusDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := events.NewBus()

	_, cancel := bus.Subscribe()
	defer cancel()

	ctx := context.Background()
	// Buffer holds one signal; further broadcasts must still return.
	require.NoError(t, bus.BroadcastTicketsChanged(ctx))
	require.NoError(t, bus.BroadcastTicketsChanged(ctx))
	require.NoError(t, bus.BroadcastTicketsChanged(ctx))
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := events.NewBus()

	ch, cancel := bus.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Broadcasting after unsubscribe must not panic.
	require.NoError(t, bus.BroadcastTicketsChanged(context.Background()))
}

type stubBroadcaster struct {
	calls int
	err   error
}

func (s *stubBroadcaster) BroadcastTicketsChanged(context.Context) error {
	s.calls++
	return s.err
}

func TestMultiBroadcaster(t *testing.T) {
	t.Run("attempts every broadcaster", func(t *testing.T) {
		first := &stubBroadcaster{err: errors.New("queue unavailable")}
		second := &stubBroadcaster{}

		multi := events.NewMultiBroadcaster(first, second)
		err := multi.BroadcastTicketsChanged(context.Background())

		assert.EqualError(t, err, "queue unavailable")
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
	})

	t.Run("nil error when all succeed", func(t *testing.T) {
		multi := events.NewMultiBroadcaster(&stubBroadcaster{}, &stubBroadcaster{})
		assert.NoError(t, multi.BroadcastTicketsChanged(context.Background()))
	})
}
