package ws

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct{}

func (fakeBus) Publish(context.Context, string, []byte) error {
	return nil
}

func (fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return make(chan []byte), nil
}

func newTestHub() *Hub {
	return NewHub(fakeBus{}, slog.New(slog.DiscardHandler), Config{Mode: "server"})
}

func TestHubRegisterAndDrop(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- hub.Run(ctx) }()

	c := &client{hub: hub, send: make(chan []byte, 1), subs: map[string]bool{ChannelPrices: true}}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.clientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.broadcast <- broadcastMsg{channel: ChannelPrices, data: []byte(`{"v":1}`)}
	select {
	case msg := <-c.send:
		assert.JSONEq(t, `{"v":1}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the subscribed client")
	}

	c.drop()
	require.Eventually(t, func() bool { return hub.clientCount() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestClientDropAfterShutdown(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- hub.Run(ctx) }()
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	// A pump goroutine whose connection dies after shutdown must not hang on
	// the unregister handoff.
	c := &client{hub: hub, send: make(chan []byte, 1), subs: map[string]bool{}}
	released := make(chan struct{})
	go func() {
		c.drop()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("client drop blocked after hub shutdown")
	}
}
