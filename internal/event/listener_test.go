package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerDispatchesToEveryHandler(t *testing.T) {
	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)
	l.Register(func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, "first:"+e.Message())
		mu.Unlock()
		done <- struct{}{}
		return errors.New("handler errors are only logged")
	})
	l.Register(func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, "second:"+e.Message())
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error)
	go func() { stopped <- l.Listen(ctx) }()

	l.Send(MatchStarted(Text("bot", "match started"), "abc"))
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler was not called")
		}
	}

	cancel()
	require.NoError(t, <-stopped)
	assert.Equal(t, []string{"first:match started", "second:match started"}, got)
}

func TestSendDropsWhenFull(t *testing.T) {
	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 0; i < bufferSize+10; i++ {
		l.Send(Text("bot", "spam"))
	}
	assert.Len(t, l.events, bufferSize)

	var nilListener *Listener
	assert.NotPanics(t, func() { nilListener.Send(Text("bot", "ignored")) })
}
