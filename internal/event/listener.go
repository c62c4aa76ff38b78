package event

import (
	"context"
	"log/slog"
)

const bufferSize = 64

type Handler func(ctx context.Context, e Event) error

// Listener fans every sent event out to the registered handlers, one event at a time.
type Listener struct {
	handlers []Handler
	events   chan Event
	logger   *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{
		events: make(chan Event, bufferSize),
		logger: logger,
	}
}

// Register must be called before Listen.
func (l *Listener) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Send never blocks the caller, when handlers fall behind the event is dropped.
func (l *Listener) Send(e Event) {
	if l == nil {
		return
	}
	select {
	case l.events <- e:
	default:
		l.logger.Warn("Event queue is full, dropping event", slog.String("message", e.Message()))
	}
}

func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-l.events:
			for _, h := range l.handlers {
				if err := h(ctx, e); err != nil {
					l.logger.Error("error running event handler", slog.Any("error", err))
				}
			}
		}
	}
}
