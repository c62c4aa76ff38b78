package log

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu             sync.Mutex
	logFileHandler *os.File
)

func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if logFileHandler != nil {
		logFileHandler.Sync()
	}
}

func FlushAndClose() error {
	mu.Lock()
	defer mu.Unlock()
	if logFileHandler != nil {
		logFileHandler.Sync()
		err := logFileHandler.Close()
		logFileHandler = nil
		return err
	}

	return nil
}

// Level maps the config log level names to slog levels, unknown names are INFO.
func Level(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}

	return slog.LevelInfo
}

// NewLogger logs to a coloured console and to a new text file inside logDir.
func NewLogger(level slog.Level, logDir, supervisor string) (*slog.Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}

	if _, err := os.Stat(logDir); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(logDir, os.ModePerm)
		if err != nil {
			return nil, fmt.Errorf("error creating log directory: %w", err)
		}
	}

	fileName := "TFTBot-log-" + time.Now().Format("2006-01-02-15-04-05") + ".txt"
	if supervisor != "" {
		fileName = fmt.Sprintf("TFTBot-log-%s-%s.txt", supervisor, time.Now().Format("2006-01-02-15-04-05"))
	}

	lfh, err := os.Create(filepath.Join(logDir, fileName))
	if err != nil {
		return nil, err
	}
	mu.Lock()
	logFileHandler = lfh
	mu.Unlock()

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey {
				return a
			}

			t := a.Value.Time()
			a.Value = slog.StringValue(t.Format(time.TimeOnly))

			return a
		},
	}
	console := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           charmlog.Level(level),
	})

	return slog.New(fanout{slog.NewTextHandler(lfh, opts), console}), nil
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
