// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/hectorgimenez/tftbot/internal/config"
	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/utils"
)

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DriveClock keeps advancing the mock to its next pending timer until the returned stop func is called,
// so code that sleeps on the clock runs without real waits. The stop func must be called before the test ends.
func DriveClock(t testing.TB, mock *quartz.Mock) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			d, ok := mock.Peek()
			if !ok {
				time.Sleep(time.Millisecond)
				continue
			}
			_ = mock.Advance(d).Wait(ctx)
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// NewContext returns a bot context on a mock clock with a seeded random source.
func NewContext(t testing.TB, cfg *config.Config) (*botCtx.Context, *quartz.Mock) {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	mock := quartz.NewMock(t)
	logger := DiscardLogger()

	ctx := &botCtx.Context{
		Name:          "test",
		Logger:        logger,
		Config:        cfg,
		Timeouts:      cfg.Timeouts,
		Pause:         botCtx.NewPauseFlags(),
		Clock:         mock,
		Rand:          utils.NewHumanizer(1),
		EventListener: event.NewListener(logger),
	}

	return ctx, mock
}

// DefaultConfig mirrors the shipped defaults without touching the filesystem.
func DefaultConfig() *config.Config {
	cfg := &config.Config{
		LogLevel:                         "INFO",
		WantedTraits:                     []string{"disco", "punk", "emo"},
		PurchaseTraitsInPrioritizedOrder: true,
		CapturesDirectory:                "captures",
		Timeouts:                         config.NewTimeoutTable(nil),
	}
	cfg.Economy.Mode = config.EconomyModeDefault
	cfg.Economy.Default = config.Thresholds{
		PurchaseGold: 3, LevelGold: 4, RerollGold: 5, LevelCost: 4, RerollCost: 2,
		MaxGoldLookup: 6, PurchaseAttempts: 3, LevelFromRound: 2, AggressiveLevelRound: 4, RerollFromRound: 3,
	}
	cfg.Economy.OCRStandard = config.Thresholds{
		PurchaseGold: 1, LevelGold: 54, RerollGold: 55, LevelCost: 4, RerollCost: 2,
		PurchaseAttempts: 3, LevelFromRound: 2, AggressiveLevelRound: 4, RerollFromRound: 3,
	}

	return cfg
}
