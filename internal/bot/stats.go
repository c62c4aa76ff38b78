package bot

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/hectorgimenez/tftbot/internal/event"
)

const winRateWindow = 20

// WinRateSource reads the top four rate over the last n matches from the match history.
type WinRateSource interface {
	WinRate(ctx context.Context, n int) string
}

type Stats struct {
	SessionStart time.Time                  `json:"sessionStart"`
	Phase        string                     `json:"phase"`
	MatchID      string                     `json:"matchId,omitempty"`
	MatchStart   time.Time                  `json:"matchStart,omitempty"`
	Matches      int                        `json:"matches"`
	PlayTime     time.Duration              `json:"playTime"`
	Finished     map[event.FinishReason]int `json:"finished"`
	Recoveries   map[event.RecoveryTier]int `json:"recoveries"`
	Paused       bool                       `json:"paused"`
}

// StatsHandler keeps the match counters, fed by the event listener.
type StatsHandler struct {
	name    string
	logger  *slog.Logger
	winRate WinRateSource

	mu    sync.RWMutex
	stats Stats
}

// NewStatsHandler accepts a nil win rate source.
func NewStatsHandler(name string, logger *slog.Logger, winRate WinRateSource) *StatsHandler {
	return &StatsHandler{
		name:    name,
		logger:  logger,
		winRate: winRate,
		stats: Stats{
			SessionStart: time.Now(),
			Phase:        NotQueued.String(),
			Finished:     make(map[event.FinishReason]int),
			Recoveries:   make(map[event.RecoveryTier]int),
		},
	}
}

func (h *StatsHandler) Handle(ctx context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.PhaseChangedEvent:
		h.mu.Lock()
		h.stats.Phase = evt.To
		h.mu.Unlock()
	case event.MatchStartedEvent:
		h.mu.Lock()
		h.stats.MatchID = evt.MatchID
		h.stats.MatchStart = evt.OccurredAt()
		h.mu.Unlock()
	case event.MatchFinishedEvent:
		h.mu.Lock()
		// an aborted match is played again under a new id once the client is back
		if evt.Reason != event.FinishedError {
			h.stats.Matches++
			h.stats.PlayTime += evt.Duration
		}
		h.stats.Finished[evt.Reason]++
		h.stats.MatchID = ""
		matches, playTime := h.stats.Matches, h.stats.PlayTime
		h.mu.Unlock()

		attrs := []any{
			slog.String("supervisor", h.name),
			slog.String("match", evt.MatchID),
			slog.String("reason", string(evt.Reason)),
			slog.Duration("duration", evt.Duration.Round(time.Second)),
			slog.Int("matches", matches),
			slog.Duration("play_time", playTime.Round(time.Second)),
		}
		if h.winRate != nil && evt.Reason != event.FinishedError {
			attrs = append(attrs, slog.String("win_rate", h.winRate.WinRate(ctx, winRateWindow)))
		}
		h.logger.Info("Match finished", attrs...)
	case event.RecoveryEvent:
		h.mu.Lock()
		h.stats.Recoveries[evt.Tier]++
		h.mu.Unlock()
	case event.GamePausedEvent:
		h.mu.Lock()
		h.stats.Paused = evt.Paused
		h.mu.Unlock()
	}

	return nil
}

// Snapshot returns a copy that is safe to keep.
func (h *StatsHandler) Snapshot() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := h.stats
	s.Finished = maps.Clone(h.stats.Finished)
	s.Recoveries = maps.Clone(h.stats.Recoveries)

	return s
}
