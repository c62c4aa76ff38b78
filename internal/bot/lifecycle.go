package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hectorgimenez/tftbot/internal/config"
	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/economy"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/game"
)

const (
	tick             = time.Second
	lobbyRetryDelay  = 5 * time.Second
	roundPrecision   = 0.9
	stageLookupLimit = 7
)

// Lifecycle walks one match from an idle client to the end of game screen.
type Lifecycle struct {
	ctx        *botCtx.Context
	session    SessionClient
	live       LiveClient
	perception game.Perception
	input      game.Input
	engine     *economy.Engine
	controller ClientController

	phase   MatchPhase
	onPhase func(MatchPhase)
	rounds  *game.RoundTracker

	matchID    string
	matchStart time.Time
	surrender  surrenderState
}

type LifecycleOption func(*Lifecycle)

// WithPhaseHook is called synchronously on every phase change.
func WithPhaseHook(fn func(MatchPhase)) LifecycleOption {
	return func(l *Lifecycle) {
		l.onPhase = fn
	}
}

func NewLifecycle(
	ctx *botCtx.Context,
	session SessionClient,
	live LiveClient,
	perception game.Perception,
	input game.Input,
	engine *economy.Engine,
	controller ClientController,
	opts ...LifecycleOption,
) *Lifecycle {
	l := &Lifecycle{
		ctx:        ctx,
		session:    session,
		live:       live,
		perception: perception,
		input:      input,
		engine:     engine,
		controller: controller,
		rounds:     &game.RoundTracker{},
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Lifecycle) Phase() MatchPhase {
	return l.phase
}

func (l *Lifecycle) Round() game.RoundMarker {
	return l.rounds.Current()
}

func (l *Lifecycle) setPhase(p MatchPhase) {
	if l.phase == p {
		return
	}
	l.ctx.Logger.Debug("Match phase changed", slog.String("from", l.phase.String()), slog.String("to", p.String()))
	l.ctx.Send(event.PhaseChanged(l.ctx.Text(fmt.Sprintf("%s -> %s", l.phase, p)), l.phase.String(), p.String()))
	l.phase = p
	if l.onPhase != nil {
		l.onPhase(p)
	}
}

// reset always announces NotQueued, also when a previous run was aborted while already there.
func (l *Lifecycle) reset() {
	l.phase = NotQueued
	if l.onPhase != nil {
		l.onPhase(NotQueued)
	}
	l.rounds.Reset()
	l.engine.Reset()
	l.matchID = ""
	l.surrender = surrenderState{}
}

// Run plays exactly one match. Any state left from an aborted run is discarded first.
func (l *Lifecycle) Run(c context.Context) error {
	l.reset()

	if err := l.ctx.WaitWhilePaused(c); err != nil {
		return err
	}
	if !l.session.InGame(c) {
		if err := l.ctx.WaitForPlayNextGame(c); err != nil {
			return err
		}
		if err := l.queue(c); err != nil {
			return err
		}
	}

	l.beginMatch()
	reason, err := l.playMatch(c)
	if err != nil {
		l.endMatch(event.FinishedError)
		return err
	}

	l.endMatch(reason)
	return l.postMatch(c)
}

func (l *Lifecycle) playMatch(c context.Context) (event.FinishReason, error) {
	if err := l.load(c); err != nil {
		return "", err
	}
	if err := l.earlyDraft(c); err != nil {
		return "", err
	}

	return l.play(c)
}

func (l *Lifecycle) beginMatch() {
	l.matchID = uuid.NewString()
	l.matchStart = l.ctx.Clock.Now()
	l.ctx.Logger.Info("Match starting", slog.String("match", l.matchID))
	l.ctx.Send(event.MatchStarted(l.ctx.Text("Match starting"), l.matchID))
}

func (l *Lifecycle) endMatch(reason event.FinishReason) {
	duration := l.ctx.Clock.Now().Sub(l.matchStart)
	l.ctx.Send(event.MatchFinished(l.ctx.Text(fmt.Sprintf("Match finished: %s", reason)), l.matchID, reason, duration))
}

// queue gets the client from idle to a match being assigned. Being in a match already counts as done.
func (l *Lifecycle) queue(c context.Context) error {
	for {
		if err := l.ctx.WaitWhilePaused(c); err != nil {
			return err
		}
		if l.session.InGame(c) {
			return nil
		}

		if !l.session.InQueue(c) {
			if err := l.joinQueue(c); err != nil {
				return err
			}
		}
		l.setPhase(Queueing)

		requeue, err := l.waitForMatch(c)
		if err != nil || !requeue {
			return err
		}
		l.setPhase(NotQueued)
	}
}

// joinQueue creates the lobby when needed and starts the queue, retrying until either works out.
func (l *Lifecycle) joinQueue(c context.Context) error {
	for {
		if cause, broken := l.sessionBroken(c); broken {
			return fmt.Errorf("joining the queue: %s: %w", cause, ErrSessionInvalid)
		}

		switch {
		case !l.session.InLobby(c) && !l.session.CreateLobby(c):
			l.ctx.Logger.Warn("Failed to create the lobby, retrying", slog.Duration("delay", lobbyRetryDelay))
		case l.session.StartQueue(c), l.session.InQueue(c), l.session.InGame(c):
			return nil
		default:
			l.ctx.Logger.Warn("Failed to start the queue, retrying", slog.Duration("delay", lobbyRetryDelay))
		}

		if err := l.ctx.Sleep(c, lobbyRetryDelay); err != nil {
			return err
		}
	}
}

// sessionBroken reports an expired login or an error dialog only a client restart gets rid of.
func (l *Lifecycle) sessionBroken(c context.Context) (string, bool) {
	if l.session.SessionExpired(c) {
		return "login session expired", true
	}
	if m, found := game.AnyVisible(l.perception, game.ClientWindow, game.ClientErrorMessages...); found {
		return fmt.Sprintf("client error dialog %s", m.Template), true
	}

	return "", false
}

// waitForMatch polls the queue until a match starts. It returns requeue=true when the queue was lost.
func (l *Lifecycle) waitForMatch(c context.Context) (requeue bool, err error) {
	accepted := false
	outOfQueue := 0
	for {
		if err = l.ctx.WaitWhilePaused(c); err != nil {
			return false, err
		}
		if l.session.InGame(c) {
			l.ctx.Logger.Info("Match found, loading")
			return false, nil
		}
		if cause, broken := l.sessionBroken(c); broken {
			return false, fmt.Errorf("waiting for a match: %s: %w", cause, ErrSessionInvalid)
		}

		if !l.session.InQueue(c) {
			if accepted && l.session.InLobby(c) {
				l.ctx.Logger.Warn("Back in the lobby after accepting, the lobby is not ready")
				l.session.DeleteLobby(c)
				return true, nil
			}
			outOfQueue++
			if outOfQueue >= l.ctx.Timeouts.Ticks(config.QueueSearch) {
				l.ctx.Logger.Warn("Not in queue anymore, queueing again")
				return true, nil
			}
		} else {
			outOfQueue = 0
		}

		if l.session.FoundQueue(c) {
			l.setPhase(QueueFound)
			if !accepted && !l.session.QueueAccepted(c) {
				l.session.AcceptQueue(c)
				accepted = true
			}
		} else if l.phase == QueueFound {
			// Somebody declined, the next found event needs its own accept
			l.setPhase(Queueing)
			accepted = false
		}

		if err = l.ctx.Sleep(c, tick); err != nil {
			return false, err
		}
	}
}

func (l *Lifecycle) load(c context.Context) error {
	l.setPhase(Loading)

	if !l.live.WaitForGameWindow(c, l.ctx.Timeouts.Get(config.GameWindow)) {
		if c.Err() != nil {
			return c.Err()
		}
		if l.session.InGame(c) {
			return fmt.Errorf("game window never showed up: %w", ErrClientRestartRequired)
		}
		return fmt.Errorf("%w: match ended while loading", ErrStructuralFault)
	}

	for i := 0; i < l.ctx.Timeouts.Ticks(config.GameStart); i++ {
		if game.Visible(l.perception, game.GameWindow, game.RoundFirstDraft, roundPrecision) || l.live.GameLoaded(c) {
			break
		}
		if err := l.ctx.Sleep(c, tick); err != nil {
			return err
		}
	}

	l.ctx.Logger.Info("Match loaded", slog.String("match", l.matchID))
	return nil
}

func (l *Lifecycle) earlyDraft(c context.Context) error {
	l.setPhase(EarlyDraft)

	for game.Visible(l.perception, game.GameWindow, game.RoundFirstDraft, roundPrecision) {
		if err := l.ctx.WaitWhilePaused(c); err != nil {
			return err
		}
		// a frozen frame of a crashed game keeps the marker on screen
		if !l.session.InGame(c) {
			l.ctx.Logger.Warn("Match ended during the early draft")
			return nil
		}
		if err := l.engine.Executor().Draft(c); err != nil {
			return structural("early draft", err)
		}
	}

	return nil
}

// readRound keeps the last known round when nothing is readable.
func (l *Lifecycle) readRound() game.RoundMarker {
	if l.ctx.Config.OCRForRounds {
		text, err := l.perception.ReadText(game.GameWindow, game.RoundTextRegion)
		if err == nil {
			if r, ok := game.ParseRoundText(text); ok {
				return l.rounds.Observe(r)
			}
		}
		return l.rounds.Current()
	}

	for major := stageLookupLimit; major >= 1; major-- {
		t := game.StageTemplate(major)
		if game.Visible(l.perception, game.GameWindow, t, roundPrecision) {
			if r, ok := game.RoundFromTemplate(t); ok {
				return l.rounds.Observe(r)
			}
		}
	}

	return l.rounds.Current()
}

// structural marks errors that leave the lifecycle in an unknown state. Context cancellation passes through.
func structural(step string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrStructuralFault) || errors.Is(err, ErrClientRestartRequired) || errors.Is(err, ErrSessionInvalid) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", ErrStructuralFault, step, err)
}
