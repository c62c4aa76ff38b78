package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/game"
)

const (
	deathScreenDelay   = 5 * time.Second
	surrenderTries     = 20
	surrenderSettleFor = 10 * time.Second
	closeWindowSignals = 2
)

type surrenderState struct {
	armed    bool
	deadline time.Time
}

type prompt struct {
	window game.Window
	button game.Template
	delay  time.Duration
	focus  bool
}

// End of match screens, in the order they show up
var postGamePrompts = []prompt{
	{window: game.ClientWindow, button: game.MissionsOK, delay: 3 * time.Second},
	{window: game.ClientWindow, button: game.SkipWaitingForStats, delay: 10 * time.Second},
	{window: game.ClientWindow, button: game.PlayAgain, delay: 3 * time.Second, focus: true},
	{window: game.ClientWindow, button: game.QuickPlay, delay: 10 * time.Second},
}

func (l *Lifecycle) play(c context.Context) (event.FinishReason, error) {
	l.setPhase(InMatch)

	windowMissing := 0
	for {
		if err := l.ctx.WaitWhilePaused(c); err != nil {
			return "", err
		}

		round := l.readRound()
		if _, err := l.engine.Tick(c, round); err != nil {
			if !errors.Is(err, game.ErrWindowNotFound) {
				return "", structural("economy", err)
			}
			l.ctx.Logger.Debug("Game window lost during economy tick", slog.Any("error", err))
		}

		reason, err := l.checkIfPostGame(c)
		if err != nil || reason != "" {
			return reason, err
		}

		if _, err = l.perception.WindowBounds(game.GameWindow); errors.Is(err, game.ErrWindowNotFound) {
			windowMissing++
			if windowMissing > l.ctx.Timeouts.Ticks(config.GameWindow) {
				return "", fmt.Errorf("%w: game window is gone but the match is still running", ErrStructuralFault)
			}
		} else {
			windowMissing = 0
		}

		if l.ctx.Config.ForfeitEarly && pastSurrenderRound(round, l.perception) {
			if reason, err = l.trySurrender(c); err != nil || reason != "" {
				return reason, err
			}
		}

		if err = l.ctx.Sleep(c, tick); err != nil {
			return "", err
		}
	}
}

func pastSurrenderRound(r game.RoundMarker, p game.Perception) bool {
	if r.Major > 3 || (r.Major == 3 && r.Minor >= 1) {
		return true
	}

	return r.Major == 3 && game.Visible(p, game.GameWindow, game.RoundThreeOne, roundPrecision)
}

// checkIfPostGame returns a non empty reason once the match is over for us.
func (l *Lifecycle) checkIfPostGame(c context.Context) (event.FinishReason, error) {
	if m, found := game.AnyVisible(l.perception, game.GameWindow, game.ExitNowButtons...); found {
		l.ctx.Logger.Info("Exit button found, leaving the match")
		if err := l.input.Click(game.GameWindow, m.Center, game.LeftButton); err != nil {
			l.ctx.Logger.Warn("Could not click the exit button", slog.Any("error", err))
		}
		return event.FinishedDied, nil
	}

	if game.Visible(l.perception, game.GameWindow, game.Death, game.DefaultPrecision) && l.live.IsDead(c) {
		return l.leaveAfterDeath(c)
	}

	if _, found := game.AnyVisible(l.perception, game.ClientWindow, game.PlayAgain, game.QuickPlay); found {
		return event.FinishedOK, nil
	}
	if !l.session.InGame(c) {
		return event.FinishedOK, nil
	}

	if m, found := game.AnyVisible(l.perception, game.ClientWindow, game.ReconnectButton); found {
		l.ctx.Logger.Info("Reconnecting to the match")
		l.ctx.Send(event.Recovery(l.ctx.Text("Reconnecting to the match"), event.RecoveryReconnect, "reconnect button"))
		if err := l.input.Click(game.ClientWindow, m.Center, game.LeftButton); err != nil {
			l.ctx.Logger.Warn("Could not click reconnect", slog.Any("error", err))
		}
	}

	return "", nil
}

// leaveAfterDeath waits for the exit button, then closes the game window, then gives up on the client.
func (l *Lifecycle) leaveAfterDeath(c context.Context) (event.FinishReason, error) {
	l.ctx.Logger.Info("We are dead, waiting for the exit button")
	if err := l.ctx.Sleep(c, deathScreenDelay); err != nil {
		return "", err
	}

	for i := 0; i < l.ctx.Timeouts.Ticks(config.ExitButton); i++ {
		if m, found := game.AnyVisible(l.perception, game.GameWindow, game.ExitNowButtons...); found {
			if err := l.input.Click(game.GameWindow, m.Center, game.LeftButton); err != nil {
				l.ctx.Logger.Warn("Could not click the exit button", slog.Any("error", err))
			}
			return event.FinishedDied, nil
		}
		if err := l.ctx.Sleep(c, tick); err != nil {
			return "", err
		}
	}

	l.ctx.Logger.Warn("Dead without an exit button, closing the game window")
	l.ctx.Send(event.Recovery(l.ctx.Text("Closing the game window"), event.RecoveryWait, "dead without exit button"))
	for i := 0; i < closeWindowSignals; i++ {
		if err := l.controller.CloseGameWindow(); err != nil {
			l.ctx.Logger.Warn("Could not close the game window", slog.Any("error", err))
		}
		if err := l.ctx.Sleep(c, tick); err != nil {
			return "", err
		}
	}

	for i := 0; i < l.ctx.Timeouts.Ticks(config.GracefulExit); i++ {
		if !l.session.InGame(c) {
			return event.FinishedDied, nil
		}
		if err := l.ctx.Sleep(c, tick); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("game did not close after death: %w", ErrClientRestartRequired)
}

// trySurrender arms a random delay the first time it is called and surrenders once it elapsed.
func (l *Lifecycle) trySurrender(c context.Context) (event.FinishReason, error) {
	now := l.ctx.Clock.Now()
	if !l.surrender.armed {
		wait := time.Duration(l.ctx.Rand.Between(
			l.ctx.Timeouts.Ticks(config.SurrenderMin),
			l.ctx.Timeouts.Ticks(config.SurrenderMax),
		)) * time.Second
		l.surrender = surrenderState{armed: true, deadline: now.Add(wait)}
		l.ctx.Logger.Info("Surrendering early", slog.Duration("in", wait))
		return "", nil
	}
	if now.Before(l.surrender.deadline) {
		return "", nil
	}

	l.ctx.Logger.Info("Surrendering")
	reached, reason, err := l.surrenderStep(c, game.Settings, game.Surrender1)
	if err != nil || reason != "" || !reached {
		return reason, err
	}
	reached, reason, err = l.surrenderStep(c, game.Surrender1, game.Surrender2)
	if err != nil || reason != "" || !reached {
		return reason, err
	}

	m, found := game.AnyVisible(l.perception, game.GameWindow, game.Surrender2)
	if !found {
		return "", nil
	}
	if err = l.input.Click(game.GameWindow, m.Center, game.LeftButton); err != nil {
		return "", structural("surrender", err)
	}
	if err = l.ctx.Sleep(c, surrenderSettleFor); err != nil {
		return "", err
	}

	return event.FinishedSurrender, nil
}

// surrenderStep clicks from until to shows up, stopping early when the match ends on its own.
func (l *Lifecycle) surrenderStep(c context.Context, from, to game.Template) (bool, event.FinishReason, error) {
	for i := 0; i < surrenderTries; i++ {
		if game.Visible(l.perception, game.GameWindow, to, game.DefaultPrecision) {
			return true, "", nil
		}
		reason, err := l.checkIfPostGame(c)
		if err != nil || reason != "" {
			return false, reason, err
		}
		if m, found := game.AnyVisible(l.perception, game.GameWindow, from); found {
			if err = l.input.Click(game.GameWindow, m.Center, game.LeftButton); err != nil {
				return false, "", structural("surrender", err)
			}
		}
		if err = l.ctx.Sleep(c, tick); err != nil {
			return false, "", err
		}
	}
	l.ctx.Logger.Warn("Surrender button did not show up", slog.String("button", string(to)))

	return false, "", nil
}

// postMatch clears the end of game screens until the client leaves the match.
func (l *Lifecycle) postMatch(c context.Context) error {
	l.setPhase(PostMatch)

	for i := 0; i < l.ctx.Timeouts.Ticks(config.PostGame); i++ {
		if err := l.ctx.WaitWhilePaused(c); err != nil {
			return err
		}
		if err := l.drainPrompts(c); err != nil {
			return err
		}
		if !l.session.InGame(c) {
			l.setPhase(NotQueued)
			return nil
		}
		if err := l.ctx.Sleep(c, tick); err != nil {
			return err
		}
	}

	return fmt.Errorf("client still in game after the match ended: %w", ErrClientRestartRequired)
}

func (l *Lifecycle) drainPrompts(c context.Context) error {
	if _, found := game.AnyVisible(l.perception, game.ClientWindow, game.InstantFeedbackReport); found {
		if m, ok := game.AnyVisible(l.perception, game.ClientWindow, game.MessageOK); ok {
			_ = l.input.Click(game.ClientWindow, m.Center, game.LeftButton)
		}
	}

	for _, p := range postGamePrompts {
		m, found := game.AnyVisible(l.perception, p.window, p.button)
		if !found {
			continue
		}
		if p.focus {
			if err := l.input.Focus(p.window); err != nil {
				l.ctx.Logger.Debug("Could not focus the client", slog.Any("error", err))
			}
		}
		l.ctx.Logger.Debug("Clicking post game prompt", slog.String("button", string(p.button)))
		if err := l.input.Click(p.window, m.Center, game.LeftButton); err != nil {
			l.ctx.Logger.Warn("Could not click post game prompt", slog.String("button", string(p.button)), slog.Any("error", err))
			continue
		}
		if err := l.ctx.Sleep(c, p.delay); err != nil {
			return err
		}
	}

	return nil
}
