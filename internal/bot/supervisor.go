package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"time"

	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/game"
	"github.com/jpillora/backoff"
)

const (
	structuralFaultDelay = 5 * time.Second
	dialogDismissDelay   = 2 * time.Second
)

// Supervisor keeps the lifecycle running forever, escalating recovery based on what failed.
type Supervisor struct {
	ctx        *botCtx.Context
	lifecycle  *Lifecycle
	session    SessionClient
	perception game.Perception
	input      game.Input
	controller ClientController
	network    NetworkWaiter
	restarts   *backoff.Backoff
}

// NewSupervisor accepts a nil network waiter, recovery then skips waiting for connectivity.
func NewSupervisor(
	ctx *botCtx.Context,
	lifecycle *Lifecycle,
	session SessionClient,
	perception game.Perception,
	input game.Input,
	controller ClientController,
	network NetworkWaiter,
) *Supervisor {
	return &Supervisor{
		ctx:        ctx,
		lifecycle:  lifecycle,
		session:    session,
		perception: perception,
		input:      input,
		controller: controller,
		network:    network,
		restarts: &backoff.Backoff{
			Min:    5 * time.Second,
			Max:    5 * time.Minute,
			Factor: 2,
			Jitter: true,
		},
	}
}

func (s *Supervisor) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Connect attaches to the running client, restarting it until a session is established.
func (s *Supervisor) Connect(ctx context.Context) {
	if err := s.session.Connect(ctx, true); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.ctx.Logger.Warn("Could not connect to the League client", slog.Any("error", err))
		s.restartClient(ctx, err.Error())
	}
}

// Run only returns once ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		err := s.RunOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			continue
		}
		s.remediate(ctx, err)
	}

	return nil
}

// RunOnce checks the session and plays one match, turning panics into structural faults.
func (s *Supervisor) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.ctx.Logger.Error("Lifecycle panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: panic: %v", ErrStructuralFault, r)
		}
	}()

	if cause, invalid := s.lifecycle.sessionBroken(ctx); invalid {
		return fmt.Errorf("%s: %w", cause, ErrSessionInvalid)
	}

	return s.lifecycle.Run(ctx)
}

func (s *Supervisor) remediate(ctx context.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionInvalid):
		s.ctx.Logger.Warn("Client session is invalid, restarting the client", slog.Any("error", err))
		s.recoverSession(ctx, err.Error())
	case errors.Is(err, ErrClientRestartRequired):
		s.ctx.Logger.Warn("Client is stuck, restarting it", slog.Any("error", err))
		s.restartClient(ctx, err.Error())
	default:
		s.ctx.Logger.Error("Lifecycle failed, starting over", slog.Any("error", err))
		s.ctx.Send(event.WithScreenshot(s.ctx.Name, fmt.Sprintf("Lifecycle failed: %v", err), s.screenshot()))
		_ = s.ctx.Sleep(ctx, structuralFaultDelay)
	}
}

func (s *Supervisor) screenshot() image.Image {
	for _, w := range []game.Window{game.GameWindow, game.ClientWindow} {
		if img, err := s.perception.Capture(w); err == nil {
			return img
		}
	}

	return nil
}

func (s *Supervisor) recoverSession(ctx context.Context, cause string) {
	s.dismissDialogs(ctx)

	if s.network != nil {
		s.ctx.Send(event.Recovery(s.ctx.Text("Waiting for the network"), event.RecoveryWait, cause))
		if err := s.network.WaitOnline(ctx); err != nil {
			return
		}
	}

	s.restartClient(ctx, cause)
}

func (s *Supervisor) dismissDialogs(ctx context.Context) {
	buttons := append([]game.Template{game.MessageOK}, game.MessageExitButtons...)
	if m, found := game.AnyVisible(s.perception, game.ClientWindow, buttons...); found {
		s.ctx.Logger.Info("Dismissing client dialog", slog.String("button", string(m.Template)))
		if err := s.input.Click(game.ClientWindow, m.Center, game.LeftButton); err != nil {
			s.ctx.Logger.Debug("Could not dismiss the dialog", slog.Any("error", err))
		}
		_ = s.ctx.Sleep(ctx, dialogDismissDelay)
	}
}

// restartClient retries the kill, launch and connect sequence with a growing delay until it works.
func (s *Supervisor) restartClient(ctx context.Context, cause string) {
	for ctx.Err() == nil {
		s.ctx.Send(event.Recovery(s.ctx.Text("Restarting the League client"), event.RecoveryRestart, cause))
		err := s.controller.RestartClient(ctx)
		if err == nil {
			s.ctx.Send(event.Recovery(s.ctx.Text("Reconnecting to the League client"), event.RecoveryReconnect, cause))
			err = s.session.Connect(ctx, true)
		}
		if err == nil {
			s.restarts.Reset()
			s.ctx.Logger.Info("League client restarted")
			return
		}

		delay := s.restarts.Duration()
		s.ctx.Logger.Error("Client restart failed", slog.Any("error", err), slog.Duration("retry_in", delay))
		if s.ctx.Sleep(ctx, delay) != nil {
			return
		}
	}
}
