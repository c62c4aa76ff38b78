package context

import (
	gocontext "context"
	"log/slog"
	"time"

	"github.com/coder/quartz"
	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/utils"
)

const pausePollInterval = 5 * time.Second

// Context carries everything a component needs from the running bot, it replaces process wide globals.
type Context struct {
	Name          string
	Logger        *slog.Logger
	Config        *config.Config
	Timeouts      config.TimeoutTable
	Pause         *PauseFlags
	Clock         quartz.Clock
	Rand          *utils.Humanizer
	EventListener *event.Listener
}

func NewContext(name string, cfg *config.Config, logger *slog.Logger, listener *event.Listener) *Context {
	return &Context{
		Name:          name,
		Logger:        logger,
		Config:        cfg,
		Timeouts:      cfg.Timeouts,
		Pause:         NewPauseFlags(),
		Clock:         quartz.NewReal(),
		Rand:          utils.NewHumanizer(time.Now().UnixNano()),
		EventListener: listener,
	}
}

// Sleep blocks for exactly d on the context clock.
func (ctx *Context) Sleep(c gocontext.Context, d time.Duration) error {
	if d <= 0 {
		return c.Err()
	}
	t := ctx.Clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-c.Done():
		return c.Err()
	case <-t.C:
		return nil
	}
}

// SleepHuman blocks for roughly d, stretched the way a person's reaction time would be.
func (ctx *Context) SleepHuman(c gocontext.Context, d time.Duration) error {
	return ctx.Sleep(c, ctx.Rand.Duration(d, ctx.Clock.Now()))
}

// WaitWhilePaused stalls until the pause flag is cleared. Nothing is evaluated while paused.
func (ctx *Context) WaitWhilePaused(c gocontext.Context) error {
	logged := false
	for ctx.Pause.Paused() {
		if !logged {
			ctx.Logger.Info("Bot is paused")
			logged = true
		}
		if err := ctx.Sleep(c, pausePollInterval); err != nil {
			return err
		}
	}
	if logged {
		ctx.Logger.Info("Bot resumed")
	}

	return c.Err()
}

// WaitForPlayNextGame blocks before a new match while play next game is disabled.
func (ctx *Context) WaitForPlayNextGame(c gocontext.Context) error {
	logged := false
	for !ctx.Pause.PlayNextGame() {
		if !logged {
			ctx.Logger.Info("Play next game is disabled, waiting before queueing")
			logged = true
		}
		if err := ctx.Sleep(c, pausePollInterval); err != nil {
			return err
		}
	}

	return c.Err()
}

func (ctx *Context) Send(e event.Event) {
	ctx.EventListener.Send(e)
}

func (ctx *Context) Text(message string) event.BaseEvent {
	return event.Text(ctx.Name, message)
}
