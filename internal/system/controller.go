package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/game"
)

const (
	exitPolls    = 30
	exitInterval = time.Second
	launchDelay  = 3 * time.Second
)

var ErrProcessesStillRunning = errors.New("client processes did not exit")

type ProcessManager interface {
	Running(names ...string) bool
	Kill(names ...string) (int, error)
	Start(path string, args ...string) error
	CloseWindow(w game.Window) error
}

// ClientController owns the League client process set.
type ClientController struct {
	ctx   *botCtx.Context
	procs ProcessManager
	paths InstallPaths
}

func NewClientController(ctx *botCtx.Context, procs ProcessManager, paths InstallPaths) *ClientController {
	return &ClientController{ctx: ctx, procs: procs, paths: paths}
}

func (c *ClientController) Paths() InstallPaths {
	return c.paths
}

func (c *ClientController) RestartClient(ctx context.Context) error {
	c.ctx.Logger.Warn("Restarting the League client")
	if err := c.Kill(ctx); err != nil {
		return err
	}
	if err := c.ctx.Sleep(ctx, launchDelay); err != nil {
		return err
	}

	return c.Launch()
}

// Kill terminates every client process and waits for them to be gone, retrying the kill once.
func (c *ClientController) Kill(ctx context.Context) error {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.ctx.Send(event.Recovery(c.ctx.Text("Client processes survived, killing them again"), event.RecoveryForceKill, "processes still running"))
		}
		killed, err := c.procs.Kill(clientProcesses...)
		if err != nil {
			c.ctx.Logger.Warn("Some client processes could not be killed", slog.Any("error", err))
		}
		c.ctx.Logger.Debug("Client processes killed", slog.Int("count", killed))

		for i := 0; i < exitPolls; i++ {
			if !c.procs.Running(clientProcesses...) {
				return nil
			}
			if err = c.ctx.Sleep(ctx, exitInterval); err != nil {
				return err
			}
		}
	}

	return ErrProcessesStillRunning
}

// Launch starts the client through Deceive when configured, otherwise through the Riot client.
func (c *ClientController) Launch() error {
	if c.paths.Deceive != "" {
		c.ctx.Logger.Info("Launching the League client through Deceive", slog.String("path", c.paths.Deceive))
		if err := c.procs.Start(c.paths.Deceive); err != nil {
			return fmt.Errorf("launching deceive: %w", err)
		}
		return nil
	}

	c.ctx.Logger.Info("Launching the League client", slog.String("path", c.paths.RiotServices()))
	if err := c.procs.Start(c.paths.RiotServices(), LeagueLaunchArgs...); err != nil {
		return fmt.Errorf("launching riot client: %w", err)
	}

	return nil
}

func (c *ClientController) CloseGameWindow() error {
	return c.procs.CloseWindow(game.GameWindow)
}

// ClientRunning reports whether any League client process is alive.
func (c *ClientController) ClientRunning() bool {
	return c.procs.Running(ClientProcess, ClientUxProcess)
}
