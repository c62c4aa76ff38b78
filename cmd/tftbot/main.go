package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/alecthomas/kong"
	sloggger "github.com/hectorgimenez/tftbot/cmd/tftbot/log"
	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/config"
	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/economy"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/game"
	"github.com/hectorgimenez/tftbot/internal/health"
	"github.com/hectorgimenez/tftbot/internal/hotkey"
	"github.com/hectorgimenez/tftbot/internal/lcu"
	"github.com/hectorgimenez/tftbot/internal/liveclient"
	"github.com/hectorgimenez/tftbot/internal/remote/discord"
	ngrokremote "github.com/hectorgimenez/tftbot/internal/remote/ngrok"
	"github.com/hectorgimenez/tftbot/internal/remote/telegram"
	"github.com/hectorgimenez/tftbot/internal/server"
	"github.com/hectorgimenez/tftbot/internal/system"
	"github.com/hectorgimenez/tftbot/internal/updater"
	"github.com/hectorgimenez/tftbot/internal/utils"
	"golang.org/x/sync/errgroup"
)

const supervisorName = "tft"

var cli struct {
	Ffearly bool   `short:"f" name:"ffearly" help:"Surrender as soon as the surrender vote opens."`
	Verbose bool   `short:"v" help:"Log debug messages."`
	Config  string `short:"c" default:"config/config.yaml" type:"path" help:"Path to the YAML config file."`
}

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace)
				logger.Error(errMsg)
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

// optional runs a status surface whose failure is logged and never stops the bot.
func optional(logger *slog.Logger, surface string, f func() error) func() error {
	return wrapWithRecover(logger, func() error {
		if err := f(); err != nil {
			logger.Error("Status surface stopped", slog.String("surface", surface), slog.Any("error", err))
		}
		return nil
	})
}

func main() {
	kong.Parse(&cli,
		kong.Name("tftbot"),
		kong.Description("Plays Teamfight Tactics matches unattended."),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		utils.ShowDialog("Error loading configuration", err.Error())
		log.Fatalf("Error loading configuration: %s", err.Error())
	}
	cfg.ApplyFlags(config.Flags{ForfeitEarly: cli.Ffearly, Verbose: cli.Verbose})

	logger, err := sloggger.NewLogger(sloggger.Level(cfg.LogLevel), cfg.LogSaveDirectory, "")
	if err != nil {
		log.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal error detected, tftbot will close with the following error: %v\n Stacktrace: %s", r, debug.Stack())
			logger.Error(err.Error())
			sloggger.FlushAndClose()
			utils.ShowDialog("tftbot error :(", fmt.Sprintf("tftbot will close due to an unexpected error, please check the latest log file for more info!\n %s", err.Error()))
		}
	}()

	if err = run(cfg, logger); err != nil {
		logger.Error("Error running tftbot", slog.Any("error", err))
		sloggger.FlushAndClose()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	setProcessDpiAware()
	if !utils.HasAdminPermission() {
		logger.Warn("tftbot is not running as administrator, input may not reach the game window")
	}

	version := updater.CurrentVersion(config.Version)
	logger.Info("Starting tftbot",
		slog.String("version", version.String()),
		slog.Any("traits", cfg.WantedTraits),
		slog.String("economy", cfg.Economy.Mode),
		slog.Bool("forfeit_early", cfg.ForfeitEarly),
	)

	g, ctx := errgroup.WithContext(ctx)

	eventListener := event.NewListener(logger)
	bctx := botCtx.NewContext(supervisorName, cfg, logger.With(slog.String("supervisor", supervisorName)), eventListener)

	// Ports
	capturer := game.NewCapturer()
	screen := game.NewScreen(capturer, game.NewTemplateStore(cfg.CapturesDirectory), game.NewTesseract(cfg.Economy.OverrideTesseractLocation))
	input := game.NewHID(capturer, time.Now().UnixNano())

	processes := system.NewProcesses()
	controller := system.NewClientController(bctx, processes, system.Discover(cfg, logger))
	session := lcu.NewClient(bctx, processes)
	live := liveclient.NewClient(bctx, session)

	mode, err := economy.NewMode(cfg, screen)
	if err != nil {
		return err
	}
	engine := economy.NewEngine(bctx, mode, screen, input, live)

	monitor := health.NewConnectivityMonitor(logger, bctx.Clock, cfg.NetworkMonitor.Address, time.Duration(cfg.NetworkMonitor.SustainedDuration)*time.Second)
	monitor.Enabled = cfg.NetworkMonitor.Enabled
	monitor.OnSustainedOffline = func() {
		bctx.Send(event.Recovery(bctx.Text("Internet connection lost"), event.RecoveryWait, "sustained connectivity loss"))
	}

	lifecycle := bot.NewLifecycle(bctx, session, live, screen, input, engine, controller)
	supervisor := bot.NewSupervisor(bctx, lifecycle, session, screen, input, controller, monitor)

	stats := bot.NewStatsHandler(supervisorName, logger, session)
	eventListener.Register(stats.Handle)

	// Hotkeys are the only way to control a running bot.
	hotkeys := hotkey.NewListener(logger, bctx.Clock, hotkey.AsyncKeyState)
	if err = hotkeys.Register("pause", cfg.Hotkeys.Pause, func() {
		paused := bctx.Pause.TogglePause()
		logger.Info("Pause toggled", slog.Bool("paused", paused))
		bctx.Send(event.GamePaused(bctx.Text(pauseMessage(paused)), paused))
	}); err != nil {
		return fmt.Errorf("pause hotkey: %w", err)
	}
	if err = hotkeys.Register("play_next_game", cfg.Hotkeys.PlayNextGame, func() {
		enabled := bctx.Pause.TogglePlayNextGame()
		logger.Info("Play next game toggled", slog.Bool("enabled", enabled))
		bctx.Send(event.PlayNextGame(bctx.Text(playNextGameMessage(enabled)), enabled))
	}); err != nil {
		return fmt.Errorf("play next game hotkey: %w", err)
	}

	if cfg.Server.Enabled {
		srv := server.New(logger, stats, version.String())
		eventListener.Register(srv.Handle)
		g.Go(optional(logger, "http server", func() error {
			return srv.Listen(ctx, cfg.Server.Port)
		}))

		if cfg.Ngrok.Enabled && cfg.Ngrok.Authtoken == "" && os.Getenv("NGROK_AUTHTOKEN") == "" {
			logger.Warn("ngrok enabled but no authtoken set; skipping tunnel start")
		} else if cfg.Ngrok.Enabled {
			g.Go(optional(logger, "ngrok", func() error {
				return ngrokremote.Serve(ctx, ngrokremote.OptionsFromConfig(cfg), logger, eventListener.Send)
			}))
		}

		if cfg.UI.Enabled {
			g.Go(wrapWithRecover(logger, func() error {
				// Closing the status window stops the bot.
				defer cancel()
				return runStatusWindow(ctx, cfg, cli.Config, logger)
			}))
		}
	}

	// Discord Bot initialization
	if cfg.Discord.Enabled {
		discordBot, err := discord.NewBot(discord.Options{
			Token:            cfg.Discord.Token,
			ChannelID:        cfg.Discord.ChannelID,
			Admins:           cfg.Discord.BotAdmins,
			UseWebhook:       cfg.Discord.UseWebhook,
			WebhookURL:       cfg.Discord.WebhookURL,
			MatchMessages:    cfg.Discord.EnableMatchMessages,
			RecoveryMessages: cfg.Discord.EnableRecoveryMessages,
		}, stats)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
		} else {
			eventListener.Register(discordBot.Handle)
			if !cfg.Discord.UseWebhook {
				g.Go(optional(logger, "discord", func() error {
					return discordBot.Start(ctx)
				}))
			}
		}
	}

	// Telegram Bot initialization
	if cfg.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, stats, logger)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
		} else {
			eventListener.Register(telegramBot.Handle)
			g.Go(optional(logger, "telegram", func() error {
				defer telegramBot.Close()
				return telegramBot.Start(ctx)
			}))
		}
	}

	if cfg.UpdateCheck.Enabled {
		g.Go(wrapWithRecover(logger, func() error {
			timeout := bctx.Timeouts.Get(config.UpdateNotifier)
			checkCtx, cancelCheck := context.WithTimeout(ctx, timeout)
			defer cancelCheck()
			updater.NewChecker(logger, cfg.UpdateCheck.Repository, config.Version, timeout).Check(checkCtx)
			return nil
		}))
	}

	g.Go(wrapWithRecover(logger, func() error {
		return eventListener.Listen(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		return hotkeys.Run(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		return monitor.Run(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		if !controller.ClientRunning() {
			logger.Info("League client is not running, launching it")
			if err := controller.Launch(); err != nil {
				logger.Error("Could not launch the League client", slog.Any("error", err))
			}
		}
		supervisor.Connect(ctx)
		return supervisor.Run(ctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		<-ctx.Done()
		logger.Info("tftbot shutting down...")
		cancel()
		return nil
	}))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func pauseMessage(paused bool) string {
	if paused {
		return "Bot paused"
	}
	return "Bot resumed"
}

func playNextGameMessage(enabled bool) string {
	if enabled {
		return "Next game will be played"
	}
	return "Stopping after the current game"
}
