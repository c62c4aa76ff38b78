package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/jpillora/backoff"
)

const connectAttempts = 3

type StatsSource interface {
	Snapshot() bot.Stats
}

type Bot struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	stats  StatsSource
	logger *slog.Logger

	closeOnce sync.Once
}

// NewBot retries the initial API handshake, api.telegram.org drops connections now and then.
func NewBot(token string, chatID int64, stats StatsSource, logger *slog.Logger) (*Bot, error) {
	retry := &backoff.Backoff{Min: 2 * time.Second, Max: 8 * time.Second, Factor: 2}

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var api *tgbotapi.BotAPI
		if api, err = tgbotapi.NewBotAPI(token); err == nil {
			return &Bot{bot: api, chatID: chatID, stats: stats, logger: logger}, nil
		}
		if attempt == connectAttempts {
			break
		}

		delay := retry.Duration()
		logger.Warn("Telegram API connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", delay),
			slog.Any("error", err),
		)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("telegram unreachable after %d attempts: %w", connectAttempts, err)
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.Close()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				continue
			}
			if reply, ok := reply(update.Message.Text, b.stats.Snapshot()); ok {
				b.send(reply)
			}
		}
	}
}

// reply answers the read only chat commands.
func reply(text string, s bot.Stats) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(text, "/"))) {
	case "stats":
		return fmt.Sprintf("Matches: %d\nPlay time: %s\nSurrendered: %d\nErrors: %d\nClient restarts: %d",
			s.Matches,
			s.PlayTime.Round(time.Second),
			s.Finished[event.FinishedSurrender],
			s.Finished[event.FinishedError],
			s.Recoveries[event.RecoveryRestart],
		), true
	case "status":
		status := "Phase: " + s.Phase
		if s.Paused {
			status += " (paused)"
		}
		return status, true
	}

	return "", false
}

// Handle forwards match results and client restarts to the chat.
func (b *Bot) Handle(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.MatchFinishedEvent:
		b.send(fmt.Sprintf("[%s] %s after %s", evt.Supervisor(), evt.Message(), evt.Duration.Round(time.Second)))
	case event.RecoveryEvent:
		if evt.Tier == event.RecoveryRestart || evt.Tier == event.RecoveryForceKill {
			b.send(fmt.Sprintf("[%s] %s (%s)", evt.Supervisor(), evt.Message(), evt.Cause))
		}
	case event.NgrokTunnelEvent:
		b.send(evt.Message())
	}

	return nil
}

func (b *Bot) send(text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		b.logger.Warn("Telegram message failed", slog.Any("error", err))
	}
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}

// Close stops polling and drops idle connections to the API, it is safe to call more than once.
func (b *Bot) Close() {
	if b == nil || b.bot == nil {
		return
	}
	b.closeOnce.Do(func() {
		b.bot.StopReceivingUpdates()
		if c, ok := b.bot.Client.(*http.Client); ok && c != nil {
			if tr, ok := c.Transport.(*http.Transport); ok {
				tr.CloseIdleConnections()
			}
		}
	})
}
