package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/tftbot/internal/bot"
)

// StatsSource is the read only view of the running bot.
type StatsSource interface {
	Snapshot() bot.Stats
}

type Options struct {
	Token            string
	ChannelID        string
	Admins           []string
	UseWebhook       bool
	WebhookURL       string
	MatchMessages    bool
	RecoveryMessages bool
}

type Bot struct {
	discordSession *discordgo.Session
	channelID      string
	admins         []string
	stats          StatsSource
	useWebhook     bool
	webhookClient  *webhookClient
	matchMessages  bool
	recoveryMsgs   bool
}

func NewBot(opts Options, stats StatsSource) (*Bot, error) {
	b := &Bot{
		channelID:     opts.ChannelID,
		admins:        opts.Admins,
		stats:         stats,
		useWebhook:    opts.UseWebhook,
		matchMessages: opts.MatchMessages,
		recoveryMsgs:  opts.RecoveryMessages,
	}

	if opts.UseWebhook {
		if strings.TrimSpace(opts.WebhookURL) == "" {
			return nil, errors.New("webhook URL is required when using webhook mode")
		}
		b.webhookClient = newWebhookClient(opts.WebhookURL)
		return b, nil
	}

	dg, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	b.discordSession = dg

	return b, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.AddHandler(b.onMessageCreated)
	// MESSAGE_CONTENT is needed to read commands
	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	if err := b.discordSession.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()

	return b.discordSession.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	if !slices.Contains(b.admins, m.Author.ID) {
		return
	}

	reply, embed, ok := b.command(m.Content)
	if !ok {
		return
	}
	if embed != nil {
		s.ChannelMessageSendEmbed(m.ChannelID, embed)
		return
	}
	s.ChannelMessageSend(m.ChannelID, reply)
}

// command answers one chat command, ok is false for messages that are not commands.
func (b *Bot) command(content string) (string, *discordgo.MessageEmbed, bool) {
	if !strings.HasPrefix(content, "!") {
		return "", nil, false
	}

	prefix := strings.Fields(content)[0]
	switch prefix {
	case "!status":
		return statusLine(b.stats.Snapshot()), nil, true
	case "!stats":
		return "", statsEmbed(b.stats.Snapshot()), true
	case "!help":
		return "", helpEmbed(), true
	default:
		return fmt.Sprintf("Unknown command: `%s`. Type `!help` for available commands.", prefix), nil, true
	}
}
