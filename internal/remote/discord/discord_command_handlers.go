package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/event"
)

func statusLine(s bot.Stats) string {
	state := s.Phase
	if s.Paused {
		state += " (paused)"
	}
	if s.MatchID != "" {
		return fmt.Sprintf("Bot is %s, current match running for %s", state, time.Since(s.MatchStart).Round(time.Second))
	}

	return fmt.Sprintf("Bot is %s", state)
}

func statsEmbed(s bot.Stats) *discordgo.MessageEmbed {
	avg := "-"
	if s.Matches > 0 {
		avg = (s.PlayTime / time.Duration(s.Matches)).Round(time.Second).String()
	}

	return &discordgo.MessageEmbed{
		Title: "TFT bot stats",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Phase", Value: s.Phase, Inline: true},
			{Name: "Uptime", Value: time.Since(s.SessionStart).Round(time.Second).String(), Inline: true},
			{Name: "Matches", Value: fmt.Sprintf("%d", s.Matches), Inline: true},
			{Name: "Play time", Value: s.PlayTime.Round(time.Second).String(), Inline: true},
			{Name: "Average match", Value: avg, Inline: true},
			{Name: "Surrendered", Value: fmt.Sprintf("%d", s.Finished[event.FinishedSurrender]), Inline: true},
			{Name: "Errors", Value: fmt.Sprintf("%d", s.Finished[event.FinishedError]), Inline: true},
			{Name: "Client restarts", Value: fmt.Sprintf("%d", s.Recoveries[event.RecoveryRestart]), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "TFT bot commands",
		Description: "Read only, use the hotkeys on the bot machine to pause it",
		Color:       0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "!status", Value: "Current phase and match"},
			{Name: "!stats", Value: "Matches played, play time and recoveries"},
			{Name: "!help", Value: "This message"},
		},
	}
}
