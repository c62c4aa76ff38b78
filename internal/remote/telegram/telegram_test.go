package telegram

import (
	"testing"
	"time"

	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	s := bot.Stats{
		Phase:      "queueing",
		Matches:    3,
		PlayTime:   95 * time.Minute,
		Finished:   map[event.FinishReason]int{event.FinishedSurrender: 2},
		Recoveries: map[event.RecoveryTier]int{event.RecoveryRestart: 1},
	}

	got, ok := reply("/stats", s)
	assert.True(t, ok)
	assert.Equal(t, "Matches: 3\nPlay time: 1h35m0s\nSurrendered: 2\nErrors: 0\nClient restarts: 1", got)

	got, ok = reply(" Status ", s)
	assert.True(t, ok)
	assert.Equal(t, "Phase: queueing", got)

	_, ok = reply("pause", s)
	assert.False(t, ok, "remote control is not supported")
}

func TestCloseNilBot(t *testing.T) {
	var b *Bot
	assert.NotPanics(t, b.Close)
}
