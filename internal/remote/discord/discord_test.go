package discord

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStats bot.Stats

func (s staticStats) Snapshot() bot.Stats { return bot.Stats(s) }

type webhookMessage struct {
	content string
	file    string
}

func newWebhookServer(t *testing.T) (*httptest.Server, func() []webhookMessage) {
	var mu sync.Mutex
	var got []webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		var params discordgo.WebhookParams
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payload_json")), &params))
		assert.Equal(t, webhookUsername, params.Username)
		msg := webhookMessage{content: params.Content}
		if _, fh, err := r.FormFile("file"); err == nil {
			msg.file = fh.Filename
		}
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []webhookMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]webhookMessage(nil), got...)
	}
}

func TestWebhookNotifications(t *testing.T) {
	srv, messages := newWebhookServer(t)
	b, err := NewBot(Options{UseWebhook: true, WebhookURL: srv.URL, MatchMessages: true, RecoveryMessages: true}, staticStats{})
	require.NoError(t, err)
	ctx := context.Background()
	be := event.Text("tft", "Match finished: ok")

	require.NoError(t, b.Handle(ctx, event.MatchFinished(be, "id", event.FinishedOK, 31*time.Minute)))
	require.NoError(t, b.Handle(ctx, event.Recovery(event.Text("tft", "Restarting the League client"), event.RecoveryRestart, "stuck")))
	require.NoError(t, b.Handle(ctx, event.Recovery(event.Text("tft", "Waiting for the network"), event.RecoveryWait, "offline")))
	require.NoError(t, b.Handle(ctx, event.PhaseChanged(event.Text("tft", "queueing -> loading"), "queueing", "loading")))
	require.NoError(t, b.Handle(ctx, event.WithScreenshot("tft", "Lifecycle failed", image.NewRGBA(image.Rect(0, 0, 8, 8)))))

	got := messages()
	require.Len(t, got, 3)
	assert.Equal(t, "**[tft]** Match finished: ok after 31m0s", got[0].content)
	assert.Equal(t, "**[tft]** Restarting the League client (restart: stuck)", got[1].content)
	assert.Equal(t, "Screenshot.jpeg", got[2].file)
}

func TestMatchMessagesCanBeDisabled(t *testing.T) {
	srv, messages := newWebhookServer(t)
	b, err := NewBot(Options{UseWebhook: true, WebhookURL: srv.URL}, staticStats{})
	require.NoError(t, err)

	require.NoError(t, b.Handle(context.Background(), event.MatchFinished(event.Text("tft", "done"), "id", event.FinishedOK, time.Minute)))
	require.NoError(t, b.Handle(context.Background(), event.NgrokTunnel("https://example.ngrok.app")))

	got := messages()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].content, "https://example.ngrok.app")
}

func TestWebhookRequiresURL(t *testing.T) {
	_, err := NewBot(Options{UseWebhook: true}, staticStats{})
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	b := &Bot{stats: staticStats{Phase: "in_match", Matches: 2, Paused: true}}

	_, _, ok := b.command("hello")
	assert.False(t, ok)

	reply, _, ok := b.command("!status")
	require.True(t, ok)
	assert.Equal(t, "Bot is in_match (paused)", reply)

	_, embed, ok := b.command("!stats")
	require.True(t, ok)
	require.NotNil(t, embed)
	assert.Equal(t, "2", embed.Fields[2].Value)

	reply, _, ok = b.command("!stop")
	require.True(t, ok)
	assert.Contains(t, reply, "Unknown command")
}

func TestWebhookRetriesRateLimitedPost(t *testing.T) {
	var mu sync.Mutex
	posts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		posts++
		if posts == 1 {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	require.NoError(t, newWebhookClient(srv.URL).Send(context.Background(), "hi", "", nil))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, posts)
}

func TestWebhookReportsRejectedPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown webhook", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	err := newWebhookClient(srv.URL).Send(context.Background(), "hi", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown webhook")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, retryAfter("1.5"))
	assert.Equal(t, time.Second, retryAfter(""))
	assert.Equal(t, maxRetryAfter, retryAfter("60"))
}
