package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/event"
	"github.com/hectorgimenez/tftbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStats bot.Stats

func (s staticStats) Snapshot() bot.Stats { return bot.Stats(s) }

func newTestServer(t *testing.T) (*HttpServer, *httptest.Server) {
	t.Helper()
	s := New(testutil.DiscardLogger(), staticStats{Phase: "queueing", Matches: 4}, "v1.2.0")

	ctx, cancel := context.WithCancel(context.Background())
	go s.wsServer.Run(ctx)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return s, ts
}

func TestStatusEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "v1.2.0", got.Version)
	assert.Equal(t, "queueing", got.Stats.Phase)
	assert.Equal(t, 4, got.Stats.Matches)

	post, err := http.Post(ts.URL+"/api/status", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode, "the status surface is read only")
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebsocketPushesEvents(t *testing.T) {
	s, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var greeting wsMessage
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, "status", greeting.Type)
	assert.Equal(t, "v1.2.0", greeting.Version)

	be := event.Text("tft", "Match finished")
	require.NoError(t, s.Handle(context.Background(), event.MatchFinished(be, "m-1", event.FinishedSurrender, 20*time.Minute)))

	var got struct {
		Type       string `json:"type"`
		Supervisor string `json:"supervisor"`
		Message    string `json:"message"`
		Data       struct {
			MatchID  string  `json:"matchId"`
			Reason   string  `json:"reason"`
			Duration float64 `json:"duration"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "match_finished", got.Type)
	assert.Equal(t, "tft", got.Supervisor)
	assert.Equal(t, "m-1", got.Data.MatchID)
	assert.Equal(t, "surrender", got.Data.Reason)
	assert.InDelta(t, 1200, got.Data.Duration, 0.001)
}

func TestBroadcastNeverBlocks(t *testing.T) {
	ws := NewWebSocketServer(testutil.DiscardLogger(), nil)
	for i := 0; i < cap(ws.broadcast); i++ {
		require.True(t, ws.Broadcast([]byte("x")))
	}
	assert.False(t, ws.Broadcast([]byte("x")))
}
