package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/hectorgimenez/tftbot/internal/bot"
	"github.com/hectorgimenez/tftbot/internal/event"
)

//go:embed all:assets
var assetsFS embed.FS

type StatsSource interface {
	Snapshot() bot.Stats
}

// HttpServer is the read only status surface: a JSON endpoint, a websocket feed of bot events and a small page.
type HttpServer struct {
	logger   *slog.Logger
	server   *http.Server
	stats    StatsSource
	version  string
	wsServer *WebSocketServer
}

type statusResponse struct {
	Version string    `json:"version"`
	Stats   bot.Stats `json:"stats"`
}

// wsMessage is what websocket clients receive, Type "status" carries a bot.Stats in Data.
type wsMessage struct {
	Type       string    `json:"type"`
	Version    string    `json:"version,omitempty"`
	Supervisor string    `json:"supervisor,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

func New(logger *slog.Logger, stats StatsSource, version string) *HttpServer {
	s := &HttpServer{
		logger:  logger,
		stats:   stats,
		version: version,
	}
	s.wsServer = NewWebSocketServer(logger, s.statusMessage)

	return s
}

func (s *HttpServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.status)
	mux.HandleFunc("/ws", s.wsServer.HandleWebSocket)

	assets, _ := fs.Sub(assetsFS, "assets")
	mux.Handle("/", http.FileServer(http.FS(assets)))

	return mux
}

// Listen serves until ctx is done.
func (s *HttpServer) Listen(ctx context.Context, port int) error {
	go s.wsServer.Run(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			s.logger.Warn("Failed to stop the status server", slog.Any("error", err))
		}
	}()

	s.logger.Info("Status server listening", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HttpServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *HttpServer) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusResponse{Version: s.version, Stats: s.stats.Snapshot()}); err != nil {
		s.logger.Error("Failed to encode status", slog.Any("error", err))
	}
}

func (s *HttpServer) statusMessage() []byte {
	data, err := json.Marshal(wsMessage{
		Type:       "status",
		Version:    s.version,
		OccurredAt: time.Now(),
		Data:       s.stats.Snapshot(),
	})
	if err != nil {
		s.logger.Error("Failed to marshal status data", slog.Any("error", err))
		return nil
	}

	return data
}

// Handle pushes bot events to the websocket clients.
func (s *HttpServer) Handle(_ context.Context, e event.Event) error {
	msg := wsMessage{
		Type:       "event",
		Supervisor: e.Supervisor(),
		Message:    e.Message(),
		OccurredAt: e.OccurredAt(),
	}
	switch evt := e.(type) {
	case event.PhaseChangedEvent:
		msg.Type = "phase"
		msg.Data = map[string]string{"from": evt.From, "to": evt.To}
	case event.MatchStartedEvent:
		msg.Type = "match_started"
		msg.Data = map[string]string{"matchId": evt.MatchID}
	case event.MatchFinishedEvent:
		msg.Type = "match_finished"
		msg.Data = map[string]any{"matchId": evt.MatchID, "reason": evt.Reason, "duration": evt.Duration.Seconds()}
	case event.RecoveryEvent:
		msg.Type = "recovery"
		msg.Data = map[string]any{"tier": evt.Tier, "cause": evt.Cause}
	case event.GamePausedEvent:
		msg.Type = "paused"
		msg.Data = map[string]bool{"paused": evt.Paused}
	case event.PlayNextGameEvent:
		msg.Type = "play_next_game"
		msg.Data = map[string]bool{"enabled": evt.Enabled}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", msg.Type, err)
	}
	if !s.wsServer.Broadcast(data) {
		s.logger.Debug("Websocket queue is full, event dropped", slog.String("type", msg.Type))
	}

	return nil
}
