package liveclient

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	botCtx "github.com/hectorgimenez/tftbot/internal/context"
	"github.com/hectorgimenez/tftbot/internal/lcu"
)

const (
	DefaultBaseURL = "https://127.0.0.1:2999"

	requestTimeout = 10 * time.Second
	pollInterval   = time.Second
)

// Reconnector is the part of the session client needed to rejoin a match the game client dropped out of.
type Reconnector interface {
	ShouldReconnect(ctx context.Context) bool
	Reconnect(ctx context.Context) bool
}

// Client talks to the in-match telemetry API the game serves while a match is running.
type Client struct {
	ctx     *botCtx.Context
	logger  *slog.Logger
	baseURL string
	http    *http.Client
	session Reconnector
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{TLSClientConfig: lcu.TLSConfig(pool)}
	}
}

func NewClient(ctx *botCtx.Context, session Reconnector, opts ...Option) *Client {
	c := &Client{
		ctx:     ctx,
		logger:  ctx.Logger,
		baseURL: DefaultBaseURL,
		session: session,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: &http.Transport{TLSClientConfig: lcu.TLSConfig(lcu.RiotRootCAs())},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WaitForGameWindow polls the API once per second, exactly timeout/1s times. Connection errors while the
// match is waiting for a reconnect trigger one on the session client before the next poll.
func (c *Client) WaitForGameWindow(ctx context.Context, timeout time.Duration) bool {
	ticks := int(timeout / pollInterval)
	c.logger.Info("Waiting for the game window", slog.Duration("timeout", timeout))

	for i := 0; i < ticks; i++ {
		status, err := c.get(ctx, "/liveclientdata/activeplayername", nil)
		if err == nil && status == http.StatusOK {
			return true
		}
		if err != nil && c.session != nil && c.session.ShouldReconnect(ctx) {
			c.logger.Info("Match is waiting for a reconnect")
			c.session.Reconnect(ctx)
		}
		if i == ticks-1 {
			break
		}
		if err = c.ctx.Sleep(ctx, pollInterval); err != nil {
			return false
		}
	}
	c.logger.Warn("Game window did not come up", slog.Duration("timeout", timeout))

	return false
}

// IsDead reports true when health is at or below zero, and also when the API can not be read.
func (c *Client) IsDead(ctx context.Context) bool {
	var player activePlayer
	status, err := c.get(ctx, "/liveclientdata/activeplayer", &player)
	if err != nil || status != http.StatusOK {
		c.logger.Debug("Could not read the active player, assuming that we are dead")
		return true
	}

	return player.ChampionStats.CurrentHealth <= 0
}

// Level returns the player level, 0 means unknown.
func (c *Client) Level(ctx context.Context) int {
	var player activePlayer
	status, err := c.get(ctx, "/liveclientdata/activeplayer", &player)
	if err != nil || status != http.StatusOK {
		return 0
	}

	return player.Level
}

func (c *Client) GameLoaded(ctx context.Context) bool {
	var events struct {
		Events []json.RawMessage `json:"Events"`
	}
	status, err := c.get(ctx, "/liveclientdata/eventdata", &events)

	return err == nil && status == http.StatusOK && len(events.Events) > 0
}

type activePlayer struct {
	Level         int `json:"level"`
	ChampionStats struct {
		CurrentHealth float64 `json:"currentHealth"`
	} `json:"championStats"`
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("malformed response from %s: %w", path, err)
	}

	return resp.StatusCode, nil
}
