package lcu

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hectorgimenez/tftbot/internal/config"
	botCtx "github.com/hectorgimenez/tftbot/internal/context"
)

const (
	requestTimeout = 10 * time.Second
	pollInterval   = time.Second

	// TFT normal games
	QueueID = 1090
)

// ProcessLookup finds the running League client and returns its command line arguments.
// It returns ErrProcessNotFound while the client is not running.
type ProcessLookup interface {
	ClientCommandLine() ([]string, error)
}

// Session is one authenticated connection to the control API. It is never mutated, a reconnect builds a new one.
type Session struct {
	baseURL string
	token   string
	http    *http.Client
}

func newSession(creds Credentials, roots *x509.CertPool) *Session {
	return &Session{
		baseURL: fmt.Sprintf("https://127.0.0.1:%d", creds.Port),
		token:   creds.Token,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: &http.Transport{TLSClientConfig: TLSConfig(roots)},
		},
	}
}

func (s *Session) close() {
	s.http.CloseIdleConnections()
}

type Client struct {
	ctx       *botCtx.Context
	logger    *slog.Logger
	processes ProcessLookup
	roots     *x509.CertPool

	mu         sync.RWMutex
	session    *Session
	installDir string
}

type Option func(*Client)

// WithRootCAs replaces the pinned Riot root, only tests need this.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		c.roots = pool
	}
}

func NewClient(ctx *botCtx.Context, processes ProcessLookup, opts ...Option) *Client {
	c := &Client{
		ctx:       ctx,
		logger:    ctx.Logger,
		processes: processes,
		roots:     RiotRootCAs(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect finds the client process, replaces the current session and waits for the API to answer.
// With waitForAvailability it also waits until the client reports it can start games.
func (c *Client) Connect(ctx context.Context, waitForAvailability bool) error {
	c.logger.Info("Waiting for the League client", slog.Duration("timeout", c.ctx.Timeouts.Get(config.LeagueClient)))

	args, err := c.findProcess(ctx)
	if err != nil {
		return err
	}

	creds, err := ParseCommandLine(args)
	if err != nil {
		return &ConnectError{Reason: FailureBadArguments, Err: err}
	}
	c.logger.Debug("League client process found", slog.Int("port", creds.Port))

	session := newSession(creds, c.roots)
	c.mu.Lock()
	if c.session != nil {
		c.session.close()
	}
	c.session = session
	c.installDir = creds.InstallDirectory
	c.mu.Unlock()

	c.logger.Info("League client found, trying to connect to it", slog.Duration("timeout", c.ctx.Timeouts.Get(config.ClientConnect)))
	if err = c.pollUntil(ctx, config.ClientConnect, func() bool {
		status, err := c.do(ctx, http.MethodGet, "/riotclient/ux-state", nil, nil)
		return err == nil && status == http.StatusOK
	}); err != nil {
		return &ConnectError{Reason: FailureUnreachable, Err: err}
	}
	c.logger.Info("Successfully connected to the League client")

	if !waitForAvailability {
		return nil
	}

	c.logger.Info("Waiting for client availability", slog.Duration("timeout", c.ctx.Timeouts.Get(config.ClientAvailability)))
	if err = c.pollUntil(ctx, config.ClientAvailability, func() bool {
		var availability struct {
			IsAvailable bool `json:"isAvailable"`
		}
		return c.getJSON(ctx, "/lol-gameflow/v1/availability", &availability) && availability.IsAvailable
	}); err != nil {
		return &ConnectError{Reason: FailureUnavailable, Err: err}
	}
	c.logger.Info("Client available")

	return nil
}

func (c *Client) findProcess(ctx context.Context) ([]string, error) {
	var args []string
	var lastErr error
	err := c.pollUntil(ctx, config.LeagueClient, func() bool {
		args, lastErr = c.processes.ClientCommandLine()
		if lastErr != nil && !errors.Is(lastErr, ErrProcessNotFound) {
			c.logger.Debug("Error reading League client process", slog.Any("error", lastErr))
		}
		return lastErr == nil
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, &ConnectError{Reason: FailureProcessNotFound, Err: lastErr}
	}

	return args, nil
}

// pollUntil runs check once per second, at most the configured number of times for the named timeout.
func (c *Client) pollUntil(ctx context.Context, timeout config.Timeout, check func() bool) error {
	ticks := c.ctx.Timeouts.Ticks(timeout)
	for i := 0; i < ticks; i++ {
		if check() {
			return nil
		}
		if err := c.ctx.Sleep(ctx, pollInterval); err != nil {
			return err
		}
	}

	return fmt.Errorf("gave up after %d attempts (%s)", ticks, timeout)
}

func (c *Client) current() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.session
}

// InstallDirectory is read from the client arguments, empty before the first Connect.
func (c *Client) InstallDirectory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.installDir
}

var errNoSession = errors.New("not connected to the League client")

// do sends one request on the current session. Transport failures are returned as errors, any HTTP status is not.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	s := c.current()
	if s == nil {
		return 0, errNoSession
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth("riot", s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %v", errMalformed, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}

var errMalformed = errors.New("malformed response")

// getJSON reports false on any failure, callers treat that as the conservative answer.
func (c *Client) getJSON(ctx context.Context, path string, out any) bool {
	status, err := c.do(ctx, http.MethodGet, path, nil, out)
	if err != nil {
		c.logger.Debug("League client request failed", slog.String("path", path), slog.Any("error", err))
		return false
	}

	return status == http.StatusOK
}

func (c *Client) send(ctx context.Context, method, path string, body any, expected ...int) bool {
	status, err := c.do(ctx, method, path, body, nil)
	if err != nil {
		c.logger.Debug("League client request failed", slog.String("path", path), slog.Any("error", err))
		return false
	}
	for _, e := range expected {
		if status == e {
			return true
		}
	}
	c.logger.Debug("Unexpected League client response", slog.String("path", path), slog.Int("status", status))

	return false
}
