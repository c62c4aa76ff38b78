package lcu

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	status int
	body   string
}

type fakeLCU struct {
	mu        sync.Mutex
	responses map[string]response
	hits      map[string]int
	auth      []string
}

func newFakeLCU() *fakeLCU {
	return &fakeLCU{
		responses: map[string]response{
			"GET /riotclient/ux-state": {http.StatusOK, `"ShowMain"`},
		},
		hits: map[string]int{},
	}
}

func (f *fakeLCU) set(key string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = response{status, body}
}

func (f *fakeLCU) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeLCU) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	key := r.Method + " " + r.URL.Path
	f.hits[key]++
	user, pass, _ := r.BasicAuth()
	f.auth = append(f.auth, user+":"+pass)
	resp, found := f.responses[key]
	f.mu.Unlock()

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(resp.status)
	fmt.Fprint(w, resp.body)
}

type fakeProcesses struct {
	mu    sync.Mutex
	ports []string
	calls int
}

func (p *fakeProcesses) ClientCommandLine() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.ports) == 0 {
		return nil, ErrProcessNotFound
	}
	port := p.ports[0]
	if len(p.ports) > 1 {
		p.ports = p.ports[1:]
	}

	return []string{
		`C:\Riot Games\League of Legends\LeagueClientUx.exe`,
		"--install-directory=C:/Riot Games/League of Legends",
		"--app-port=" + port,
		"--remoting-auth-token=s3cr3t",
	}, nil
}

func portOf(t *testing.T, srv *httptest.Server) string {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Port()
}

func poolOf(servers ...*httptest.Server) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, s := range servers {
		pool.AddCert(s.Certificate())
	}
	return pool
}

func newTestClient(t *testing.T, procs ProcessLookup, pool *x509.CertPool, timeouts map[config.Timeout]int) (*Client, func()) {
	cfg := testutil.DefaultConfig()
	cfg.Timeouts = config.NewTimeoutTable(timeouts)
	ctx, mock := testutil.NewContext(t, cfg)
	stop := testutil.DriveClock(t, mock)

	return NewClient(ctx, procs, WithRootCAs(pool)), stop
}

func TestParseCommandLine(t *testing.T) {
	creds, err := ParseCommandLine([]string{
		"LeagueClientUx.exe",
		`"--install-directory=C:\Riot Games\League of Legends"`,
		"--app-port=51234",
		"--remoting-auth-token=abc=def",
		"--no-rads",
	})
	require.NoError(t, err)
	assert.Equal(t, `C:\Riot Games\League of Legends`, creds.InstallDirectory)
	assert.Equal(t, 51234, creds.Port)
	assert.Equal(t, "abc=def", creds.Token)

	_, err = ParseCommandLine([]string{"--remoting-auth-token=x"})
	assert.Error(t, err)
	_, err = ParseCommandLine([]string{"--app-port=1"})
	assert.Error(t, err)
}

func TestConnectWaitsForAvailability(t *testing.T) {
	lcu := newFakeLCU()
	lcu.set("GET /lol-gameflow/v1/availability", http.StatusOK, `{"isAvailable":true}`)
	srv := httptest.NewTLSServer(lcu)
	defer srv.Close()

	client, stop := newTestClient(t, &fakeProcesses{ports: []string{portOf(t, srv)}}, poolOf(srv), nil)
	defer stop()

	require.NoError(t, client.Connect(context.Background(), true))
	assert.Equal(t, "C:/Riot Games/League of Legends", client.InstallDirectory())
	assert.Equal(t, 1, lcu.count("GET /lol-gameflow/v1/availability"))
	assert.Contains(t, lcu.auth, "riot:s3cr3t")
}

func TestConnectProcessSearchIsBounded(t *testing.T) {
	procs := &fakeProcesses{}
	client, stop := newTestClient(t, procs, x509.NewCertPool(), map[config.Timeout]int{config.LeagueClient: 4})
	defer stop()

	err := client.Connect(context.Background(), false)

	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, FailureProcessNotFound, connErr.Reason)
	assert.ErrorIs(t, err, ErrProcessNotFound)
	assert.Equal(t, 4, procs.calls)
}

func TestConnectUnavailableClient(t *testing.T) {
	lcu := newFakeLCU()
	lcu.set("GET /lol-gameflow/v1/availability", http.StatusOK, `{"isAvailable":false}`)
	srv := httptest.NewTLSServer(lcu)
	defer srv.Close()

	client, stop := newTestClient(t, &fakeProcesses{ports: []string{portOf(t, srv)}}, poolOf(srv),
		map[config.Timeout]int{config.ClientAvailability: 3})
	defer stop()

	err := client.Connect(context.Background(), true)

	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, FailureUnavailable, connErr.Reason)
	assert.Equal(t, 3, lcu.count("GET /lol-gameflow/v1/availability"))
}

func TestConnectRejectsUnpinnedCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(newFakeLCU())
	defer srv.Close()

	cfg := testutil.DefaultConfig()
	cfg.Timeouts = config.NewTimeoutTable(map[config.Timeout]int{config.ClientConnect: 2})
	ctx, mock := testutil.NewContext(t, cfg)
	stop := testutil.DriveClock(t, mock)
	defer stop()

	// Default pool only trusts the Riot root
	client := NewClient(ctx, &fakeProcesses{ports: []string{portOf(t, srv)}})

	err := client.Connect(context.Background(), false)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, FailureUnreachable, connErr.Reason)
}

func TestQueriesDegradeToFalse(t *testing.T) {
	lcu := newFakeLCU()
	srv := httptest.NewTLSServer(lcu)
	defer srv.Close()

	client, stop := newTestClient(t, &fakeProcesses{ports: []string{portOf(t, srv)}}, poolOf(srv), nil)
	defer stop()
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx, false))

	// Nothing configured, every endpoint answers 404
	assert.False(t, client.InLobby(ctx))
	assert.False(t, client.InQueue(ctx))
	assert.False(t, client.FoundQueue(ctx))
	assert.False(t, client.QueueAccepted(ctx))
	assert.False(t, client.InGame(ctx))
	assert.False(t, client.ShouldReconnect(ctx))
	assert.False(t, client.SessionExpired(ctx))

	lcu.set("GET /lol-lobby/v2/lobby", http.StatusOK, `{"gameConfig":`)
	assert.False(t, client.InLobby(ctx), "malformed json")
	lcu.set("GET /lol-gameflow/v1/session", http.StatusOK, `not json`)
	assert.False(t, client.InGame(ctx))
}

func TestQueries(t *testing.T) {
	lcu := newFakeLCU()
	srv := httptest.NewTLSServer(lcu)
	defer srv.Close()

	client, stop := newTestClient(t, &fakeProcesses{ports: []string{portOf(t, srv)}}, poolOf(srv), nil)
	defer stop()
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx, false))

	lcu.set("GET /lol-lobby/v2/lobby", http.StatusOK, `{"gameConfig":{"queueId":420}}`)
	assert.False(t, client.InLobby(ctx), "ranked lobby is not ours")
	lcu.set("GET /lol-lobby/v2/lobby", http.StatusOK, `{"gameConfig":{"queueId":1090}}`)
	assert.True(t, client.InLobby(ctx))

	lcu.set("GET /lol-lobby/v2/lobby/matchmaking/search-state", http.StatusOK, `{"searchState":"Searching"}`)
	assert.True(t, client.InQueue(ctx))
	assert.False(t, client.FoundQueue(ctx))
	lcu.set("GET /lol-lobby/v2/lobby/matchmaking/search-state", http.StatusOK, `{"searchState":"Found"}`)
	assert.True(t, client.InQueue(ctx))
	assert.True(t, client.FoundQueue(ctx))

	lcu.set("GET /lol-matchmaking/v1/ready-check", http.StatusOK, `{"playerResponse":"None"}`)
	assert.False(t, client.QueueAccepted(ctx))
	lcu.set("GET /lol-matchmaking/v1/ready-check", http.StatusOK, `{"playerResponse":"Accepted"}`)
	assert.True(t, client.QueueAccepted(ctx))

	for phase, inGame := range map[string]bool{
		"Lobby": false, "Matchmaking": false, "ChampSelect": true, "InProgress": true, "Reconnect": true, "EndOfGame": false,
	} {
		lcu.set("GET /lol-gameflow/v1/session", http.StatusOK, `{"phase":"`+phase+`"}`)
		assert.Equal(t, inGame, client.InGame(ctx), phase)
		assert.Equal(t, phase == "Reconnect", client.ShouldReconnect(ctx), phase)
	}

	lcu.set("GET /lol-login/v1/session", http.StatusOK, `{"state":"SUCCEEDED","puuid":"p1"}`)
	assert.False(t, client.SessionExpired(ctx))
	lcu.set("GET /lol-login/v1/session", http.StatusOK, `{"state":"ERROR"}`)
	assert.True(t, client.SessionExpired(ctx))
	lcu.set("GET /lol-login/v1/session", http.StatusOK, `{"state":"LOGGING_OUT","error":{"messageId":"LOGIN_SESSION_EXPIRED"}}`)
	assert.True(t, client.SessionExpired(ctx))
}

func TestCommandsCheckStatusCodes(t *testing.T) {
	lcu := newFakeLCU()
	srv := httptest.NewTLSServer(lcu)
	defer srv.Close()

	client, stop := newTestClient(t, &fakeProcesses{ports: []string{portOf(t, srv)}}, poolOf(srv), nil)
	defer stop()
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx, false))

	lcu.set("POST /lol-lobby/v2/lobby", http.StatusOK, `{}`)
	lcu.set("POST /lol-lobby/v2/lobby/matchmaking/search", http.StatusNoContent, ``)
	lcu.set("POST /lol-matchmaking/v1/ready-check/accept", http.StatusNoContent, ``)
	lcu.set("DELETE /lol-lobby/v2/lobby", http.StatusNoContent, ``)
	lcu.set("POST /lol-gameflow/v1/reconnect", http.StatusNoContent, ``)

	assert.True(t, client.CreateLobby(ctx))
	assert.True(t, client.StartQueue(ctx))
	assert.True(t, client.AcceptQueue(ctx))
	assert.True(t, client.DeleteLobby(ctx))
	assert.True(t, client.Reconnect(ctx))

	lcu.set("POST /lol-lobby/v2/lobby/matchmaking/search", http.StatusOK, `{}`)
	assert.False(t, client.StartQueue(ctx), "search only succeeds with 204")
	lcu.set("POST /lol-lobby/v2/lobby", http.StatusInternalServerError, `{}`)
	assert.False(t, client.CreateLobby(ctx))
}

func TestInGameReconnectsOnce(t *testing.T) {
	first := newFakeLCU()
	srv1 := httptest.NewTLSServer(first)
	second := newFakeLCU()
	second.set("GET /lol-gameflow/v1/session", http.StatusOK, `{"phase":"InProgress"}`)
	srv2 := httptest.NewTLSServer(second)
	defer srv2.Close()

	procs := &fakeProcesses{ports: []string{portOf(t, srv1), portOf(t, srv2)}}
	client, stop := newTestClient(t, procs, poolOf(srv1, srv2), nil)
	defer stop()
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx, false))

	srv1.Close()

	assert.True(t, client.InGame(ctx))
	assert.Equal(t, 2, procs.calls)
	assert.Equal(t, 1, second.count("GET /lol-gameflow/v1/session"))
}

func TestInGameGivesUpAfterOneReconnect(t *testing.T) {
	srv1 := httptest.NewTLSServer(newFakeLCU())
	port := portOf(t, srv1)

	procs := &fakeProcesses{ports: []string{port}}
	client, stop := newTestClient(t, procs, poolOf(srv1), map[config.Timeout]int{config.ClientConnect: 2})
	defer stop()
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx, false))

	srv1.Close()

	assert.False(t, client.InGame(ctx))
	assert.Equal(t, 2, procs.calls, "one initial lookup and exactly one reconnect")
}

func TestWinRate(t *testing.T) {
	lcu := newFakeLCU()
	lcu.set("GET /lol-login/v1/session", http.StatusOK, `{"puuid":"me"}`)
	lcu.set("GET /lol-match-history/v1/products/tft/me/matches", http.StatusOK, `{"games":[
		{"json":{"participants":[{"puuid":"other","placement":1},{"puuid":"me","placement":4}]}},
		{"json":{"participants":[{"puuid":"me","placement":5}]}},
		{"json":{"participants":[{"puuid":"me","placement":8}]}},
		{"json":{"participants":[{"puuid":"me","placement":2}]}}
	]}`)
	srv := httptest.NewTLSServer(lcu)
	defer srv.Close()

	client, stop := newTestClient(t, &fakeProcesses{ports: []string{portOf(t, srv)}}, poolOf(srv), nil)
	defer stop()
	ctx := context.Background()
	require.NoError(t, client.Connect(ctx, false))

	assert.Equal(t, "50.00", client.WinRate(ctx, 50))

	lcu.set("GET /lol-login/v1/session", http.StatusUnauthorized, ``)
	assert.Equal(t, "ERROR", client.WinRate(ctx, 5))
}

func TestNotConnected(t *testing.T) {
	client, stop := newTestClient(t, &fakeProcesses{}, x509.NewCertPool(), nil)
	defer stop()

	assert.False(t, client.InLobby(context.Background()))
	_, err := client.do(context.Background(), http.MethodGet, "/", nil, nil)
	assert.True(t, errors.Is(err, errNoSession))
}
