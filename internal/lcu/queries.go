package lcu

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

const maxInGameReconnects = 1

var inGamePhases = map[string]bool{
	"ChampSelect": true,
	"GameStart":   true,
	"InProgress":  true,
	"Reconnect":   true,
}

type searchState struct {
	SearchState string `json:"searchState"`
}

type gameflowSession struct {
	Phase string `json:"phase"`
}

func (c *Client) InLobby(ctx context.Context) bool {
	var lobby struct {
		GameConfig struct {
			QueueID int `json:"queueId"`
		} `json:"gameConfig"`
	}
	if !c.getJSON(ctx, "/lol-lobby/v2/lobby", &lobby) {
		return false
	}

	return lobby.GameConfig.QueueID == QueueID
}

func (c *Client) InQueue(ctx context.Context) bool {
	c.logger.Debug("Checking if we are already in a queue")
	var state searchState
	if !c.getJSON(ctx, "/lol-lobby/v2/lobby/matchmaking/search-state", &state) {
		return false
	}

	return state.SearchState == "Searching" || state.SearchState == "Found"
}

func (c *Client) FoundQueue(ctx context.Context) bool {
	c.logger.Debug("Checking if we have found a match")
	var state searchState
	if !c.getJSON(ctx, "/lol-lobby/v2/lobby/matchmaking/search-state", &state) {
		return false
	}

	return state.SearchState == "Found"
}

func (c *Client) QueueAccepted(ctx context.Context) bool {
	var readyCheck struct {
		PlayerResponse string `json:"playerResponse"`
	}
	if !c.getJSON(ctx, "/lol-matchmaking/v1/ready-check", &readyCheck) {
		return false
	}

	return readyCheck.PlayerResponse == "Accepted"
}

// InGame reconnects and retries once when the client stopped answering, which happens when it restarts mid match.
func (c *Client) InGame(ctx context.Context) bool {
	c.logger.Debug("Checking if we are in a game")
	for attempt := 0; ; attempt++ {
		var session gameflowSession
		status, err := c.do(ctx, http.MethodGet, "/lol-gameflow/v1/session", nil, &session)
		if err != nil {
			if attempt >= maxInGameReconnects || errors.Is(err, errMalformed) || ctx.Err() != nil {
				return false
			}
			c.logger.Warn("Lost connection to the League client, reconnecting", slog.Any("error", err))
			if err = c.Connect(ctx, false); err != nil {
				c.logger.Warn("Reconnect to the League client failed", slog.Any("error", err))
				return false
			}
			continue
		}

		return status == http.StatusOK && inGamePhases[session.Phase]
	}
}

func (c *Client) ShouldReconnect(ctx context.Context) bool {
	c.logger.Debug("Checking if we should reconnect")
	var session gameflowSession
	if !c.getJSON(ctx, "/lol-gameflow/v1/session", &session) {
		return false
	}

	return session.Phase == "Reconnect"
}

// SessionExpired reports a login session the client can not recover from without a restart.
func (c *Client) SessionExpired(ctx context.Context) bool {
	var login struct {
		State string `json:"state"`
		Error *struct {
			MessageID string `json:"messageId"`
		} `json:"error"`
	}
	if !c.getJSON(ctx, "/lol-login/v1/session", &login) {
		return false
	}
	if login.State == "ERROR" {
		return true
	}

	return login.Error != nil && strings.Contains(strings.ToUpper(login.Error.MessageID), "SESSION_EXPIRED")
}
