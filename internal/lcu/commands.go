package lcu

import (
	"context"
	"net/http"
)

func (c *Client) CreateLobby(ctx context.Context) bool {
	c.logger.Info("Creating a TFT lobby")

	return c.send(ctx, http.MethodPost, "/lol-lobby/v2/lobby", map[string]int{"queueId": QueueID}, http.StatusOK)
}

// DeleteLobby closes the current lobby, used to get out of "player is not ready" states.
func (c *Client) DeleteLobby(ctx context.Context) bool {
	c.logger.Info("Closing the lobby because it seems we got stuck")

	return c.send(ctx, http.MethodDelete, "/lol-lobby/v2/lobby", nil, http.StatusOK, http.StatusNoContent)
}

func (c *Client) StartQueue(ctx context.Context) bool {
	c.logger.Info("Starting the match finding queue")

	return c.send(ctx, http.MethodPost, "/lol-lobby/v2/lobby/matchmaking/search", nil, http.StatusNoContent)
}

func (c *Client) AcceptQueue(ctx context.Context) bool {
	c.logger.Info("Match ready, accepting the queue")

	return c.send(ctx, http.MethodPost, "/lol-matchmaking/v1/ready-check/accept", nil, http.StatusOK, http.StatusNoContent)
}

func (c *Client) Reconnect(ctx context.Context) bool {
	c.logger.Info("Reconnecting to the running match")

	return c.send(ctx, http.MethodPost, "/lol-gameflow/v1/reconnect", nil, http.StatusNoContent)
}
