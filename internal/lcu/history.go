package lcu

import (
	"context"
	"fmt"
)

const winPlacement = 4

func (c *Client) PlayerUID(ctx context.Context) (string, bool) {
	var login struct {
		PUUID string `json:"puuid"`
	}
	if !c.getJSON(ctx, "/lol-login/v1/session", &login) || login.PUUID == "" {
		return "", false
	}

	return login.PUUID, true
}

// WinRate returns the percentage of top four finishes over the last n (1..20) matches, formatted like "37.50",
// or "ERROR" when the history can not be read.
func (c *Client) WinRate(ctx context.Context, n int) string {
	n = max(1, min(n, 20))

	puuid, ok := c.PlayerUID(ctx)
	if !ok {
		return "ERROR"
	}

	var history struct {
		Games []struct {
			JSON struct {
				Participants []struct {
					PUUID     string `json:"puuid"`
					Placement int    `json:"placement"`
				} `json:"participants"`
			} `json:"json"`
		} `json:"games"`
	}
	path := fmt.Sprintf("/lol-match-history/v1/products/tft/%s/matches?count=%d", puuid, n)
	if !c.getJSON(ctx, path, &history) || len(history.Games) == 0 {
		return "ERROR"
	}

	wins := 0
	for _, g := range history.Games {
		for _, p := range g.JSON.Participants {
			if p.PUUID == puuid && p.Placement <= winPlacement {
				wins++
				break
			}
		}
	}

	return fmt.Sprintf("%.2f", float64(wins)/float64(len(history.Games))*100)
}
