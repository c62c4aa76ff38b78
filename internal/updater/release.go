package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const githubAPI = "https://api.github.com"

type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

// Checker looks up the latest GitHub release of the bot. It only notifies, nothing is downloaded.
type Checker struct {
	logger     *slog.Logger
	client     *http.Client
	baseURL    string
	repository string
	current    string
}

// NewChecker takes the repository as owner/name. timeout bounds the whole lookup.
func NewChecker(logger *slog.Logger, repository, current string, timeout time.Duration) *Checker {
	return &Checker{
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
		baseURL:    githubAPI,
		repository: strings.Trim(repository, "/ "),
		current:    current,
	}
}

func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	if strings.Count(c.repository, "/") != 1 {
		return nil, fmt.Errorf("repository %q is not owner/name", c.repository)
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build release request: %w", err)
	}
	req.Header.Set("User-Agent", "tftbot-updater")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		bodyText := strings.TrimSpace(string(body))
		if bodyText != "" {
			return nil, fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, bodyText)
		}
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var r Release
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}

	return &r, nil
}

// Newer reports whether latest is a greater semantic version than current. Development builds never are outdated.
func Newer(current, latest string) bool {
	cur, lat := canonical(current), canonical(latest)
	if !semver.IsValid(cur) || !semver.IsValid(lat) {
		return false
	}

	return semver.Compare(lat, cur) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Check logs when a newer release exists. Failures are logged and otherwise ignored.
func (c *Checker) Check(ctx context.Context) (*Release, bool) {
	r, err := c.Latest(ctx)
	if err != nil {
		c.logger.Warn("Update check failed", slog.Any("error", err))
		return nil, false
	}
	if r.Draft || r.Prerelease || !Newer(c.current, r.TagName) {
		c.logger.Debug("Bot is up to date", slog.String("current", c.current), slog.String("latest", r.TagName))
		return r, false
	}

	c.logger.Info("A new version is available",
		slog.String("current", c.current),
		slog.String("latest", r.TagName),
		slog.String("url", r.HTMLURL),
	)

	return r, true
}
