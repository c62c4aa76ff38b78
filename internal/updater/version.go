package updater

import (
	"strings"
	"time"
)

// buildCommitHash is injected at build time via -ldflags.
var buildCommitHash string

// buildCommitTime is injected at build time via -ldflags (RFC3339).
var buildCommitTime string

type VersionInfo struct {
	Version    string
	CommitHash string
	CommitDate time.Time
}

// CurrentVersion combines the release version with the embedded commit, when the build carries one.
func CurrentVersion(version string) VersionInfo {
	v := VersionInfo{Version: version}
	v.CommitHash = shortHash(strings.TrimSpace(buildCommitHash))
	if buildCommitTime != "" {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(buildCommitTime)); err == nil {
			v.CommitDate = parsed
		}
	}

	return v
}

func (v VersionInfo) String() string {
	if v.CommitHash == "" {
		return v.Version
	}
	return v.Version + " (" + v.CommitHash + ")"
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
