package system

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hectorgimenez/tftbot/internal/config"
)

const (
	DefaultLeaguePath = `C:\Riot Games\League of Legends`
	DefaultRiotPath   = `C:\Riot Games\Riot Client`

	uninstallKey = `Software\Microsoft\Windows\CurrentVersion\Uninstall\Riot Game league_of_legends.live`
	deceiveExe   = "Deceive.exe"
)

// Process image names, the kill order matters: the game first, the launcher last.
const (
	GameProcess         = "League of Legends.exe"
	ClientProcess       = "LeagueClient.exe"
	ClientUxProcess     = "LeagueClientUx.exe"
	RiotClientUxProcess = "RiotClientUx.exe"
	RiotServicesProcess = "RiotClientServices.exe"
	DeceiveProcess      = deceiveExe
)

var clientProcesses = []string{GameProcess, ClientUxProcess, ClientProcess, RiotClientUxProcess, RiotServicesProcess, DeceiveProcess}

var LeagueLaunchArgs = []string{"--launch-product=league_of_legends", "--launch-patchline=live"}

type InstallPaths struct {
	League  string
	Riot    string
	Deceive string
}

// RiotServices is the launcher executable.
func (p InstallPaths) RiotServices() string {
	return p.Riot + `\` + RiotServicesProcess
}

var riotServicesPattern = regexp.MustCompile(`(?i)^"?(.*\\Riot Client)\\RiotClientServices\.exe`)

// ParseRiotClientPath extracts the Riot client directory from League's uninstall command,
// e.g. `"C:\Riot Games\Riot Client\RiotClientServices.exe" --uninstall-product=league_of_legends`.
func ParseRiotClientPath(uninstall string) (string, bool) {
	m := riotServicesPattern.FindStringSubmatch(strings.TrimSpace(uninstall))
	if m == nil {
		return "", false
	}

	return m[1], true
}

// registryReader reads one string value from the current user hive.
type registryReader func(path, name string) (string, error)

// discover resolves every install path, config overrides win over the registry, the registry over defaults.
func discover(cfg *config.Config, logger *slog.Logger, read registryReader, home string) InstallPaths {
	paths := InstallPaths{League: DefaultLeaguePath, Riot: DefaultRiotPath}

	if cfg.OverrideInstallLocationLeagueClient != "" {
		logger.Warn("Override path supplied for the League client", slog.String("path", cfg.OverrideInstallLocationLeagueClient))
		paths.League = cfg.OverrideInstallLocationLeagueClient
	} else if v, err := read(uninstallKey, "InstallLocation"); err == nil && v != "" {
		paths.League = v
	} else if err != nil {
		logger.Debug("Could not read the League install location", slog.Any("error", err))
	}

	if cfg.OverrideInstallLocationRiotClient != "" {
		logger.Warn("Override path supplied for the Riot client", slog.String("path", cfg.OverrideInstallLocationRiotClient))
		paths.Riot = cfg.OverrideInstallLocationRiotClient
	} else if v, err := read(uninstallKey, "UninstallString"); err == nil {
		if riot, ok := ParseRiotClientPath(v); ok {
			paths.Riot = riot
		}
	}

	if cfg.UseDeceive {
		paths.Deceive = cfg.InstallLocationDeceive
		if paths.Deceive == "" && home != "" {
			paths.Deceive = findDeceive(filepath.Join(home, "Downloads"))
		}
		if paths.Deceive == "" {
			logger.Warn("Deceive is enabled but Deceive.exe was not found, launching the client directly")
		}
	}

	paths.League = strings.TrimRight(paths.League, `\/`)
	paths.Riot = strings.TrimRight(paths.Riot, `\/`)
	logger.Debug("Install paths resolved",
		slog.String("league", paths.League),
		slog.String("riot", paths.Riot),
		slog.String("deceive", paths.Deceive),
	)

	return paths
}

func findDeceive(dir string) string {
	found := ""
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), deceiveExe) {
			found = path
			return fs.SkipAll
		}
		return nil
	})

	return found
}

// Discover finds the League, Riot client and Deceive install directories.
func Discover(cfg *config.Config, logger *slog.Logger) InstallPaths {
	home, _ := os.UserHomeDir()

	return discover(cfg, logger, readRegistryString, home)
}
