package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hectorgimenez/tftbot/internal/game"
	"github.com/hectorgimenez/tftbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiotClientPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`"C:\Riot Games\Riot Client\RiotClientServices.exe" --uninstall-product=league_of_legends --uninstall-patchline=live`, `C:\Riot Games\Riot Client`, true},
		{`D:\Games\Riot Client\RiotClientServices.exe --uninstall-product=league_of_legends`, `D:\Games\Riot Client`, true},
		{`C:\Program Files\Something\uninstall.exe`, "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRiotClientPath(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func fakeRegistry(values map[string]string) registryReader {
	return func(path, name string) (string, error) {
		if path != uninstallKey {
			return "", errors.New("unexpected key")
		}
		v, ok := values[name]
		if !ok {
			return "", errors.New("value not found")
		}
		return v, nil
	}
}

func TestDiscover(t *testing.T) {
	logger := testutil.DiscardLogger()
	reg := fakeRegistry(map[string]string{
		"InstallLocation": `E:\League of Legends\`,
		"UninstallString": `"E:\Riot Client\RiotClientServices.exe" --uninstall-product=league_of_legends`,
	})

	t.Run("registry", func(t *testing.T) {
		paths := discover(testutil.DefaultConfig(), logger, reg, "")
		assert.Equal(t, `E:\League of Legends`, paths.League)
		assert.Equal(t, `E:\Riot Client`, paths.Riot)
		assert.Equal(t, `E:\Riot Client\RiotClientServices.exe`, paths.RiotServices())
		assert.Empty(t, paths.Deceive)
	})

	t.Run("defaults", func(t *testing.T) {
		paths := discover(testutil.DefaultConfig(), logger, fakeRegistry(nil), "")
		assert.Equal(t, DefaultLeaguePath, paths.League)
		assert.Equal(t, DefaultRiotPath, paths.Riot)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := testutil.DefaultConfig()
		cfg.OverrideInstallLocationLeagueClient = `F:\LoL`
		cfg.OverrideInstallLocationRiotClient = `F:\Riot`
		paths := discover(cfg, logger, reg, "")
		assert.Equal(t, `F:\LoL`, paths.League)
		assert.Equal(t, `F:\Riot`, paths.Riot)
	})

	t.Run("deceive in downloads", func(t *testing.T) {
		home := t.TempDir()
		dir := filepath.Join(home, "Downloads", "deceive-1.14")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Deceive.exe"), []byte("MZ"), 0o644))

		cfg := testutil.DefaultConfig()
		cfg.UseDeceive = true
		paths := discover(cfg, logger, reg, home)
		assert.Equal(t, filepath.Join(dir, "Deceive.exe"), paths.Deceive)
	})

	t.Run("configured deceive", func(t *testing.T) {
		cfg := testutil.DefaultConfig()
		cfg.UseDeceive = true
		cfg.InstallLocationDeceive = `C:\Tools\Deceive.exe`
		paths := discover(cfg, logger, reg, t.TempDir())
		assert.Equal(t, `C:\Tools\Deceive.exe`, paths.Deceive)
	})
}

type fakeProcs struct {
	mu        sync.Mutex
	alive     bool
	survive   int // kills that leave processes running
	kills     int
	started   [][]string
	closed    []game.Window
	runChecks int
}

func (f *fakeProcs) Running(...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runChecks++
	return f.alive
}

func (f *fakeProcs) Kill(...string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kills++
	if f.survive > 0 {
		f.survive--
		return 0, errors.New("access denied")
	}
	f.alive = false
	return 3, nil
}

func (f *fakeProcs) Start(path string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, append([]string{path}, args...))
	f.alive = true
	return nil
}

func (f *fakeProcs) CloseWindow(w game.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, w)
	return nil
}

func TestRestartClient(t *testing.T) {
	ctx, mock := testutil.NewContext(t, nil)
	stop := testutil.DriveClock(t, mock)
	defer stop()

	procs := &fakeProcs{alive: true}
	c := NewClientController(ctx, procs, InstallPaths{League: DefaultLeaguePath, Riot: DefaultRiotPath})

	require.NoError(t, c.RestartClient(context.Background()))
	assert.Equal(t, 1, procs.kills)
	require.Len(t, procs.started, 1)
	assert.Equal(t, []string{DefaultRiotPath + `\RiotClientServices.exe`, "--launch-product=league_of_legends", "--launch-patchline=live"}, procs.started[0])
	assert.True(t, c.ClientRunning())
}

func TestRestartClientThroughDeceive(t *testing.T) {
	ctx, mock := testutil.NewContext(t, nil)
	stop := testutil.DriveClock(t, mock)
	defer stop()

	procs := &fakeProcs{}
	c := NewClientController(ctx, procs, InstallPaths{Riot: DefaultRiotPath, Deceive: `C:\Tools\Deceive.exe`})

	require.NoError(t, c.RestartClient(context.Background()))
	assert.Equal(t, [][]string{{`C:\Tools\Deceive.exe`}}, procs.started)
}

func TestKillRetriesThenGivesUp(t *testing.T) {
	ctx, mock := testutil.NewContext(t, nil)
	stop := testutil.DriveClock(t, mock)
	defer stop()

	procs := &fakeProcs{alive: true, survive: 1}
	c := NewClientController(ctx, procs, InstallPaths{})
	require.NoError(t, c.Kill(context.Background()))
	assert.Equal(t, 2, procs.kills)

	procs = &fakeProcs{alive: true, survive: 5}
	c = NewClientController(ctx, procs, InstallPaths{})
	assert.ErrorIs(t, c.Kill(context.Background()), ErrProcessesStillRunning)
	assert.Equal(t, 2, procs.kills)
	assert.Empty(t, procs.started)
}

func TestCloseGameWindow(t *testing.T) {
	ctx, _ := testutil.NewContext(t, nil)
	procs := &fakeProcs{}
	c := NewClientController(ctx, procs, InstallPaths{})

	require.NoError(t, c.CloseGameWindow())
	assert.Equal(t, []game.Window{game.GameWindow}, procs.closed)
}
