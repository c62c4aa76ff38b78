package bot

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStructuralFault aborts the current lifecycle run, the supervisor restarts it from NotQueued.
	ErrStructuralFault = errors.New("structural fault")
	// ErrClientRestartRequired means only killing and relaunching the client can get us unstuck.
	ErrClientRestartRequired = errors.New("client restart required")
	// ErrSessionInvalid is an expired login or an error dialog the client can not recover from.
	ErrSessionInvalid = errors.New("client session is no longer valid")
)

// SessionClient is the League client control API.
type SessionClient interface {
	Connect(ctx context.Context, waitForAvailability bool) error

	InLobby(ctx context.Context) bool
	InQueue(ctx context.Context) bool
	FoundQueue(ctx context.Context) bool
	QueueAccepted(ctx context.Context) bool
	InGame(ctx context.Context) bool
	SessionExpired(ctx context.Context) bool

	CreateLobby(ctx context.Context) bool
	DeleteLobby(ctx context.Context) bool
	StartQueue(ctx context.Context) bool
	AcceptQueue(ctx context.Context) bool
}

// LiveClient is the in-match telemetry API.
type LiveClient interface {
	WaitForGameWindow(ctx context.Context, timeout time.Duration) bool
	GameLoaded(ctx context.Context) bool
	IsDead(ctx context.Context) bool
	Level(ctx context.Context) int
}

// ClientController owns the League processes.
type ClientController interface {
	// RestartClient kills the whole client process set and launches it again.
	RestartClient(ctx context.Context) error
	// CloseGameWindow asks the game window to close, like pressing the window's close button.
	CloseGameWindow() error
}

// NetworkWaiter blocks until the internet is reachable.
type NetworkWaiter interface {
	WaitOnline(ctx context.Context) error
}
