package bot

import (
	"context"
	"sync"
	"time"
)

// fakeSession is a tiny League client: creating a lobby, queueing and accepting move it forward.
type fakeSession struct {
	mu       sync.Mutex
	calls    map[string]int
	lobby    bool
	queue    bool
	found    bool
	accepted bool
	inGame   bool
	expired  bool

	createFails int
	// the lobby is created but never shows up
	lobbyVanishes bool
	// found is computed from the number of FoundQueue polls when set
	foundFn func(poll int) bool
	// onAccept runs under the lock, by default the match starts right away
	onAccept     func(f *fakeSession)
	inGamePanics bool
	// consumed one per Connect call
	connectErrs []error
}

func newFakeSession() *fakeSession {
	return &fakeSession{calls: map[string]int{}, onAccept: startMatch}
}

func startMatch(f *fakeSession) {
	f.accepted = true
	f.queue = false
	f.found = false
	f.inGame = true
}

func (f *fakeSession) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSession) call(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeSession) set(fn func(f *fakeSession)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeSession) Connect(context.Context, bool) error {
	f.call("Connect")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		return err
	}
	return nil
}

func (f *fakeSession) InLobby(context.Context) bool {
	f.call("InLobby")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lobby
}

func (f *fakeSession) InQueue(context.Context) bool {
	f.call("InQueue")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue
}

func (f *fakeSession) FoundQueue(context.Context) bool {
	f.call("FoundQueue")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.foundFn != nil {
		return f.foundFn(f.calls["FoundQueue"])
	}
	return f.found
}

func (f *fakeSession) QueueAccepted(context.Context) bool {
	f.call("QueueAccepted")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted
}

func (f *fakeSession) InGame(context.Context) bool {
	f.call("InGame")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inGamePanics {
		panic("control API exploded")
	}
	return f.inGame
}

func (f *fakeSession) SessionExpired(context.Context) bool {
	f.call("SessionExpired")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expired
}

func (f *fakeSession) CreateLobby(context.Context) bool {
	f.call("CreateLobby")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFails > 0 {
		f.createFails--
		return false
	}
	f.lobby = !f.lobbyVanishes
	return true
}

func (f *fakeSession) DeleteLobby(context.Context) bool {
	f.call("DeleteLobby")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lobby = false
	f.queue = false
	return true
}

func (f *fakeSession) StartQueue(context.Context) bool {
	f.call("StartQueue")
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.lobby {
		return false
	}
	f.queue = true
	f.found = true
	return true
}

func (f *fakeSession) AcceptQueue(context.Context) bool {
	f.call("AcceptQueue")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onAccept != nil {
		f.onAccept(f)
	}
	return true
}

type fakeLive struct {
	windowOK bool
	dead     bool
	level    int
}

func (f *fakeLive) WaitForGameWindow(context.Context, time.Duration) bool { return f.windowOK }
func (f *fakeLive) GameLoaded(context.Context) bool                       { return true }
func (f *fakeLive) IsDead(context.Context) bool                           { return f.dead }
func (f *fakeLive) Level(context.Context) int                             { return f.level }

type fakeController struct {
	mu          sync.Mutex
	restarts    int
	closes      int
	restartErrs []error
	onClose     func(n int)
}

func (f *fakeController) RestartClient(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	if len(f.restartErrs) > 0 {
		err := f.restartErrs[0]
		f.restartErrs = f.restartErrs[1:]
		return err
	}
	return nil
}

func (f *fakeController) restartCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restarts
}

func (f *fakeController) CloseGameWindow() error {
	f.mu.Lock()
	f.closes++
	n, hook := f.closes, f.onClose
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return nil
}

type fakeNetwork struct {
	waits int
}

func (f *fakeNetwork) WaitOnline(context.Context) error {
	f.waits++
	return nil
}
