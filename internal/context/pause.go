package context

import "sync/atomic"

// PauseFlags are the only state shared between the hotkey listener and the lifecycle loop.
// Readers may see a value one tick late.
type PauseFlags struct {
	paused       atomic.Bool
	playNextGame atomic.Bool
}

func NewPauseFlags() *PauseFlags {
	p := &PauseFlags{}
	p.playNextGame.Store(true)

	return p
}

func (p *PauseFlags) Paused() bool {
	return p.paused.Load()
}

func (p *PauseFlags) PlayNextGame() bool {
	return p.playNextGame.Load()
}

// TogglePause flips the paused flag and returns the new value.
func (p *PauseFlags) TogglePause() bool {
	return toggle(&p.paused)
}

// TogglePlayNextGame flips the play next game flag and returns the new value.
func (p *PauseFlags) TogglePlayNextGame() bool {
	return toggle(&p.playNextGame)
}

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
