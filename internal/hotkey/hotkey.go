package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coder/quartz"
)

const pollInterval = 100 * time.Millisecond

// Virtual key codes
const (
	vkShift   = 0x10
	vkControl = 0x11
	vkAlt     = 0x12
	vkLWin    = 0x5B
	vkF1      = 0x70
	vkSpace   = 0x20
)

var modifiers = map[string]int{
	"alt":     vkAlt,
	"ctrl":    vkControl,
	"control": vkControl,
	"shift":   vkShift,
	"win":     vkLWin,
}

// Combo is a set of modifiers plus one key, parsed from strings like "alt+p".
type Combo struct {
	Raw       string
	Modifiers []int
	Key       int
}

func (c Combo) String() string {
	return c.Raw
}

func ParseCombo(s string) (Combo, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	parts := strings.Split(raw, "+")
	if raw == "" || len(parts) == 0 {
		return Combo{}, errors.New("empty hotkey")
	}

	c := Combo{Raw: raw}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		if vk, ok := modifiers[p]; ok && !last {
			c.Modifiers = append(c.Modifiers, vk)
			continue
		}
		if !last {
			return Combo{}, fmt.Errorf("hotkey %q: %q is not a modifier", s, p)
		}
		vk, err := keyCode(p)
		if err != nil {
			return Combo{}, fmt.Errorf("hotkey %q: %w", s, err)
		}
		c.Key = vk
	}

	return c, nil
}

func keyCode(k string) (int, error) {
	switch {
	case len(k) == 1 && k[0] >= 'a' && k[0] <= 'z':
		return int(k[0]-'a') + 'A', nil
	case len(k) == 1 && k[0] >= '0' && k[0] <= '9':
		return int(k[0]), nil
	case k == "space":
		return vkSpace, nil
	case len(k) >= 2 && k[0] == 'f':
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err == nil && n >= 1 && n <= 12 {
			return vkF1 + n - 1, nil
		}
	}

	return 0, fmt.Errorf("unknown key %q", k)
}

// KeyState reports whether a virtual key is currently held down.
type KeyState func(vk int) bool

func (c Combo) down(keyDown KeyState) bool {
	for _, m := range c.Modifiers {
		if !keyDown(m) {
			return false
		}
	}

	return keyDown(c.Key)
}

type Hotkey struct {
	name    string
	combo   Combo
	pressed bool
	action  func()
}

// Listener polls the keyboard and fires each hotkey once per press.
type Listener struct {
	logger  *slog.Logger
	clock   quartz.Clock
	keyDown KeyState
	hotkeys []*Hotkey
}

func NewListener(logger *slog.Logger, clock quartz.Clock, keyDown KeyState) *Listener {
	return &Listener{logger: logger, clock: clock, keyDown: keyDown}
}

// Register must be called before Run.
func (l *Listener) Register(name, combo string, action func()) error {
	c, err := ParseCombo(combo)
	if err != nil {
		return err
	}
	l.hotkeys = append(l.hotkeys, &Hotkey{name: name, combo: c, action: action})
	l.logger.Debug("Hotkey registered", slog.String("name", name), slog.String("combo", c.Raw))

	return nil
}

func (l *Listener) Poll() {
	for _, hk := range l.hotkeys {
		if hk.combo.down(l.keyDown) {
			// holding the combo fires once
			if !hk.pressed {
				l.logger.Debug("Hotkey pressed", slog.String("name", hk.name))
				hk.action()
			}
			hk.pressed = true
		} else {
			hk.pressed = false
		}
	}
}

func (l *Listener) Run(ctx context.Context) error {
	if len(l.hotkeys) == 0 {
		return nil
	}
	for {
		l.Poll()

		t := l.clock.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}
