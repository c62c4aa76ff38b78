package testutil

import (
	"fmt"
	"image"
	"sync"

	"github.com/hectorgimenez/tftbot/internal/game"
)

// FakeScreen is a scriptable game.Perception. Templates are invisible until shown.
type FakeScreen struct {
	mu        sync.Mutex
	visible   map[game.Window]map[game.Template]image.Point
	missing   map[game.Template]bool
	windowErr map[game.Window]error
	number    int
	numberOK  bool
	text      string
	locates   map[game.Template]int
}

func NewFakeScreen() *FakeScreen {
	return &FakeScreen{
		visible:   map[game.Window]map[game.Template]image.Point{game.ClientWindow: {}, game.GameWindow: {}},
		missing:   map[game.Template]bool{},
		windowErr: map[game.Window]error{},
		locates:   map[game.Template]int{},
	}
}

func (s *FakeScreen) Show(w game.Window, t game.Template, at image.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[w][t] = at
}

func (s *FakeScreen) Hide(w game.Window, ts ...game.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range ts {
		delete(s.visible[w], t)
	}
}

func (s *FakeScreen) Shown(w game.Window, t game.Template) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visible[w][t]
	return ok
}

func (s *FakeScreen) SetMissing(t game.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing[t] = true
}

func (s *FakeScreen) SetWindowError(w game.Window, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.windowErr, w)
		return
	}
	s.windowErr[w] = err
}

// SetNumber scripts ReadNumber, ok=false simulates an unreadable region.
func (s *FakeScreen) SetNumber(n int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.number, s.numberOK = n, ok
}

func (s *FakeScreen) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Locates counts the lookups of t.
func (s *FakeScreen) Locates(t game.Template) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locates[t]
}

func (s *FakeScreen) Locate(w game.Window, t game.Template, _ game.LocateOpts) (game.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locates[t]++
	if err := s.windowErr[w]; err != nil {
		return game.Match{}, false, err
	}
	if s.missing[t] {
		return game.Match{}, false, fmt.Errorf("%w: %s", game.ErrTemplateMissing, t)
	}
	p, ok := s.visible[w][t]
	if !ok {
		return game.Match{}, false, nil
	}

	return game.Match{Template: t, Center: p, Size: image.Pt(10, 10), Confidence: 1}, true, nil
}

func (s *FakeScreen) ReadNumber(w game.Window, _ image.Rectangle) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.windowErr[w]; err != nil {
		return 0, false, err
	}
	return s.number, s.numberOK, nil
}

func (s *FakeScreen) ReadText(w game.Window, _ image.Rectangle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.windowErr[w]; err != nil {
		return "", err
	}
	return s.text, nil
}

func (s *FakeScreen) Capture(w game.Window) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.windowErr[w]; err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rectangle{Max: game.BaseResolution}), nil
}

func (s *FakeScreen) WindowBounds(w game.Window) (image.Rectangle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.windowErr[w]; err != nil {
		return image.Rectangle{}, err
	}
	return image.Rectangle{Max: game.BaseResolution}, nil
}

type InputKind string

const (
	InputFocus InputKind = "focus"
	InputMove  InputKind = "move"
	InputClick InputKind = "click"
	InputDrag  InputKind = "drag"
	InputKey   InputKind = "key"
)

type InputEvent struct {
	Kind   InputKind
	Window game.Window
	At     image.Point
	To     image.Point
	Button game.Button
	Key    rune
}

// FakeInput records every command. OnEvent runs after each one, tests use it to change the screen.
type FakeInput struct {
	mu      sync.Mutex
	events  []InputEvent
	Err     error
	OnEvent func(InputEvent)
}

func (in *FakeInput) record(e InputEvent) error {
	in.mu.Lock()
	in.events = append(in.events, e)
	hook, err := in.OnEvent, in.Err
	in.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(e)
	}
	return nil
}

func (in *FakeInput) Focus(w game.Window) error {
	return in.record(InputEvent{Kind: InputFocus, Window: w})
}

func (in *FakeInput) MoveTo(w game.Window, p image.Point) error {
	return in.record(InputEvent{Kind: InputMove, Window: w, At: p})
}

func (in *FakeInput) Click(w game.Window, p image.Point, b game.Button) error {
	return in.record(InputEvent{Kind: InputClick, Window: w, At: p, Button: b})
}

func (in *FakeInput) Drag(w game.Window, from, to image.Point) error {
	return in.record(InputEvent{Kind: InputDrag, Window: w, At: from, To: to})
}

func (in *FakeInput) PressKey(key rune) error {
	return in.record(InputEvent{Kind: InputKey, Key: key})
}

func (in *FakeInput) Events() []InputEvent {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]InputEvent(nil), in.events...)
}

// Count returns how many recorded events match.
func (in *FakeInput) Count(match func(InputEvent) bool) int {
	n := 0
	for _, e := range in.Events() {
		if match(e) {
			n++
		}
	}
	return n
}

// ClickedAt matches clicks of any button on p.
func ClickedAt(p image.Point) func(InputEvent) bool {
	return func(e InputEvent) bool { return e.Kind == InputClick && e.At == p }
}

func (in *FakeInput) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.events = nil
}
