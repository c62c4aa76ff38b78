package game

import (
	"errors"
	"image"
)

// Window is one of the two windows the bot looks at and clicks into.
type Window int

const (
	ClientWindow Window = iota
	GameWindow
)

// Every coordinate and template in this package assumes the game renders at this size.
var BaseResolution = image.Pt(1920, 1080)

func (w Window) Title() string {
	if w == GameWindow {
		return "League of Legends (TM) Client"
	}

	return "League of Legends"
}

func (w Window) String() string {
	if w == GameWindow {
		return "game"
	}

	return "client"
}

var (
	ErrWindowNotFound  = errors.New("window not found")
	ErrTemplateMissing = errors.New("template image missing")
)
