package game

import (
	"image"
)

const DefaultPrecision = 0.8

type Match struct {
	Template   Template
	Center     image.Point // window relative
	Size       image.Point
	Confidence float64
}

type LocateOpts struct {
	// Window relative search area, the zero value searches the whole window
	Region    image.Rectangle
	Precision float64
}

// Perception answers questions about what is currently on screen. A template that is simply not visible
// is reported as found=false with a nil error, errors are reserved for missing windows and assets.
type Perception interface {
	Locate(w Window, t Template, opts LocateOpts) (Match, bool, error)
	ReadNumber(w Window, region image.Rectangle) (int, bool, error)
	ReadText(w Window, region image.Rectangle) (string, error)
	Capture(w Window) (image.Image, error)
	WindowBounds(w Window) (image.Rectangle, error)
}

// Visible is a Locate shorthand for presence checks, missing windows and assets count as not visible.
func Visible(p Perception, w Window, t Template, precision float64) bool {
	_, found, err := p.Locate(w, t, LocateOpts{Precision: precision})

	return err == nil && found
}

// AnyVisible returns the first of ts that is on screen.
func AnyVisible(p Perception, w Window, ts ...Template) (Match, bool) {
	for _, t := range ts {
		m, found, err := p.Locate(w, t, LocateOpts{})
		if err == nil && found {
			return m, true
		}
	}

	return Match{}, false
}

type Button int

const (
	LeftButton Button = iota
	RightButton
)

// Input sends mouse and keyboard events, every point is relative to the window's top left corner.
type Input interface {
	Focus(w Window) error
	MoveTo(w Window, p image.Point) error
	Click(w Window, p image.Point, b Button) error
	Drag(w Window, from, to image.Point) error
	PressKey(key rune) error
}
