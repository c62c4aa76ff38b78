//go:build !windows

package game

import "image"

type HID struct{}

func NewHID(Capturer, int64) *HID {
	return &HID{}
}

func (h *HID) Focus(Window) error                          { return errUnsupportedPlatform }
func (h *HID) MoveTo(Window, image.Point) error            { return errUnsupportedPlatform }
func (h *HID) Click(Window, image.Point, Button) error     { return errUnsupportedPlatform }
func (h *HID) Drag(Window, image.Point, image.Point) error { return errUnsupportedPlatform }
func (h *HID) PressKey(rune) error                         { return errUnsupportedPlatform }
