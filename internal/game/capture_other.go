//go:build !windows

package game

import (
	"errors"
	"image"
)

var errUnsupportedPlatform = errors.New("screen capture and input are only available on Windows")

type WindowCapturer struct{}

func NewCapturer() *WindowCapturer {
	return &WindowCapturer{}
}

func (c *WindowCapturer) Bounds(Window) (image.Rectangle, error) {
	return image.Rectangle{}, errUnsupportedPlatform
}

func (c *WindowCapturer) Capture(Window) (image.Image, error) {
	return nil, errUnsupportedPlatform
}
