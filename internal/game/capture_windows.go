//go:build windows

package game

import (
	"fmt"
	"image"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/hectorgimenez/tftbot/internal/utils/winproc"
)

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// WindowCapturer grabs the client area of the League windows with PrintWindow, so they don't need to
// be in the foreground.
type WindowCapturer struct{}

func NewCapturer() *WindowCapturer {
	winproc.SetProcessDpiAware.Call()

	return &WindowCapturer{}
}

func findWindow(w Window) (win.HWND, error) {
	title, err := syscall.UTF16PtrFromString(w.Title())
	if err != nil {
		return 0, err
	}
	hwnd := win.FindWindow(nil, title)
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: %s", ErrWindowNotFound, w.Title())
	}

	return hwnd, nil
}

func (c *WindowCapturer) Bounds(w Window) (image.Rectangle, error) {
	hwnd, err := findWindow(w)
	if err != nil {
		return image.Rectangle{}, err
	}

	var rc win.RECT
	if !win.GetClientRect(hwnd, &rc) {
		return image.Rectangle{}, fmt.Errorf("GetClientRect failed for %s", w)
	}
	origin := win.POINT{}
	win.ClientToScreen(hwnd, &origin)

	return image.Rect(int(origin.X), int(origin.Y), int(origin.X+rc.Right-rc.Left), int(origin.Y+rc.Bottom-rc.Top)), nil
}

func (c *WindowCapturer) Capture(w Window) (image.Image, error) {
	hwnd, err := findWindow(w)
	if err != nil {
		return nil, err
	}
	bounds, err := c.Bounds(w)
	if err != nil {
		return nil, err
	}
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s window is minimized", w)
	}

	hdcScreen, _, _ := winproc.GetDC.Call(0)
	if hdcScreen == 0 {
		return nil, fmt.Errorf("GetDC failed")
	}
	defer winproc.ReleaseDC.Call(0, hdcScreen)

	hdcMem, _, _ := winproc.CreateCompatibleDC.Call(hdcScreen)
	if hdcMem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer winproc.DeleteDC.Call(hdcMem)

	// Negative height gives a top-down DIB
	header := bitmapInfoHeader{
		Size:     uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:    int32(width),
		Height:   -int32(height),
		Planes:   1,
		BitCount: 32,
	}
	var bits uintptr
	hbm, _, _ := winproc.CreateDIBSection.Call(hdcScreen, uintptr(unsafe.Pointer(&header)), 0, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if hbm == 0 || bits == 0 {
		return nil, fmt.Errorf("CreateDIBSection failed")
	}
	defer winproc.DeleteObject.Call(hbm)
	winproc.SelectObject.Call(hdcMem, hbm)

	winproc.PrintWindow.Call(uintptr(hwnd), hdcMem, winproc.PW_CLIENTONLY|winproc.PW_RENDERFULLCONTENT)
	winproc.GdiFlush.Call()

	src := unsafe.Slice((*byte)(unsafe.Pointer(bits)), width*height*4)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, src)
	// BGRA to RGBA
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		img.Pix[i+3] = 0xff
	}

	return img, nil
}
