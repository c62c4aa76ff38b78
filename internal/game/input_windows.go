//go:build windows

package game

import (
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"github.com/hectorgimenez/tftbot/internal/utils/winproc"
)

const (
	keyPressMinTime = 40
	keyPressMaxTime = 90
)

// HID drives the real cursor and keyboard with SendInput. TFT ignores posted window messages, so the target
// window is brought to the foreground first.
type HID struct {
	capturer Capturer
	motion   Motion

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewHID(capturer Capturer, seed int64) *HID {
	return &HID{capturer: capturer, motion: DefaultMotion, rnd: rand.New(rand.NewSource(seed))}
}

func (h *HID) Focus(w Window) error {
	hwnd, err := findWindow(w)
	if err != nil {
		return err
	}
	if iconic, _, _ := winproc.IsIconic.Call(uintptr(hwnd)); iconic != 0 {
		winproc.ShowWindow.Call(uintptr(hwnd), winproc.SW_RESTORE)
	}
	win.SetForegroundWindow(hwnd)

	return nil
}

func (h *HID) toScreen(w Window, p image.Point) (image.Point, error) {
	bounds, err := h.capturer.Bounds(w)
	if err != nil {
		return image.Point{}, err
	}

	return bounds.Min.Add(Scale(p, bounds.Size())), nil
}

func (h *HID) MoveTo(w Window, p image.Point) error {
	target, err := h.toScreen(w, p)
	if err != nil {
		return err
	}
	h.moveScreen(target)

	return nil
}

func (h *HID) moveScreen(target image.Point) {
	var cur win.POINT
	if !win.GetCursorPos(&cur) {
		win.SetCursorPos(int32(target.X), int32(target.Y))
		return
	}

	h.mu.Lock()
	path := h.motion.HumanPath(h.rnd, image.Pt(int(cur.X), int(cur.Y)), target)
	h.mu.Unlock()

	var elapsed time.Duration
	for _, pt := range path {
		if wait := pt.At - elapsed; wait > 0 {
			time.Sleep(wait)
			elapsed = pt.At
		}
		win.SetCursorPos(int32(pt.X), int32(pt.Y))
	}
}

func (h *HID) Click(w Window, p image.Point, b Button) error {
	if err := h.Focus(w); err != nil {
		return err
	}
	if err := h.MoveTo(w, p); err != nil {
		return err
	}

	down, up := uint32(win.MOUSEEVENTF_LEFTDOWN), uint32(win.MOUSEEVENTF_LEFTUP)
	if b == RightButton {
		down, up = win.MOUSEEVENTF_RIGHTDOWN, win.MOUSEEVENTF_RIGHTUP
	}
	sendMouse(down)
	time.Sleep(h.pressTime())
	sendMouse(up)

	return nil
}

func (h *HID) Drag(w Window, from, to image.Point) error {
	if err := h.Focus(w); err != nil {
		return err
	}
	if err := h.MoveTo(w, from); err != nil {
		return err
	}
	sendMouse(win.MOUSEEVENTF_LEFTDOWN)
	time.Sleep(h.pressTime())
	if err := h.MoveTo(w, to); err != nil {
		sendMouse(win.MOUSEEVENTF_LEFTUP)
		return err
	}
	time.Sleep(h.pressTime())
	sendMouse(win.MOUSEEVENTF_LEFTUP)

	return nil
}

func (h *HID) PressKey(key rune) error {
	vk := VirtualKey(key)
	if vk == 0 {
		return fmt.Errorf("no virtual key for %q", key)
	}
	sendKey(vk, 0)
	time.Sleep(h.pressTime())
	sendKey(vk, win.KEYEVENTF_KEYUP)

	return nil
}

func (h *HID) pressTime() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	return time.Duration(h.rnd.Intn(keyPressMaxTime-keyPressMinTime)+keyPressMinTime) * time.Millisecond
}

// VirtualKey maps a character to its virtual key code, 0 when the layout has none.
func VirtualKey(key rune) uint16 {
	r, _, _ := winproc.VkKeyScan.Call(uintptr(key))
	if int16(r) == -1 {
		return 0
	}

	return uint16(r & 0xff)
}

func sendMouse(flags uint32) {
	in := win.MOUSE_INPUT{Type: win.INPUT_MOUSE, Mi: win.MOUSEINPUT{DwFlags: flags}}
	win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in)))
}

func sendKey(vk uint16, flags uint32) {
	in := win.KEYBD_INPUT{Type: win.INPUT_KEYBOARD, Ki: win.KEYBDINPUT{WVk: vk, DwFlags: flags}}
	win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in)))
}
