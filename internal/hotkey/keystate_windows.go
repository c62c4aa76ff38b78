package hotkey

import "github.com/hectorgimenez/tftbot/internal/utils/winproc"

// AsyncKeyState reads the physical key state, it works while other windows have focus.
func AsyncKeyState(vk int) bool {
	ret, _, _ := winproc.GetAsyncKeyState.Call(uintptr(vk))
	return ret&0x8000 != 0
}
