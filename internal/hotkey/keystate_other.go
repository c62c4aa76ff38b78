//go:build !windows

package hotkey

func AsyncKeyState(int) bool {
	return false
}
