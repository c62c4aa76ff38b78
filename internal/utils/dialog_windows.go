//go:build windows

package utils

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// HasAdminPermission is needed to send input to a game window started by an elevated Riot client.
func HasAdminPermission() bool {
	f, err := os.Open("\\\\.\\PHYSICALDRIVE0")
	if err != nil {
		return false
	}
	f.Close()

	return true
}

func ShowDialog(title, message string) {
	t, _ := syscall.UTF16PtrFromString(title)
	txt, _ := syscall.UTF16PtrFromString(message)

	windows.MessageBox(0, txt, t, 0)
}
