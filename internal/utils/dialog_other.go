//go:build !windows

package utils

import "fmt"

func HasAdminPermission() bool {
	return true
}

func ShowDialog(title, message string) {
	fmt.Printf("%s: %s\n", title, message)
}
