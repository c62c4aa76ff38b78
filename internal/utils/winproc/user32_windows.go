package winproc

import "golang.org/x/sys/windows"

var (
	USER32             = windows.NewLazySystemDLL("user32.dll")
	PrintWindow        = USER32.NewProc("PrintWindow")
	GetDC              = USER32.NewProc("GetDC")
	ReleaseDC          = USER32.NewProc("ReleaseDC")
	IsIconic           = USER32.NewProc("IsIconic")
	SetProcessDpiAware = USER32.NewProc("SetProcessDPIAware")
	GetAsyncKeyState   = USER32.NewProc("GetAsyncKeyState")
	VkKeyScan          = USER32.NewProc("VkKeyScanW")
	ShowWindow         = USER32.NewProc("ShowWindow")
)

const (
	PW_CLIENTONLY        = 0x1
	PW_RENDERFULLCONTENT = 0x2
	SW_RESTORE           = 9
)
