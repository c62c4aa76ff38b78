package winproc

import "golang.org/x/sys/windows"

var (
	NTDLL                     = windows.NewLazySystemDLL("ntdll.dll")
	NtQueryInformationProcess = NTDLL.NewProc("NtQueryInformationProcess")
)

const ProcessCommandLineInformation = 60
