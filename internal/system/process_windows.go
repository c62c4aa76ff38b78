package system

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unsafe"

	"github.com/hectorgimenez/tftbot/internal/game"
	"github.com/hectorgimenez/tftbot/internal/lcu"
	"github.com/hectorgimenez/tftbot/internal/utils/winproc"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const statusInfoLengthMismatch = 0xC0000004

// Processes talks to the real Windows process table.
type Processes struct{}

func NewProcesses() *Processes {
	return &Processes{}
}

func (Processes) each(fn func(pid uint32, name string) bool) error {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if !fn(entry.ProcessID, windows.UTF16ToString(entry.ExeFile[:])) {
			return nil
		}
	}
	if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil
	}

	return err
}

func (p Processes) find(name string) (uint32, bool) {
	var pid uint32
	_ = p.each(func(id uint32, exe string) bool {
		if strings.EqualFold(exe, name) {
			pid = id
			return false
		}
		return true
	})

	return pid, pid != 0
}

// ClientCommandLine reads the arguments of LeagueClientUx.exe, they carry the API port and token.
func (p Processes) ClientCommandLine() ([]string, error) {
	pid, ok := p.find(ClientUxProcess)
	if !ok {
		return nil, lcu.ErrProcessNotFound
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", ClientUxProcess, err)
	}
	defer windows.CloseHandle(h)

	size := uint32(4096)
	for {
		buf := make([]byte, size)
		var needed uint32
		status, _, _ := winproc.NtQueryInformationProcess.Call(
			uintptr(h),
			winproc.ProcessCommandLineInformation,
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(size),
			uintptr(unsafe.Pointer(&needed)),
		)
		if status == statusInfoLengthMismatch && needed > size {
			size = needed
			continue
		}
		if status != 0 {
			return nil, fmt.Errorf("reading %s command line: ntstatus 0x%x", ClientUxProcess, status)
		}

		cmd := (*windows.NTUnicodeString)(unsafe.Pointer(&buf[0])).String()
		return windows.DecomposeCommandLine(cmd)
	}
}

func (p Processes) Running(names ...string) bool {
	running := false
	_ = p.each(func(_ uint32, exe string) bool {
		for _, n := range names {
			if strings.EqualFold(exe, n) {
				running = true
				return false
			}
		}
		return true
	})

	return running
}

// Kill terminates every process matching one of names and returns how many were signalled.
func (p Processes) Kill(names ...string) (int, error) {
	var pids []uint32
	err := p.each(func(pid uint32, exe string) bool {
		for _, n := range names {
			if strings.EqualFold(exe, n) {
				pids = append(pids, pid)
			}
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	var errs []error
	killed := 0
	for _, pid := range pids {
		h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid)
		if err != nil {
			errs = append(errs, fmt.Errorf("opening pid %d: %w", pid, err))
			continue
		}
		if err = windows.TerminateProcess(h, 1); err != nil {
			errs = append(errs, fmt.Errorf("terminating pid %d: %w", pid, err))
		} else {
			killed++
		}
		windows.CloseHandle(h)
	}

	return killed, errors.Join(errs...)
}

func (Processes) Start(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	return cmd.Process.Release()
}

// CloseWindow posts WM_CLOSE, the same as clicking the window's close button.
func (Processes) CloseWindow(w game.Window) error {
	title, err := windows.UTF16PtrFromString(w.Title())
	if err != nil {
		return err
	}
	hwnd := win.FindWindow(nil, title)
	if hwnd == 0 {
		return fmt.Errorf("%w: %s", game.ErrWindowNotFound, w)
	}
	if win.PostMessage(hwnd, win.WM_CLOSE, 0, 0) == 0 {
		return fmt.Errorf("posting WM_CLOSE to %s: %w", w, windows.GetLastError())
	}

	return nil
}
