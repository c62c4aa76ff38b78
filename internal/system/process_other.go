//go:build !windows

package system

import (
	"errors"

	"github.com/hectorgimenez/tftbot/internal/game"
)

var errUnsupportedPlatform = errors.New("process control is only available on Windows")

type Processes struct{}

func NewProcesses() *Processes {
	return &Processes{}
}

func (Processes) ClientCommandLine() ([]string, error) { return nil, errUnsupportedPlatform }
func (Processes) Running(...string) bool               { return false }
func (Processes) Kill(...string) (int, error)          { return 0, errUnsupportedPlatform }
func (Processes) Start(string, ...string) error        { return errUnsupportedPlatform }
func (Processes) CloseWindow(game.Window) error        { return errUnsupportedPlatform }
