//go:build !windows

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hectorgimenez/tftbot/internal/config"
)

func setProcessDpiAware() {}

func runStatusWindow(context.Context, *config.Config, string, *slog.Logger) error {
	return errors.New("the status window is only available on windows")
}
