//go:build windows

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/hectorgimenez/tftbot/internal/utils/winproc"
	"github.com/inkeliz/gowebview"
	"github.com/lxn/win"
)

func setProcessDpiAware() {
	winproc.SetProcessDpiAware.Call() // Set DPI awareness to be able to read the correct scale and show the window correctly
}

// runStatusWindow shows the status page until the window is closed or ctx is done.
func runStatusWindow(ctx context.Context, cfg *config.Config, configPath string, logger *slog.Logger) error {
	width := cfg.UI.WindowWidth
	if width <= 0 {
		width = 900
	}
	height := cfg.UI.WindowHeight
	if height <= 0 {
		height = 640
	}

	w, err := gowebview.New(&gowebview.Config{
		URL: fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
		WindowConfig: &gowebview.WindowConfig{
			Title: "tftbot",
			Size:  &gowebview.Point{X: int64(width), Y: int64(height)},
		},
	})
	if err != nil {
		if w != nil {
			w.Destroy()
		}
		return fmt.Errorf("error creating webview: %w", err)
	}
	defer w.Destroy()

	// HintNone allows resizing with the mouse
	w.SetSize(&gowebview.Point{X: int64(width), Y: int64(height)}, gowebview.HintNone)

	windowCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		<-windowCtx.Done()
		w.Terminate()
	}()
	go persistWindowSize(windowCtx, win.HWND(w.Window()), width, height, configPath, logger)

	w.Run()

	return nil
}

func persistWindowSize(ctx context.Context, hwnd win.HWND, width, height int, configPath string, logger *slog.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if win.IsIconic(hwnd) {
				continue
			}

			var rect win.RECT
			if !win.GetWindowRect(hwnd, &rect) {
				continue
			}
			curW, curH := int(rect.Right-rect.Left), int(rect.Bottom-rect.Top)
			if curW <= 100 || curH <= 100 || (curW == width && curH == height) {
				continue
			}

			width, height = curW, curH
			if err := config.SaveWindowSize(configPath, width, height); err != nil {
				logger.Warn("Could not save the window size", slog.Any("error", err))
			}
		}
	}
}
