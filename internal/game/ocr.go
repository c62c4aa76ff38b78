package game

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const ocrTimeout = 5 * time.Second

// OCR turns a small screen region into text.
type OCR interface {
	Read(img image.Image, digitsOnly bool) (string, error)
}

// Tesseract runs the tesseract binary, one process per read.
type Tesseract struct {
	Path string
}

// DefaultTesseractPath is where the Windows installer puts the binary, elsewhere it is expected on PATH.
func DefaultTesseractPath() string {
	if runtime.GOOS == "windows" {
		return `C:\Program Files\Tesseract-OCR\tesseract.exe`
	}

	return "tesseract"
}

func NewTesseract(override string) *Tesseract {
	if override == "" {
		override = DefaultTesseractPath()
	}

	return &Tesseract{Path: override}
}

func (t *Tesseract) Read(img image.Image, digitsOnly bool) (string, error) {
	in, err := os.CreateTemp("", "tftbot-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(in.Name())

	if err = png.Encode(in, Preprocess(img)); err != nil {
		in.Close()
		return "", err
	}
	if err = in.Close(); err != nil {
		return "", err
	}

	args := []string{in.Name(), "stdout", "--oem", "3", "--psm", "7"}
	if digitsOnly {
		args = append(args, "-c", "tessedit_char_whitelist=0123456789")
	}

	ctx, cancel := context.WithTimeout(context.Background(), ocrTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err = cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Preprocess converts to grayscale and inverts, game text is light on dark and tesseract prefers the opposite.
func Preprocess(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			out.SetGray(x, y, color.Gray{Y: 255 - c.Y})
		}
	}

	return out
}
