package game

import (
	"image"
	"image/draw"
	"strconv"
	"strings"
)

// Capturer grabs window contents. Bounds are in screen coordinates.
type Capturer interface {
	Capture(w Window) (image.Image, error)
	Bounds(w Window) (image.Rectangle, error)
}

// Screen implements Perception on top of a Capturer, template matching and OCR.
type Screen struct {
	capturer  Capturer
	templates *TemplateStore
	ocr       OCR
}

func NewScreen(capturer Capturer, templates *TemplateStore, ocr OCR) *Screen {
	return &Screen{capturer: capturer, templates: templates, ocr: ocr}
}

func (s *Screen) Capture(w Window) (image.Image, error) {
	return s.capturer.Capture(w)
}

func (s *Screen) WindowBounds(w Window) (image.Rectangle, error) {
	return s.capturer.Bounds(w)
}

func (s *Screen) Locate(w Window, t Template, opts LocateOpts) (Match, bool, error) {
	tmpl, err := s.templates.load(t)
	if err != nil {
		return Match{}, false, err
	}

	img, err := s.capturer.Capture(w)
	if err != nil {
		return Match{}, false, err
	}

	area := img.Bounds()
	if !opts.Region.Empty() {
		area = ScaleRect(opts.Region, area.Size()).Add(img.Bounds().Min).Intersect(img.Bounds())
	}
	precision := opts.Precision
	if precision <= 0 {
		precision = DefaultPrecision
	}

	p, score := matchGray(toGray(crop(img, area)), tmpl)
	if score < precision {
		return Match{}, false, nil
	}

	offset := area.Min.Sub(img.Bounds().Min)
	size := image.Pt(tmpl.w, tmpl.h)

	return Match{
		Template:   t,
		Center:     offset.Add(p).Add(size.Div(2)),
		Size:       size,
		Confidence: score,
	}, true, nil
}

func (s *Screen) ReadText(w Window, region image.Rectangle) (string, error) {
	return s.read(w, region, false)
}

// ReadNumber keeps only the digits OCR returned, found is false when there were none.
func (s *Screen) ReadNumber(w Window, region image.Rectangle) (int, bool, error) {
	text, err := s.read(w, region, true)
	if err != nil {
		return 0, false, err
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false, nil
	}

	return n, true, nil
}

func (s *Screen) read(w Window, region image.Rectangle, digitsOnly bool) (string, error) {
	img, err := s.capturer.Capture(w)
	if err != nil {
		return "", err
	}
	area := ScaleRect(region, img.Bounds().Size()).Add(img.Bounds().Min).Intersect(img.Bounds())

	return s.ocr.Read(crop(img, area), digitsOnly)
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if si, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return si.SubImage(r)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)

	return out
}
