package game

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// TemplateStore loads template images from the captures directory and keeps them decoded.
type TemplateStore struct {
	dir string

	mu    sync.Mutex
	cache map[Template]*gray
}

func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir, cache: make(map[Template]*gray)}
}

func (s *TemplateStore) Dir() string {
	return s.dir
}

// Exists reports whether the image for t is present on disk.
func (s *TemplateStore) Exists(t Template) bool {
	_, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(string(t))))

	return err == nil
}

func (s *TemplateStore) load(t Template) (*gray, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.cache[t]; ok {
		return g, nil
	}

	f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(string(t))))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, t)
		}
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding template %s: %w", t, err)
	}
	g := toGray(img)
	s.cache[t] = g

	return g, nil
}

// Size is the template size in pixels.
func (s *TemplateStore) Size(t Template) (image.Point, error) {
	g, err := s.load(t)
	if err != nil {
		return image.Point{}, err
	}

	return image.Pt(g.w, g.h), nil
}
