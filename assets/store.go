package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrTemplateNotFound is returned when no search location holds the template.
var ErrTemplateNotFound = errors.New("assets: template not found")

// Store loads reference images by name and caches the decoded result.
// A name is resolved as an absolute path, then relative to the templates
// directory next to the executable, then relative to the working directory.
type Store struct {
	dirs   []string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewStore returns a store searching dir. A relative dir is looked up next to
// the executable first, then in the working directory.
func NewStore(dir string, logger *slog.Logger) *Store {
	var dirs []string
	if filepath.IsAbs(dir) {
		dirs = append(dirs, dir)
	} else {
		if exe, err := os.Executable(); err == nil {
			dirs = append(dirs, filepath.Join(filepath.Dir(exe), dir))
		}
		dirs = append(dirs, dir)
	}
	return &Store{dirs: dirs, logger: logger, cache: make(map[string]image.Image)}
}

// Load returns the decoded template.
func (s *Store) Load(name string) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.cache[name]; ok {
		return img, nil
	}
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", path, err)
	}
	s.cache[name] = img
	if s.logger != nil {
		s.logger.Debug("template loaded", "name", name, "path", path, "size", img.Bounds().Size())
	}
	return img, nil
}

func (s *Store) resolve(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, d := range s.dirs {
			candidates = append(candidates, filepath.Join(d, name))
		}
		// Names written as "templates/x.png" also resolve against the working directory.
		candidates = append(candidates, name)
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// Preload loads every name and reports all missing templates at once.
func (s *Store) Preload(names ...string) error {
	var errs []error
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, err := s.Load(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
