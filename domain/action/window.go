package action

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/soocke/reel-bot-go/domain/geometry"
)

// WindowInfo is a snapshot of a top-level window.
type WindowInfo struct {
	Handle    uintptr
	Title     string
	Geometry  geometry.WindowGeometry
	Minimized bool
	Active    bool
}

func (w WindowInfo) State() string {
	switch {
	case w.Minimized:
		return "minimized"
	case w.Active:
		return "active"
	default:
		return "background"
	}
}

// WindowSystem is the OS window API.
type WindowSystem interface {
	List() ([]WindowInfo, error)
	Info(handle uintptr) (WindowInfo, bool)
	Activate(handle uintptr) error
}

// FilterWindows keeps windows whose title contains keyword (case-insensitive).
func FilterWindows(all []WindowInfo, keyword string) []WindowInfo {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	var out []WindowInfo
	for _, w := range all {
		if strings.TrimSpace(w.Title) == "" {
			continue
		}
		if kw == "" || strings.Contains(strings.ToLower(w.Title), kw) {
			out = append(out, w)
		}
	}
	return out
}

// Window tracks the game window by title. Geometry is re-read on every call
// so moves and resizes are picked up; a closed or minimized window reports
// no geometry.
type Window struct {
	sys    WindowSystem
	logger *slog.Logger

	mu     sync.Mutex
	title  string
	handle uintptr
}

func NewWindow(sys WindowSystem, title string, logger *slog.Logger) *Window {
	return &Window{sys: sys, title: title, logger: logger}
}

// Find locates the first window whose title contains the configured title.
func (w *Window) Find() (WindowInfo, error) {
	all, err := w.sys.List()
	if err != nil {
		return WindowInfo{}, err
	}
	w.mu.Lock()
	title := w.title
	w.mu.Unlock()
	matches := FilterWindows(all, title)
	if len(matches) == 0 {
		return WindowInfo{}, fmt.Errorf("action: no window title contains %q", title)
	}
	w.mu.Lock()
	w.handle = matches[0].Handle
	w.mu.Unlock()
	if w.logger != nil {
		w.logger.Info("found window", "title", matches[0].Title, "geometry", matches[0].Geometry.String())
	}
	return matches[0], nil
}

// SetTitle retargets the window. The tracked handle is dropped when the
// title changes.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if title != w.title {
		w.title, w.handle = title, 0
	}
}

// Activate restores and focuses the tracked window.
func (w *Window) Activate() error {
	h := w.currentHandle()
	if h == 0 {
		info, err := w.Find()
		if err != nil {
			return err
		}
		h = info.Handle
	}
	return w.sys.Activate(h)
}

// Geometry returns the current window rectangle.
func (w *Window) Geometry() (geometry.WindowGeometry, bool) {
	h := w.currentHandle()
	if h != 0 {
		if info, ok := w.sys.Info(h); ok {
			if info.Minimized || info.Geometry.Empty() {
				return geometry.WindowGeometry{}, false
			}
			return info.Geometry, true
		}
	}
	// Handle went stale (window recreated); search by title once.
	info, err := w.Find()
	if err != nil || info.Minimized || info.Geometry.Empty() {
		return geometry.WindowGeometry{}, false
	}
	return info.Geometry, true
}

func (w *Window) currentHandle() uintptr {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handle
}
