package fishing

import (
	"log/slog"
	"sync"
)

// heldInput tracks the intended state of one key or button. The backend is
// only called on change; errors are logged and the intended state is kept
// so that release still runs. After release further presses are ignored.
type heldInput struct {
	name   string
	down   func() error
	up     func() error
	logger *slog.Logger

	mu     sync.Mutex
	held   bool
	closed bool
}

func newHeldInput(name string, down, up func() error, logger *slog.Logger) *heldInput {
	return &heldInput{name: name, down: down, up: up, logger: orNop(logger)}
}

// set drives the input to want and reports whether the state changed.
func (h *heldInput) set(want bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.held == want {
		return false
	}
	call := h.up
	if want {
		call = h.down
	}
	if err := call(); err != nil {
		h.logger.Warn("input event failed", "input", h.name, "down", want, "error", err)
	}
	h.held = want
	return true
}

// release sends an unconditional up event and closes the input.
func (h *heldInput) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.up(); err != nil {
		h.logger.Warn("input release failed", "input", h.name, "error", err)
	}
	h.held = false
	h.closed = true
}

func (h *heldInput) Held() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.held
}
