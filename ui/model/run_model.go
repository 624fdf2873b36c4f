package model

import (
	"sync/atomic"
)

// RunModel tracks whether the bot loop is running. The zero value is stopped
// and usable. Concurrency-safe because the bot goroutine clears it on exit
// while presenter ticks read it.
type RunModel struct{ enabled atomic.Bool }

// Enabled reports whether the bot is running.
func (m *RunModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the running flag.
func (m *RunModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.enabled.Store(b)
}
