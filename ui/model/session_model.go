package model

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// SessionModel tracks the current run duration, the accumulated active time
// and the catch counters reported by the bot. Presenters poll Values() and
// CatchSummary() and update views. The zero value is ready to use.
type SessionModel struct {
	active              bool
	runStart            time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration

	// counters of finished runs plus the running one
	baseCatches, baseFailures int64
	catches, failures         int64
	lastCatch                 time.Time
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current run state and timestamp.
func (m *SessionModel) OnTick(running bool, now time.Time) {
	if m == nil {
		return
	}
	if running {
		if !m.active { // off -> on
			m.active = true
			m.baseCatches += m.catches
			m.baseFailures += m.failures
			m.catches, m.failures = 0, 0
			m.runStart = now
			m.lastSessionDuration = 0
		}
		m.lastSessionDuration = now.Sub(m.runStart)
	} else if m.active { // on -> off
		m.lastSessionDuration = now.Sub(m.runStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// Values returns the current session duration and the total accumulated duration.
// The total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// SetCounters records the counters of the current run. Each run starts from
// zero; finished runs are folded into the totals on the next start.
func (m *SessionModel) SetCounters(catches, failures int64, lastCatch time.Time) {
	if m == nil {
		return
	}
	m.catches, m.failures = catches, failures
	if lastCatch.After(m.lastCatch) {
		m.lastCatch = lastCatch
	}
}

// CatchSummary renders the catch counters, e.g. "Catches: 1,204 (last 3 minutes ago)".
func (m *SessionModel) CatchSummary(now time.Time) string {
	if m == nil {
		return "Catches: 0"
	}
	catches, failures := m.baseCatches+m.catches, m.baseFailures+m.failures
	s := "Catches: " + humanize.Comma(catches)
	if !m.lastCatch.IsZero() {
		s += " (last " + humanize.RelTime(m.lastCatch, now, "ago", "from now") + ")"
	}
	if failures > 0 {
		s += fmt.Sprintf(", %s errors", humanize.Comma(failures))
	}
	return s
}
