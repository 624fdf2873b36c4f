package presenter

import (
	"time"

	"github.com/soocke/reel-bot-go/domain/fishing"
	"github.com/soocke/reel-bot-go/ui/model"
)

// RunSource reports whether the bot runs and its counters.
type RunSource interface {
	Enabled() bool
	Stats() fishing.Stats
}

// SessionView displays formatted session durations and catch counters.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetCatches(summary string)
}

// SessionPresenter formats session durations and catches from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	run  RunSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, run RunSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, run: run, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.run == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.run.Enabled(), now)
	st := p.run.Stats()
	p.sess.SetCounters(st.Catches, st.Failures, st.LastCatch)
	s, t := p.sess.Values()
	p.view.SetSession(s, t)
	p.view.SetCatches(p.sess.CatchSummary(now))
}
