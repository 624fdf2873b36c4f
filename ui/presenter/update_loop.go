package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	FSM      *FSMPresenter
	Run      *RunPresenter
	Preview  *PreviewPresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, fsm *FSMPresenter, run *RunPresenter, preview *PreviewPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, FSM: fsm, Run: run, Preview: preview, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// FSM first so the state label and counters agree within one tick.
	if l.FSM != nil {
		l.FSM.Tick(now)
	}
	if l.Run != nil {
		l.Run.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Preview != nil {
		l.Preview.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
