package fishing

import (
	"time"

	"github.com/soocke/reel-bot-go/domain/vision"
)

// RegulatorConfig shapes the mouse channel hysteresis.
type RegulatorConfig struct {
	Intermittent vision.TensionLevel
	Max          vision.TensionLevel
	Hold         time.Duration // minimum hold dwell while intermittent
	Release      time.Duration // minimum release dwell while intermittent
	MaxRelease   time.Duration // release lock after a level >= Max sample
}

// tensionRegulator decides whether the reel button should be held.
// It starts held.
type tensionRegulator struct {
	cfg            RegulatorConfig
	holding        bool
	lastTransition time.Time
	lockUntil      time.Time
}

func newTensionRegulator(cfg RegulatorConfig, now time.Time) *tensionRegulator {
	return &tensionRegulator{cfg: cfg, holding: true, lastTransition: now}
}

// Next returns the desired holding state for level observed at now.
// Every sample at or above Max releases and extends the release lock; no
// re-hold happens before the lock expires.
func (r *tensionRegulator) Next(level vision.TensionLevel, now time.Time) bool {
	switch {
	case level >= r.cfg.Max:
		r.set(false, now)
		if until := now.Add(r.cfg.MaxRelease); until.After(r.lockUntil) {
			r.lockUntil = until
		}
	case now.Before(r.lockUntil):
	case level >= r.cfg.Intermittent:
		dwell := r.cfg.Release
		if r.holding {
			dwell = r.cfg.Hold
		}
		if now.Sub(r.lastTransition) >= dwell {
			r.set(!r.holding, now)
		}
	default:
		r.set(true, now)
	}
	return r.holding
}

func (r *tensionRegulator) set(holding bool, now time.Time) {
	if r.holding == holding {
		return
	}
	r.holding = holding
	r.lastTransition = now
}
