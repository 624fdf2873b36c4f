package fishing

import (
	"math"
	"time"
)

// TrackerConfig tunes the direction channel.
type TrackerConfig struct {
	CheckInterval      time.Duration
	CenterThresholdMax float64
	MaxNoDetection     int
	HoldRate           float64 // dwell multiplier for a held key
	FishSpeedRate      float64 // seconds of pulse per unit of ratio change
	MaxPulseFactor     float64 // pulse cap in check intervals
	MinPulse           time.Duration
}

// trackDecision is the desired key state after one tick and how long to
// wait before the next one.
type trackDecision struct {
	Position TargetPosition
	Left     bool
	Right    bool
	Sleep    time.Duration
	Reason   string
}

// tracker turns splash positions into left/right key states.
type tracker struct {
	cfg         TrackerConfig
	left, right bool
	last        TargetPosition
	prev        TargetPosition
	misses      int
}

func newTracker(cfg TrackerConfig) *tracker {
	return &tracker{cfg: cfg}
}

// Step consumes one detection result. Up to MaxNoDetection consecutive
// misses reuse the last known position; the next miss forces CENTER.
func (t *tracker) Step(pos TargetPosition, ok bool) trackDecision {
	cur := pos
	if ok {
		t.misses = 0
		t.last = pos
	} else {
		t.misses++
		if t.misses > t.cfg.MaxNoDetection {
			t.last = TargetPosition{Direction: DirectionCenter}
		}
		cur = t.last
	}

	d := t.decide(cur)
	t.prev = cur
	d.Position = cur
	d.Left, d.Right = t.left, t.right
	return d
}

func (t *tracker) decide(cur TargetPosition) trackDecision {
	if cur.Direction == DirectionCenter {
		t.left, t.right = false, false
		return trackDecision{Sleep: t.cfg.CheckInterval, Reason: "center"}
	}

	held, opposite := &t.left, &t.right
	if cur.Direction == DirectionRight {
		held, opposite = &t.right, &t.left
	}
	*opposite = false

	if cur.OffsetRatio >= t.cfg.CenterThresholdMax {
		*held = true
		return trackDecision{Sleep: t.cfg.CheckInterval, Reason: "saturated"}
	}

	if t.prev.Direction != cur.Direction {
		if *held {
			return trackDecision{Sleep: t.cfg.MinPulse, Reason: "switch"}
		}
		*held = true
		return trackDecision{Sleep: scaleDuration(t.cfg.CheckInterval, t.cfg.HoldRate), Reason: "switch"}
	}

	diff := cur.OffsetRatio - t.prev.OffsetRatio
	switch {
	case diff > 0:
		*held = true
	case diff < 0:
		*held = false
	default:
		*held = !*held
	}
	pulse := math.Abs(diff) * t.cfg.FishSpeedRate
	if *held {
		pulse *= t.cfg.HoldRate
	}
	sleep := min(time.Duration(pulse*float64(time.Second)), scaleDuration(t.cfg.CheckInterval, t.cfg.MaxPulseFactor))
	return trackDecision{Sleep: max(sleep, t.cfg.MinPulse), Reason: "proportional"}
}

func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
