package action

import (
	"image"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// HumanizeOptions bounds the random perturbations applied to deliberate
// actions (clicks and key taps). Held keys driven by the controller are not
// perturbed.
type HumanizeOptions struct {
	Enabled       bool
	DelayMin      time.Duration
	DelayMax      time.Duration
	JitterPx      int
	ClickHoldMin  time.Duration
	ClickHoldMax  time.Duration
	MoveStepsPerS int
}

// Humanizer draws delays and offsets. Safe for concurrent use.
type Humanizer struct {
	opts HumanizeOptions
	mu   sync.Mutex
	rng  *rand.Rand
}

func NewHumanizer(opts HumanizeOptions, seed uint64) *Humanizer {
	if opts.MoveStepsPerS <= 0 {
		opts.MoveStepsPerS = 100
	}
	return &Humanizer{opts: opts, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Delay returns a gaussian pre-action delay centred between DelayMin and
// DelayMax (sigma = range/6), clamped to the range.
func (h *Humanizer) Delay() time.Duration {
	if h == nil || !h.opts.Enabled || h.opts.DelayMax <= 0 {
		return 0
	}
	lo, hi := float64(h.opts.DelayMin), float64(h.opts.DelayMax)
	h.mu.Lock()
	v := h.rng.NormFloat64()*(hi-lo)/6 + (lo+hi)/2
	h.mu.Unlock()
	return time.Duration(math.Max(lo, math.Min(hi, v)))
}

// Jitter returns a gaussian (sigma 1px) click offset clamped to ±JitterPx.
func (h *Humanizer) Jitter() image.Point {
	if h == nil || !h.opts.Enabled || h.opts.JitterPx <= 0 {
		return image.Point{}
	}
	h.mu.Lock()
	dx, dy := h.rng.NormFloat64(), h.rng.NormFloat64()
	h.mu.Unlock()
	lim := h.opts.JitterPx
	return image.Pt(max(-lim, min(lim, int(dx))), max(-lim, min(lim, int(dy))))
}

// ClickHold returns how long a click keeps the button down.
func (h *Humanizer) ClickHold() time.Duration {
	if h == nil || h.opts.ClickHoldMax <= 0 {
		return 10 * time.Millisecond
	}
	lo, hi := h.opts.ClickHoldMin, h.opts.ClickHoldMax
	if hi <= lo {
		return lo
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return lo + time.Duration(h.rng.Int64N(int64(hi-lo)))
}

// Path interpolates a straight cursor path from `from` to `to` over d, at
// least 10 steps. The last point is always `to`.
func (h *Humanizer) Path(from, to image.Point, d time.Duration) []image.Point {
	rate := 100
	if h != nil {
		rate = h.opts.MoveStepsPerS
	}
	steps := max(10, int(d.Seconds()*float64(rate)))
	out := make([]image.Point, steps)
	dx := float64(to.X-from.X) / float64(steps)
	dy := float64(to.Y-from.Y) / float64(steps)
	for i := 0; i < steps; i++ {
		out[i] = image.Pt(from.X+int(dx*float64(i+1)), from.Y+int(dy*float64(i+1)))
	}
	out[steps-1] = to
	return out
}
