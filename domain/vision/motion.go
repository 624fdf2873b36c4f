package vision

import (
	"image"
	"log/slog"
	"math"
)

// MotionOptions tunes the frame-difference spike detector.
type MotionOptions struct {
	PixelDiff     int     `yaml:"pixel_diff"`     // per-pixel luminance change counted as "changed"
	SpikeRatio    float64 `yaml:"spike_ratio"`    // changed-pixel fraction required for a statistical spike
	BaselineRatio float64 `yaml:"baseline_ratio"` // changed-pixel fraction required for a baseline jump
	BaselineDiff  float64 `yaml:"baseline_diff"`  // mean distance from the EMA baseline for a baseline jump
	StdDevFactor  float64 `yaml:"std_dev_factor"`
	Window        int     `yaml:"window"`
	MinFrames     int     `yaml:"min_frames"`
	EMAAlpha      float64 `yaml:"ema_alpha"`
}

// DefaultMotionOptions returns thresholds tuned for a small, mostly static water region.
func DefaultMotionOptions() MotionOptions {
	return MotionOptions{
		PixelDiff:     10,
		SpikeRatio:    0.18,
		BaselineRatio: 0.12,
		BaselineDiff:  14,
		StdDevFactor:  2.0,
		Window:        20,
		MinFrames:     5,
		EMAAlpha:      0.03,
	}
}

// MotionDetector flags a sudden change of a region against its recent history.
// Not safe for concurrent use.
type MotionDetector struct {
	opts   MotionOptions
	logger *slog.Logger

	prev, ema, cur []float64
	w, h           int
	frames         int
	history        []float64
	hIdx, hCount   int
	triggered      bool
}

// NewMotionDetector returns a detector; zero-valued options fall back to defaults.
func NewMotionDetector(opts MotionOptions, logger *slog.Logger) *MotionDetector {
	def := DefaultMotionOptions()
	if opts.PixelDiff <= 0 {
		opts.PixelDiff = def.PixelDiff
	}
	if opts.SpikeRatio <= 0 {
		opts.SpikeRatio = def.SpikeRatio
	}
	if opts.BaselineRatio <= 0 {
		opts.BaselineRatio = def.BaselineRatio
	}
	if opts.BaselineDiff <= 0 {
		opts.BaselineDiff = def.BaselineDiff
	}
	if opts.StdDevFactor <= 0 {
		opts.StdDevFactor = def.StdDevFactor
	}
	if opts.Window <= 1 {
		opts.Window = def.Window
	}
	if opts.MinFrames <= 0 {
		opts.MinFrames = def.MinFrames
	}
	if opts.EMAAlpha <= 0 || opts.EMAAlpha >= 1 {
		opts.EMAAlpha = def.EMAAlpha
	}
	return &MotionDetector{opts: opts, logger: logger, history: make([]float64, opts.Window)}
}

// Reset forgets all history.
func (d *MotionDetector) Reset() {
	d.prev, d.ema, d.cur = nil, nil, nil
	d.w, d.h = 0, 0
	d.frames, d.hIdx, d.hCount = 0, 0, 0
	d.triggered = false
	for i := range d.history {
		d.history[i] = 0
	}
}

// Feed consumes one frame and reports whether it is a motion spike. After the
// first spike the detector stays quiet until Reset.
func (d *MotionDetector) Feed(frame *image.RGBA) bool {
	if frame == nil || d.triggered {
		return false
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return false
	}
	n := w * h
	if d.cur == nil || w != d.w || h != d.h {
		d.Reset()
		d.prev, d.ema, d.cur = make([]float64, n), make([]float64, n), make([]float64, n)
		d.w, d.h = w, h
	}
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			d.cur[y*w+x] = float64(Luma(row[x*4], row[x*4+1], row[x*4+2]))
		}
	}
	if d.frames == 0 {
		copy(d.prev, d.cur)
		copy(d.ema, d.cur)
		d.frames++
		return false
	}

	var sumPrev, sumBase float64
	changed := 0
	for i := 0; i < n; i++ {
		dp := math.Abs(d.cur[i] - d.prev[i])
		sumPrev += dp
		if dp > float64(d.opts.PixelDiff) {
			changed++
		}
		sumBase += math.Abs(d.cur[i] - d.ema[i])
	}
	dt := sumPrev / float64(n)
	ratio := float64(changed) / float64(n)
	baseMean := sumBase / float64(n)
	mean, std := d.stats()

	spike := d.hCount >= d.opts.MinFrames && dt > mean+d.opts.StdDevFactor*std && ratio > d.opts.SpikeRatio
	jump := baseMean > d.opts.BaselineDiff && ratio > d.opts.BaselineRatio
	if spike || jump {
		d.triggered = true
		if d.logger != nil {
			d.logger.Debug("motion spike", "dt", dt, "mean", mean, "std", std, "changed", ratio, "baseline_diff", baseMean)
		}
		return true
	}

	d.history[d.hIdx] = dt
	d.hIdx = (d.hIdx + 1) % len(d.history)
	if d.hCount < len(d.history) {
		d.hCount++
	}
	for i := range d.ema {
		d.ema[i] += (d.cur[i] - d.ema[i]) * d.opts.EMAAlpha
	}
	copy(d.prev, d.cur)
	d.frames++
	return false
}

// stats returns mean and sample standard deviation of the diff history.
func (d *MotionDetector) stats() (mean, std float64) {
	if d.hCount == 0 {
		return 0, 0
	}
	var m2 float64
	for i := 0; i < d.hCount; i++ {
		x := d.history[i]
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	if d.hCount > 1 {
		std = math.Sqrt(m2 / float64(d.hCount-1))
	}
	return mean, std
}
