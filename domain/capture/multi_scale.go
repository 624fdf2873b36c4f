package capture

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MultiScaleOptions configures multi-scale template matching. Factors are
// generated from MinScale..MaxScale using ScaleStep. StopOnScore disables
// when set to 0.
type MultiScaleOptions struct {
	NCC         NCCOptions
	MinScale    float64
	MaxScale    float64
	ScaleStep   float64
	StopOnScore float64
	Workers     int
}

// MultiScaleResult is the best match found across scales.
type MultiScaleResult struct {
	NCCResult
	Scale           float64
	ScalesEvaluated int
}

// scaleFactors expands the configured range, capped at 200 steps. A
// degenerate range yields the single factor 1.
func (o MultiScaleOptions) scaleFactors() []float64 {
	if o.MinScale <= 0 || o.MaxScale < o.MinScale || o.ScaleStep <= 0 {
		return []float64{1}
	}
	maxSteps := min(1+int((o.MaxScale-o.MinScale)/o.ScaleStep+0.5), 200)
	out := make([]float64, 0, maxSteps)
	for i := 0; i < maxSteps; i++ {
		s := math.Round((o.MinScale+float64(i)*o.ScaleStep)*1e6) / 1e6
		if s > o.MaxScale+1e-9 {
			break
		}
		out = append(out, s)
	}
	return out
}

// multiScaleMatch evaluates every scale on a bounded errgroup and returns the
// best score. Once a scale reaches StopOnScore the remaining scales are skipped.
func (m *NCCMatcher) multiScaleMatch(frame *image.RGBA, tmpl image.Image, opts MultiScaleOptions) MultiScaleResult {
	best := MultiScaleResult{NCCResult: NCCResult{Score: -1}}
	if frame == nil || tmpl == nil {
		return best
	}
	base := m.cache.base(tmpl)
	if base == nil {
		return best
	}
	pre := buildGrayPrecomp(frame)
	fb := frame.Bounds()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(opts.Workers, 1))
	var mu sync.Mutex
	for _, factor := range opts.scaleFactors() {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			pc := m.cache.scaled(tmpl, base, factor)
			if pc == nil {
				return nil
			}
			res := matchPrecomp(fb, pc, opts.NCC, pre)
			mu.Lock()
			best.ScalesEvaluated++
			if res.Score > best.Score {
				best.NCCResult, best.Scale = res, factor
			}
			mu.Unlock()
			if opts.StopOnScore > 0 && res.Score >= opts.StopOnScore {
				return errStopScales
			}
			return nil
		})
	}
	_ = g.Wait()
	return best
}

var errStopScales = errors.New("capture: stop score reached")
