package capture

import (
	"fmt"
	"image"
	"log/slog"
)

// Match is a located template. Point is the top-left corner of the best
// window in the frame's coordinate space; Center is the middle of that window.
type Match struct {
	Point  image.Point
	Center image.Point
	Score  float64
	Scale  float64
}

// Matcher locates a template inside a frame. Implementations never panic on
// size mismatch; a template larger than the frame is simply not found.
type Matcher interface {
	Match(frame *image.RGBA, tmpl image.Image, threshold float64) (Match, bool)
}

// MatcherOptions selects and tunes the matching engine.
type MatcherOptions struct {
	Engine    string // ncc|opencv
	MinScale  float64
	MaxScale  float64
	ScaleStep float64
	Stride    int
	Workers   int
}

// NewMatcher returns the engine named in opts. "opencv" requires a binary
// built with the gocv tag.
func NewMatcher(opts MatcherOptions, logger *slog.Logger) (Matcher, error) {
	switch opts.Engine {
	case "", "ncc":
		return NewNCCMatcher(opts, logger), nil
	case "opencv":
		return newOpenCVMatcher(logger)
	default:
		return nil, fmt.Errorf("capture: unknown match engine %q", opts.Engine)
	}
}

// NCCMatcher is the pure-Go normalized cross-correlation engine.
type NCCMatcher struct {
	opts   MatcherOptions
	cache  *templateCache
	logger *slog.Logger
}

var _ Matcher = (*NCCMatcher)(nil)

func NewNCCMatcher(opts MatcherOptions, logger *slog.Logger) *NCCMatcher {
	return &NCCMatcher{opts: opts, cache: newTemplateCache(), logger: logger}
}

// Match runs a single-scale search, or the parallel multi-scale search when a
// scale range is configured.
func (m *NCCMatcher) Match(frame *image.RGBA, tmpl image.Image, threshold float64) (Match, bool) {
	if frame == nil || tmpl == nil {
		return Match{}, false
	}
	ncc := NCCOptions{Threshold: threshold, Stride: m.opts.Stride, Refine: m.opts.Stride > 1}
	if ncc.Threshold <= 0 {
		ncc.Threshold = 0.80
	}
	fb, tb := frame.Bounds(), tmpl.Bounds()
	if m.opts.MinScale == m.opts.MaxScale || m.opts.MaxScale == 0 {
		if tb.Dx() > fb.Dx() || tb.Dy() > fb.Dy() {
			if m.logger != nil {
				m.logger.Debug("template larger than search region", "template", tb.Size(), "region", fb.Size())
			}
			return Match{}, false
		}
		pc := m.cache.base(tmpl)
		res := matchPrecomp(fb, pc, ncc, buildGrayPrecomp(frame))
		return toMatch(res, pc, 1), res.Found
	}
	res := m.multiScaleMatch(frame, tmpl, MultiScaleOptions{
		NCC:         ncc,
		MinScale:    m.opts.MinScale,
		MaxScale:    m.opts.MaxScale,
		ScaleStep:   m.opts.ScaleStep,
		StopOnScore: 0.95,
		Workers:     m.opts.Workers,
	})
	if m.logger != nil && res.ScalesEvaluated > 0 {
		m.logger.Debug("multi-scale match", "score", res.Score, "scale", res.Scale, "scales", res.ScalesEvaluated)
	}
	pc := m.cache.scaled(tmpl, m.cache.base(tmpl), res.Scale)
	return toMatch(res.NCCResult, pc, res.Scale), res.Found
}

func toMatch(res NCCResult, pc *templatePrecomp, scale float64) Match {
	m := Match{Point: image.Pt(res.X, res.Y), Score: res.Score, Scale: scale}
	m.Center = m.Point
	if pc != nil {
		m.Center = m.Point.Add(image.Pt(pc.W/2, pc.H/2))
	}
	return m
}
