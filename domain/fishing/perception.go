package fishing

import (
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/capture"
	"github.com/soocke/reel-bot-go/domain/geometry"
	"github.com/soocke/reel-bot-go/domain/vision"
)

// Sensors bundles the collaborators Perception reads from.
type Sensors struct {
	Geometry  GeometryProvider
	Frames    FrameSource
	Matcher   capture.Matcher
	Templates TemplateSource
}

// Perception resolves a region against the live window, captures it and
// runs one extractor. Every failure degrades to "not found".
type Perception struct {
	det          config.DetectionConfig
	centerOffset float64
	centerMin    float64
	s            Sensors
	logger       *slog.Logger

	mu     sync.Mutex
	motion *vision.MotionDetector
}

var _ Senses = (*Perception)(nil)

func NewPerception(det config.DetectionConfig, track config.FishTrackingConfig, s Sensors, logger *slog.Logger) *Perception {
	logger = orNop(logger)
	return &Perception{
		det:          det,
		centerOffset: track.CenterOffset,
		centerMin:    track.CenterThresholdMin,
		s:            s,
		logger:       logger,
		motion:       vision.NewMotionDetector(det.Bite.Motion.MotionOptions, logger),
	}
}

func (p *Perception) Available() bool {
	_, ok := p.s.Geometry.Geometry()
	return ok
}

func (p *Perception) grab(r geometry.NormalizedRegion) (*image.RGBA, geometry.WindowGeometry, bool) {
	g, ok := p.s.Geometry.Geometry()
	if !ok {
		return nil, g, false
	}
	rect, ok := geometry.Resolve(&g, r)
	if !ok {
		return nil, g, false
	}
	frame, err := p.s.Frames.Capture(rect)
	if err != nil {
		p.logger.Debug("capture failed", "rect", rect, "error", err)
		return nil, g, false
	}
	return frame, g, true
}

// Locate searches tc.Region for tc.Template and returns the absolute centre
// of the best match.
func (p *Perception) Locate(tc config.TemplateCheck) (image.Point, bool) {
	tmpl, err := p.s.Templates.Load(tc.Template)
	if err != nil {
		p.logger.Debug("template unavailable", "template", tc.Template, "error", err)
		return image.Point{}, false
	}
	frame, _, ok := p.grab(tc.Region)
	if !ok {
		return image.Point{}, false
	}
	defer p.s.Frames.Release(frame)
	m, found := p.s.Matcher.Match(frame, tmpl, tc.Threshold)
	if !found {
		return image.Point{}, false
	}
	p.logger.Debug("template matched", "template", tc.Template, "score", m.Score, "x", m.Center.X, "y", m.Center.Y)
	return m.Center, true
}

func (p *Perception) Point(pt geometry.NormalizedPoint) (image.Point, bool) {
	g, ok := p.s.Geometry.Geometry()
	if !ok {
		return image.Point{}, false
	}
	return geometry.ResolvePoint(&g, pt)
}

func (p *Perception) TensionBarPresent() bool {
	_, ok := p.Locate(p.det.TensionBar)
	return ok
}

// TensionLevel classifies the bar by its critical-colour fill and falls back
// to the red tension template when the bar region cannot be captured.
func (p *Perception) TensionLevel() TensionReading {
	rt := p.det.RedTension
	if frame, _, ok := p.grab(rt.Region); ok {
		level, ratio := vision.ClassifyTensionByColor(frame, rt.Color, rt.TensionThresholds)
		p.s.Frames.Release(frame)
		return TensionReading{Level: level, Ratio: ratio, Source: "color"}
	}
	if _, found := p.Locate(p.det.RedTensionTemplate); found {
		return TensionReading{Level: vision.TensionCritical, Ratio: 1, Source: "template"}
	}
	return TensionReading{Level: vision.TensionNone, Source: "template"}
}

func (p *Perception) FishPosition() (TargetPosition, bool) {
	fs := p.det.FishSplash
	frame, g, ok := p.grab(fs.Region)
	if !ok {
		return TargetPosition{}, false
	}
	defer p.s.Frames.Release(frame)
	pt, found := vision.LocateBrightBlob(frame, uint8(fs.WhiteThreshold), fs.MinArea)
	if !found {
		return TargetPosition{}, false
	}
	return ClassifyPosition(pt.X, g, p.centerOffset, p.centerMin), true
}

// ClassifyPosition places absolute x relative to the window centre shifted
// by centerOffset pixels. Ratios below centerMin are CENTER.
func ClassifyPosition(x int, g geometry.WindowGeometry, centerOffset, centerMin float64) TargetPosition {
	if g.Width <= 0 {
		return TargetPosition{Direction: DirectionCenter}
	}
	offset := float64(x) - g.Center(centerOffset)
	pos := TargetPosition{OffsetRatio: math.Abs(offset) / float64(g.Width)}
	switch {
	case pos.OffsetRatio < centerMin:
		pos.Direction = DirectionCenter
	case offset < 0:
		pos.Direction = DirectionLeft
	default:
		pos.Direction = DirectionRight
	}
	return pos
}

// BiteDetected checks the bite region by colour ratio, then motion (when
// enabled), then the bite template.
func (p *Perception) BiteDetected() bool {
	b := p.det.Bite
	if frame, _, ok := p.grab(b.Region); ok {
		ratio := vision.ColorRatio(frame, b.Color)
		moved := false
		if ratio < b.MinRatio && b.Motion.Enabled {
			p.mu.Lock()
			moved = p.motion.Feed(frame)
			p.mu.Unlock()
		}
		p.s.Frames.Release(frame)
		switch {
		case ratio >= b.MinRatio:
			p.logger.Info("bite detected", "source", "color", "ratio", ratio)
			return true
		case moved:
			p.logger.Info("bite detected", "source", "motion")
			return true
		}
	}
	if _, found := p.Locate(b.TemplateCheck); found {
		p.logger.Info("bite detected", "source", "template")
		return true
	}
	return false
}

// ResetBite clears motion history before a new wait.
func (p *Perception) ResetBite() {
	p.mu.Lock()
	p.motion.Reset()
	p.mu.Unlock()
}
