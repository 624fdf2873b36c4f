package fishing

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/soocke/reel-bot-go/assets"
	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/capture"
	"github.com/soocke/reel-bot-go/domain/geometry"
	"github.com/soocke/reel-bot-go/domain/vision"
)

type fakeGeometry struct {
	g  geometry.WindowGeometry
	ok bool
}

func (f fakeGeometry) Geometry() (geometry.WindowGeometry, bool) { return f.g, f.ok }

// paintedFrames returns frames filled with bg plus an optional bright block.
type paintedFrames struct {
	bg       color.RGBA
	block    image.Rectangle
	err      error
	released int
}

func (f *paintedFrames) Capture(rect image.Rectangle) (*image.RGBA, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := f.bg
			if image.Pt(x, y).In(f.block) {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (f *paintedFrames) Release(*image.RGBA) { f.released++ }

type fakeMatcher struct{ hits map[image.Image]image.Point }

func (m fakeMatcher) Match(_ *image.RGBA, tmpl image.Image, _ float64) (capture.Match, bool) {
	p, ok := m.hits[tmpl]
	return capture.Match{Point: p, Center: p, Score: 0.99, Scale: 1}, ok
}

type fakeTemplates map[string]image.Image

func (f fakeTemplates) Load(name string) (image.Image, error) {
	if img, ok := f[name]; ok {
		return img, nil
	}
	return nil, assets.ErrTemplateNotFound
}

var testWindow = geometry.WindowGeometry{Left: 500, Top: 100, Width: 800, Height: 600}

func newTestPerception(frames FrameSource, m capture.Matcher, tmpls TemplateSource, geoOK bool) *Perception {
	cfg := config.DefaultConfig()
	cfg.Detection.FishSplash.Region = geometry.FullWindow
	s := Sensors{Geometry: fakeGeometry{g: testWindow, ok: geoOK}, Frames: frames, Matcher: m, Templates: tmpls}
	return NewPerception(cfg.Detection, cfg.Fishing.FishTracking, s, discardLogger)
}

func TestPerceptionFishPosition(t *testing.T) {
	frames := &paintedFrames{bg: color.RGBA{A: 255}, block: image.Rect(555, 395, 566, 406)}
	p := newTestPerception(frames, fakeMatcher{}, fakeTemplates{}, true)

	pos, ok := p.FishPosition()
	if !ok {
		t.Fatalf("expected a splash")
	}
	if pos.Direction != DirectionLeft || math.Abs(pos.OffsetRatio-0.425) > 1e-9 {
		t.Fatalf("position=%+v want left 0.425", pos)
	}
	if frames.released != 1 {
		t.Fatalf("frame not released")
	}
}

func TestPerceptionNoGeometry(t *testing.T) {
	p := newTestPerception(&paintedFrames{}, fakeMatcher{}, fakeTemplates{}, false)
	if p.Available() {
		t.Fatalf("expected unavailable")
	}
	if _, ok := p.FishPosition(); ok {
		t.Fatalf("fish position without geometry")
	}
	if _, ok := p.Point(geometry.NormalizedPoint{X: 0.5, Y: 0.5}); ok {
		t.Fatalf("point without geometry")
	}
	if r := p.TensionLevel(); r.Level != vision.TensionNone || r.Source != "template" {
		t.Fatalf("reading=%+v want none via template", r)
	}
}

func TestPerceptionTensionColor(t *testing.T) {
	red := color.RGBA{R: 240, G: 20, B: 20, A: 255}
	p := newTestPerception(&paintedFrames{bg: red}, fakeMatcher{}, fakeTemplates{}, true)
	r := p.TensionLevel()
	if r.Level != vision.TensionCritical || r.Source != "color" {
		t.Fatalf("reading=%+v want critical via color", r)
	}
}

func TestPerceptionTensionCaptureFailure(t *testing.T) {
	tmpl := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frames := &paintedFrames{err: capture.ErrEmptyRect}
	p := newTestPerception(frames, fakeMatcher{}, fakeTemplates{"red_tension.png": tmpl}, true)
	if r := p.TensionLevel(); r.Level != vision.TensionNone {
		t.Fatalf("capture failure must not read as critical: %+v", r)
	}
}

func TestPerceptionLocateAndBite(t *testing.T) {
	bite := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frames := &paintedFrames{bg: color.RGBA{A: 255}}
	m := fakeMatcher{hits: map[image.Image]image.Point{bite: image.Pt(900, 400)}}
	p := newTestPerception(frames, m, fakeTemplates{"bite_indicator.png": bite}, true)

	if !p.BiteDetected() {
		t.Fatalf("expected template bite")
	}
	pt, ok := p.Locate(config.TemplateCheck{Region: geometry.FullWindow, Template: "bite_indicator.png"})
	if !ok || pt != image.Pt(900, 400) {
		t.Fatalf("locate=%v,%v", pt, ok)
	}
	if _, ok := p.Locate(config.TemplateCheck{Region: geometry.FullWindow, Template: "missing.png"}); ok {
		t.Fatalf("missing template must fail closed")
	}
}

func TestPerceptionBiteColor(t *testing.T) {
	orange := color.RGBA{R: 250, G: 120, B: 10, A: 255}
	p := newTestPerception(&paintedFrames{bg: orange}, fakeMatcher{}, fakeTemplates{}, true)
	if !p.BiteDetected() {
		t.Fatalf("expected colour bite")
	}
	black := newTestPerception(&paintedFrames{bg: color.RGBA{A: 255}}, fakeMatcher{}, fakeTemplates{}, true)
	if black.BiteDetected() {
		t.Fatalf("dark frame must not bite")
	}
}
