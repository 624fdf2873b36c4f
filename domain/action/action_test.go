package action

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/soocke/reel-bot-go/domain/geometry"
)

type fakeBackend struct {
	events []string
	pos    image.Point
	failUp bool
}

func (f *fakeBackend) KeyDown(k Key) error { f.events = append(f.events, "down:"+k.Name); return nil }
func (f *fakeBackend) KeyUp(k Key) error {
	f.events = append(f.events, "up:"+k.Name)
	if f.failUp {
		return errors.New("os refused")
	}
	return nil
}
func (f *fakeBackend) MouseDown(b Button) error {
	f.events = append(f.events, "mdown:"+b.String())
	return nil
}
func (f *fakeBackend) MouseUp(b Button) error {
	f.events = append(f.events, "mup:"+b.String())
	return nil
}
func (f *fakeBackend) MoveTo(p image.Point) error {
	f.pos = p
	f.events = append(f.events, "move")
	return nil
}
func (f *fakeBackend) CursorPos() (image.Point, error) { return f.pos, nil }

func newTestActuator(b Backend, h *Humanizer) *Actuator {
	a := NewActuator(b, h, nil)
	a.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return a
}

func TestLookupKey(t *testing.T) {
	cases := map[string][2]uint16{
		"a": {0x41, 0x1E}, "D": {0x44, 0x20}, "e": {0x45, 0x12}, "w": {0x57, 0x11}, "s": {0x53, 0x1F},
		"space": {0x20, 0x39}, "enter": {0x0D, 0x1C}, "esc": {0x1B, 0x01}, "alt": {0x12, 0x38},
		"f1": {0x70, 0x3B}, "f12": {0x7B, 0x58}, "1": {0x31, 0x02}, "0": {0x30, 0x0B},
	}
	for name, want := range cases {
		k, err := LookupKey(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if k.VK != want[0] || k.Scan != want[1] {
			t.Fatalf("%s: vk=%#x scan=%#x, want %#x/%#x", name, k.VK, k.Scan, want[0], want[1])
		}
	}
	if _, err := LookupKey("hyper"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseButton(t *testing.T) {
	if b, err := ParseButton("Right"); err != nil || b != ButtonRight {
		t.Fatalf("right: %v %v", b, err)
	}
	if _, err := ParseButton("fourth"); !errors.Is(err, ErrUnknownButton) {
		t.Fatalf("err = %v", err)
	}
}

func TestPressKeyReleasesOnCancel(t *testing.T) {
	fb := &fakeBackend{}
	a := newTestActuator(fb, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Cancelled before the pre-delay: nothing is pressed.
	if err := a.PressKey(ctx, "e", time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(fb.events) != 0 {
		t.Fatalf("events = %v", fb.events)
	}

	calls := 0
	a.sleep = func(ctx context.Context, _ time.Duration) error {
		calls++
		if calls == 2 {
			return context.Canceled
		}
		return nil
	}
	if err := a.PressKey(context.Background(), "e", time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if strings.Join(fb.events, ",") != "down:e,up:e" {
		t.Fatalf("events = %v", fb.events)
	}
}

func TestClickSequence(t *testing.T) {
	fb := &fakeBackend{}
	a := newTestActuator(fb, NewHumanizer(HumanizeOptions{}, 1))
	if err := a.Click(context.Background(), image.Pt(100, 200), ButtonLeft, 0); err != nil {
		t.Fatalf("click: %v", err)
	}
	if strings.Join(fb.events, ",") != "move,mdown:left,mup:left" {
		t.Fatalf("events = %v", fb.events)
	}
	if fb.pos != image.Pt(100, 200) {
		t.Fatalf("pos = %v", fb.pos)
	}
}

func TestClickSmoothMove(t *testing.T) {
	fb := &fakeBackend{pos: image.Pt(0, 0)}
	a := newTestActuator(fb, NewHumanizer(HumanizeOptions{}, 1))
	if err := a.Click(context.Background(), image.Pt(50, 80), ButtonRight, 200*time.Millisecond); err != nil {
		t.Fatalf("click: %v", err)
	}
	moves := 0
	for _, e := range fb.events {
		if e == "move" {
			moves++
		}
	}
	if moves != 20 {
		t.Fatalf("moves = %d, want 20", moves)
	}
	if fb.pos != image.Pt(50, 80) {
		t.Fatalf("final pos = %v", fb.pos)
	}
}

func TestHumanizerBounds(t *testing.T) {
	h := NewHumanizer(HumanizeOptions{
		Enabled:      true,
		DelayMin:     100 * time.Millisecond,
		DelayMax:     500 * time.Millisecond,
		JitterPx:     3,
		ClickHoldMin: 80 * time.Millisecond,
		ClickHoldMax: 120 * time.Millisecond,
	}, 42)
	for i := 0; i < 1000; i++ {
		if d := h.Delay(); d < 100*time.Millisecond || d > 500*time.Millisecond {
			t.Fatalf("delay %v out of range", d)
		}
		j := h.Jitter()
		if j.X < -3 || j.X > 3 || j.Y < -3 || j.Y > 3 {
			t.Fatalf("jitter %v out of range", j)
		}
		if c := h.ClickHold(); c < 80*time.Millisecond || c >= 120*time.Millisecond {
			t.Fatalf("click hold %v out of range", c)
		}
	}
	var off *Humanizer
	if off.Delay() != 0 || off.Jitter() != (image.Point{}) {
		t.Fatalf("nil humanizer must be inert")
	}
}

func TestHumanizerPath(t *testing.T) {
	p := (*Humanizer)(nil).Path(image.Pt(0, 0), image.Pt(10, 0), 50*time.Millisecond)
	if len(p) != 10 || p[len(p)-1] != image.Pt(10, 0) {
		t.Fatalf("path = %v", p)
	}
}

type fakeWindows struct {
	list []WindowInfo
	info map[uintptr]WindowInfo
	act  []uintptr
}

func (f *fakeWindows) List() ([]WindowInfo, error) { return f.list, nil }
func (f *fakeWindows) Info(h uintptr) (WindowInfo, bool) {
	i, ok := f.info[h]
	return i, ok
}
func (f *fakeWindows) Activate(h uintptr) error { f.act = append(f.act, h); return nil }

func TestWindowGeometryTracksMoves(t *testing.T) {
	game := WindowInfo{Handle: 7, Title: "Angler Online", Geometry: geometry.WindowGeometry{Left: 500, Top: 100, Width: 800, Height: 600}}
	fw := &fakeWindows{
		list: []WindowInfo{{Handle: 1, Title: "Editor"}, game},
		info: map[uintptr]WindowInfo{7: game},
	}
	w := NewWindow(fw, "angler", nil)
	g, ok := w.Geometry()
	if !ok || g != game.Geometry {
		t.Fatalf("geometry = %v %v", g, ok)
	}
	moved := game
	moved.Geometry.Left = 20
	fw.info[7] = moved
	if g, _ := w.Geometry(); g.Left != 20 {
		t.Fatalf("move not observed: %v", g)
	}
	moved.Minimized = true
	fw.info[7] = moved
	if _, ok := w.Geometry(); ok {
		t.Fatalf("minimized window must report no geometry")
	}
	if err := w.Activate(); err != nil || len(fw.act) != 1 || fw.act[0] != 7 {
		t.Fatalf("activate: %v %v", err, fw.act)
	}
}

func TestWindowNotFound(t *testing.T) {
	w := NewWindow(&fakeWindows{}, "ghost", nil)
	if _, err := w.Find(); err == nil {
		t.Fatalf("expected not found")
	}
	if _, ok := w.Geometry(); ok {
		t.Fatalf("expected no geometry")
	}
}

func TestFilterWindows(t *testing.T) {
	all := []WindowInfo{{Title: "A game"}, {Title: "  "}, {Title: "Browser"}}
	if got := FilterWindows(all, ""); len(got) != 2 {
		t.Fatalf("all = %v", got)
	}
	if got := FilterWindows(all, "GAME"); len(got) != 1 {
		t.Fatalf("filtered = %v", got)
	}
}

func TestWindowSetTitleRetargets(t *testing.T) {
	a := WindowInfo{Handle: 1, Title: "Angler Online", Geometry: geometry.WindowGeometry{Width: 800, Height: 600}}
	b := WindowInfo{Handle: 2, Title: "Other Game", Geometry: geometry.WindowGeometry{Left: 10, Width: 640, Height: 480}}
	fw := &fakeWindows{list: []WindowInfo{a, b}, info: map[uintptr]WindowInfo{1: a, 2: b}}
	w := NewWindow(fw, "angler", nil)
	if info, err := w.Find(); err != nil || info.Handle != 1 {
		t.Fatalf("find=%v,%v", info, err)
	}
	w.SetTitle("other")
	g, ok := w.Geometry()
	if !ok || g != b.Geometry {
		t.Fatalf("geometry=%v,%v want the retargeted window", g, ok)
	}
}
