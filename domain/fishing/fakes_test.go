package fishing

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/action"
	"github.com/soocke/reel-bot-go/domain/geometry"
	"github.com/soocke/reel-bot-go/domain/vision"
)

var discardLogger = slog.New(slog.DiscardHandler)

// fakeActuator records input events and the resulting held set.
type fakeActuator struct {
	mu        sync.Mutex
	events    []string
	held      map[string]bool
	clickHook func(p image.Point)
}

func newFakeActuator() *fakeActuator { return &fakeActuator{held: map[string]bool{}} }

func (f *fakeActuator) record(ev, input string, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if input != "" {
		f.held[input] = down
	}
}

func (f *fakeActuator) KeyDown(name string) error {
	f.record("down:"+name, "key:"+name, true)
	return nil
}

func (f *fakeActuator) KeyUp(name string) error {
	f.record("up:"+name, "key:"+name, false)
	return nil
}

func (f *fakeActuator) MouseDown(b action.Button) error {
	f.record("mouse_down:"+b.String(), "mouse:"+b.String(), true)
	return nil
}

func (f *fakeActuator) MouseUp(b action.Button) error {
	f.record("mouse_up:"+b.String(), "mouse:"+b.String(), false)
	return nil
}

func (f *fakeActuator) PressKey(_ context.Context, name string, _ time.Duration) error {
	f.record("press:"+name, "", false)
	return nil
}

func (f *fakeActuator) Click(_ context.Context, p image.Point, _ action.Button, _ time.Duration) error {
	if f.clickHook != nil {
		f.clickHook(p)
	}
	f.record(fmt.Sprintf("click:%d,%d", p.X, p.Y), "", false)
	return nil
}

func (f *fakeActuator) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// Held lists inputs currently down.
func (f *fakeActuator) Held() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, v := range f.held {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (f *fakeActuator) count(ev string) int {
	n := 0
	for _, e := range f.Events() {
		if e == ev {
			n++
		}
	}
	return n
}

// fakeSenses answers perception queries from optional funcs.
type fakeSenses struct {
	mu          sync.Mutex
	bar         func() bool
	level       func() TensionReading
	fish        func() (TargetPosition, bool)
	bite        func() bool
	locate      func(tc config.TemplateCheck) (image.Point, bool)
	unavailable bool
	biteResets  int
	fishCalls   int
}

func (s *fakeSenses) TensionBarPresent() bool {
	if s.bar == nil {
		return false
	}
	return s.bar()
}

func (s *fakeSenses) TensionLevel() TensionReading {
	if s.level == nil {
		return TensionReading{Level: vision.TensionNone, Source: "color"}
	}
	return s.level()
}

func (s *fakeSenses) FishPosition() (TargetPosition, bool) {
	s.mu.Lock()
	s.fishCalls++
	s.mu.Unlock()
	if s.fish == nil {
		return TargetPosition{}, false
	}
	return s.fish()
}

func (s *fakeSenses) Available() bool { return !s.unavailable }

func (s *fakeSenses) BiteDetected() bool {
	if s.bite == nil {
		return false
	}
	return s.bite()
}

func (s *fakeSenses) ResetBite() {
	s.mu.Lock()
	s.biteResets++
	s.mu.Unlock()
}

func (s *fakeSenses) Locate(tc config.TemplateCheck) (image.Point, bool) {
	if s.locate == nil {
		return image.Point{}, false
	}
	return s.locate(tc)
}

func (s *fakeSenses) Point(p geometry.NormalizedPoint) (image.Point, bool) {
	if s.unavailable {
		return image.Point{}, false
	}
	return image.Pt(int(p.X*1000), int(p.Y*1000)), true
}

// eventually polls cond until it holds or the timeout elapses. Safe to call
// from helper goroutines.
func eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

// waitFor fails the test when cond does not hold within timeout.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	if !eventually(timeout, cond) {
		t.Fatalf("condition not met within %v", timeout)
	}
}
