package presenter

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/reel-bot-go/domain/fishing"
	"github.com/soocke/reel-bot-go/ui/model"
)

type mockBot struct {
	runs      atomic.Int32
	listeners atomic.Int32
	catches   int64
	started   chan struct{}
}

func newMockBot() *mockBot { return &mockBot{started: make(chan struct{}, 4)} }

func (b *mockBot) Run(ctx context.Context) error {
	b.runs.Add(1)
	b.started <- struct{}{}
	<-ctx.Done()
	return nil
}

func (b *mockBot) Stats() fishing.Stats { return fishing.Stats{Catches: b.catches} }

func (b *mockBot) AddListener(fishing.StateListener) { b.listeners.Add(1) }

type mockView struct {
	mu            sync.Mutex
	editableCalls int
	lastEditable  bool
	state         string
	session       time.Duration
	catches       string
	preview       image.Image
	resets        int
}

func (v *mockView) ConfigEditable(b bool) {
	v.mu.Lock()
	v.editableCalls++
	v.lastEditable = b
	v.mu.Unlock()
}
func (v *mockView) SetStateLabel(s string)                  { v.state = s }
func (v *mockView) SetSession(session, total time.Duration) { v.session = session }
func (v *mockView) SetCatches(s string)                     { v.catches = s }
func (v *mockView) UpdatePreview(img image.Image)           { v.preview = img }
func (v *mockView) PreviewReset()                           { v.resets++ }

func TestRunPresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &model.RunModel{}
	view := &mockView{}
	var built atomic.Int32
	bot := newMockBot()
	factory := func() (Bot, error) { built.Add(1); return bot, nil }
	fsm := NewFSMPresenter(view)
	p := NewRunPresenter(context.Background(), m, factory, view, fsm.OnState, nil)

	p.Enable()
	if !m.Enabled() || built.Load() != 1 || bot.listeners.Load() != 1 || view.lastEditable || view.editableCalls != 1 {
		t.Fatalf("enable failed: enabled=%v built=%d editableCalls=%d", m.Enabled(), built.Load(), view.editableCalls)
	}
	<-bot.started
	p.Enable()
	if built.Load() != 1 {
		t.Fatalf("enable not idempotent: built=%d", built.Load())
	}

	p.Disable()
	if m.Enabled() || !view.lastEditable || view.editableCalls != 2 {
		t.Fatalf("disable failed: enabled=%v editableCalls=%d", m.Enabled(), view.editableCalls)
	}
	if !p.Wait(time.Second) {
		t.Fatalf("bot did not stop")
	}
	p.Disable()
	if view.editableCalls != 2 {
		t.Fatalf("disable not idempotent")
	}
}

func TestRunPresenter_ToggleRebuildsBot(t *testing.T) {
	m := &model.RunModel{}
	view := &mockView{}
	var built atomic.Int32
	factory := func() (Bot, error) { built.Add(1); return newMockBot(), nil }
	p := NewRunPresenter(context.Background(), m, factory, view, nil, nil)

	p.Toggle()
	p.Toggle()
	if !p.Wait(time.Second) {
		t.Fatalf("first run did not stop")
	}
	p.Toggle()
	if built.Load() != 2 || !p.Enabled() {
		t.Fatalf("expected a fresh bot on restart, built=%d", built.Load())
	}
	p.Disable()
	p.Wait(time.Second)
}

func TestRunPresenter_ParentCancelRestoresConfig(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	m := &model.RunModel{}
	view := &mockView{}
	bot := newMockBot()
	p := NewRunPresenter(parent, m, func() (Bot, error) { return bot, nil }, view, nil, nil)
	loop := NewLoop(nil, nil, p, nil, nil)

	p.Enable()
	<-bot.started
	cancelParent()
	if !p.Wait(time.Second) {
		t.Fatalf("bot did not stop after parent cancel")
	}
	if m.Enabled() {
		t.Fatalf("model still enabled after run ended")
	}
	loop.Tick()
	if !view.lastEditable || view.editableCalls != 2 {
		t.Fatalf("config not editable after run ended: calls=%d editable=%v", view.editableCalls, view.lastEditable)
	}
	loop.Tick()
	p.Disable()
	if view.editableCalls != 2 {
		t.Fatalf("ended run must not be restored twice, calls=%d", view.editableCalls)
	}

	fresh := newMockBot()
	p.factory = func() (Bot, error) { return fresh, nil }
	p.parent = context.Background()
	p.Enable()
	<-fresh.started
	if !m.Enabled() || view.lastEditable {
		t.Fatalf("restart after ended run failed")
	}
	p.Disable()
	p.Wait(time.Second)
}

func TestRunPresenter_FactoryError(t *testing.T) {
	m := &model.RunModel{}
	view := &mockView{}
	p := NewRunPresenter(context.Background(), m, func() (Bot, error) { return nil, errors.New("no window") }, view, nil, nil)
	p.Enable()
	if m.Enabled() || view.editableCalls != 0 {
		t.Fatalf("failed setup must leave the bot stopped")
	}
	if p.Stats() != (fishing.Stats{}) {
		t.Fatalf("stats without a bot should be zero")
	}
}

func TestRunPresenter_ParentCancelStopsBot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &model.RunModel{}
	bot := newMockBot()
	p := NewRunPresenter(ctx, m, func() (Bot, error) { return bot, nil }, &mockView{}, nil, nil)
	p.Enable()
	<-bot.started
	cancel()
	if !p.Wait(time.Second) || m.Enabled() {
		t.Fatalf("bot must stop with the parent context")
	}
}

func TestFSMPresenter_ShowsLatestState(t *testing.T) {
	view := &mockView{}
	p := NewFSMPresenter(view)
	p.Tick(time.Now())
	if view.state != "" {
		t.Fatalf("no transition yet, got %q", view.state)
	}
	p.OnState(fishing.StateIdle, fishing.StateCasting)
	p.OnState(fishing.StateCasting, fishing.StateWaitingBite)
	p.Tick(time.Now())
	if view.state != "State: waiting_bite" {
		t.Fatalf("state=%q", view.state)
	}
}

type fixedRun struct {
	on    bool
	stats fishing.Stats
}

func (r fixedRun) Enabled() bool        { return r.on }
func (r fixedRun) Stats() fishing.Stats { return r.stats }

func TestSessionPresenter_Tick(t *testing.T) {
	view := &mockView{}
	sess := model.NewSessionModel()
	base := time.Unix(1_000_000, 0)
	run := fixedRun{on: true, stats: fishing.Stats{Catches: 3, LastCatch: base}}
	p := NewSessionPresenter(sess, run, view)
	p.Tick(base)
	p.Tick(base.Add(10 * time.Second))
	if view.session != 10*time.Second {
		t.Fatalf("session=%v", view.session)
	}
	if view.catches != "Catches: 3 (last 10 seconds ago)" {
		t.Fatalf("catches=%q", view.catches)
	}
}

func TestPreviewPresenter_RequestThenTick(t *testing.T) {
	view := &mockView{}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	pm := model.NewPreviewModel()
	p := NewPreviewPresenter(pm, func() (image.Image, error) { return img, nil }, view, nil)
	p.Request()
	deadline := time.Now().Add(time.Second)
	for view.preview == nil && time.Now().Before(deadline) {
		p.Tick(time.Now())
		time.Sleep(5 * time.Millisecond)
	}
	if view.preview != image.Image(img) {
		t.Fatalf("preview not delivered")
	}

	failing := NewPreviewPresenter(model.NewPreviewModel(), func() (image.Image, error) { return nil, errors.New("minimized") }, view, nil)
	failing.Request()
	deadline = time.Now().Add(time.Second)
	for view.resets == 0 && time.Now().Before(deadline) {
		failing.Tick(time.Now())
		time.Sleep(5 * time.Millisecond)
	}
	if view.resets != 1 {
		t.Fatalf("failed capture should reset the preview")
	}
}

func TestLoopTickSchedules(t *testing.T) {
	var scheduled int
	l := NewLoop(nil, nil, nil, nil, func() { scheduled++ })
	l.Tick()
	if scheduled != 1 {
		t.Fatalf("schedule calls=%d", scheduled)
	}
	var nilLoop *Loop
	nilLoop.Tick()
}
