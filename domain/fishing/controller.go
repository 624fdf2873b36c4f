package fishing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/action"
)

// ControllerConfig parameterizes one tension episode.
type ControllerConfig struct {
	Duration           time.Duration
	SupervisorInterval time.Duration
	CheckInterval      time.Duration
	JoinTimeout        time.Duration
	Button             action.Button
	Tracking           bool
	LeftKey            string
	RightKey           string
	Regulator          RegulatorConfig
	Tracker            TrackerConfig
}

// ControllerConfigFrom maps the tension and tracking sections of cfg.
func ControllerConfigFrom(cfg *config.Config) (ControllerConfig, error) {
	tp, ft := cfg.Fishing.TensionPhase, cfg.Fishing.FishTracking
	btn, err := action.ParseButton(tp.Button)
	if err != nil {
		return ControllerConfig{}, fmt.Errorf("fishing.tension_phase.button: %w", err)
	}
	return ControllerConfig{
		Duration:           tp.Duration.D(),
		SupervisorInterval: tp.SupervisorInterval.D(),
		CheckInterval:      tp.CheckInterval.D(),
		JoinTimeout:        tp.JoinTimeout.D(),
		Button:             btn,
		Tracking:           ft.Enabled,
		LeftKey:            ft.LeftKey,
		RightKey:           ft.RightKey,
		Regulator: RegulatorConfig{
			Intermittent: tp.IntermittentThreshold,
			Max:          tp.MaxThreshold,
			Hold:         tp.HoldDuration.D(),
			Release:      tp.ReleaseDuration.D(),
			MaxRelease:   tp.MaxReleaseDuration.D(),
		},
		Tracker: TrackerConfig{
			CheckInterval:      ft.CheckInterval.D(),
			CenterThresholdMax: ft.CenterThresholdMax,
			MaxNoDetection:     ft.MaxNoDetection,
			HoldRate:           ft.HoldRate,
			FishSpeedRate:      ft.FishSpeedRate,
			MaxPulseFactor:     ft.MaxPulseFactor,
			MinPulse:           ft.MinPulse.D(),
		},
	}, nil
}

// ControlSession is the shared deadline and stop flag of one episode.
type ControlSession struct {
	ID       string
	Start    time.Time
	Deadline time.Time

	cancel  context.CancelFunc
	mu      sync.Mutex
	stopped bool
	reason  Outcome
}

// Stop records the first termination reason and cancels the episode.
func (s *ControlSession) Stop(reason Outcome) {
	s.mu.Lock()
	if !s.stopped {
		s.stopped, s.reason = true, reason
	}
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Reason returns the recorded termination reason, if any.
func (s *ControlSession) Reason() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason, s.stopped
}

// Controller runs the mouse (tension) and direction (tracking) channels
// while the tension bar is on screen.
type Controller struct {
	cfg    ControllerConfig
	sense  TensionSensor
	act    Actuator
	logger *slog.Logger
}

func NewController(cfg ControllerConfig, sense TensionSensor, act Actuator, logger *slog.Logger) *Controller {
	return &Controller{cfg: cfg, sense: sense, act: act, logger: orNop(logger)}
}

// Run blocks until the bar disappears, the duration elapses, a channel
// fails or ctx is cancelled. The mouse button and both direction keys are
// released before it returns, whatever the cause.
func (c *Controller) Run(ctx context.Context) (outcome Outcome, err error) {
	start := time.Now()
	sctx, cancel := context.WithDeadline(ctx, start.Add(c.cfg.Duration))
	defer cancel()
	sess := &ControlSession{ID: uuid.NewString(), Start: start, Deadline: start.Add(c.cfg.Duration), cancel: cancel}
	log := c.logger.With("session", sess.ID)

	btn := c.cfg.Button
	mouse := newHeldInput("mouse:"+btn.String(),
		func() error { return c.act.MouseDown(btn) },
		func() error { return c.act.MouseUp(btn) }, log)
	left := newHeldInput("key:"+c.cfg.LeftKey,
		func() error { return c.act.KeyDown(c.cfg.LeftKey) },
		func() error { return c.act.KeyUp(c.cfg.LeftKey) }, log)
	right := newHeldInput("key:"+c.cfg.RightKey,
		func() error { return c.act.KeyDown(c.cfg.RightKey) },
		func() error { return c.act.KeyUp(c.cfg.RightKey) }, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("tension controller panic", "error", r, "stack", string(debug.Stack()))
			outcome, err = OutcomeFailed, fmt.Errorf("tension controller panic: %v", r)
		}
		mouse.release()
		if c.cfg.LeftKey != "" {
			left.release()
		}
		if c.cfg.RightKey != "" {
			right.release()
		}
		log.Info("tension episode finished", "outcome", outcome.String(), "elapsed", time.Since(start).Round(time.Millisecond))
	}()

	log.Info("tension episode started", "deadline", sess.Deadline, "tracking", c.cfg.Tracking)
	g, gctx := errgroup.WithContext(sctx)
	g.Go(guarded("tension", func() error { return c.tensionLoop(gctx, log, mouse) }))
	if c.cfg.Tracking {
		g.Go(guarded("tracking", func() error { return c.trackLoop(gctx, log, left, right) }))
	}
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	c.supervise(gctx, sess, log)
	outcome, err = classify(ctx, gctx, sess)
	cancel()

	t := time.NewTimer(c.cfg.JoinTimeout)
	defer t.Stop()
	select {
	case werr := <-done:
		if err == nil && outcome == OutcomeFailed {
			err = werr
		}
	case <-t.C:
		log.Warn("control channels did not stop within join timeout", "timeout", c.cfg.JoinTimeout)
	}
	return outcome, err
}

// supervise polls the tension bar until it disappears or gctx ends.
func (c *Controller) supervise(gctx context.Context, sess *ControlSession, log *slog.Logger) {
	for {
		if !c.sense.TensionBarPresent() {
			log.Info("tension bar gone")
			sess.Stop(OutcomeBarGone)
			return
		}
		if action.Sleep(gctx, c.cfg.SupervisorInterval) != nil {
			return
		}
	}
}

func classify(parent, gctx context.Context, sess *ControlSession) (Outcome, error) {
	if reason, ok := sess.Reason(); ok {
		return reason, nil
	}
	if parent.Err() != nil {
		return OutcomeCancelled, parent.Err()
	}
	cause := context.Cause(gctx)
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		return OutcomeTimeout, nil
	case cause != nil && !errors.Is(cause, context.Canceled):
		return OutcomeFailed, cause
	}
	return OutcomeFailed, errors.New("tension controller stopped without a reason")
}

func (c *Controller) tensionLoop(ctx context.Context, log *slog.Logger, mouse *heldInput) error {
	reg := newTensionRegulator(c.cfg.Regulator, time.Now())
	mouse.set(true)
	for ctx.Err() == nil {
		r := c.sense.TensionLevel()
		want := reg.Next(r.Level, time.Now())
		if mouse.set(want) {
			log.Debug("tension decision", "level", r.Level.String(), "ratio", r.Ratio, "source", r.Source, "holding", want)
		}
		if action.Sleep(ctx, c.cfg.CheckInterval) != nil {
			break
		}
	}
	return nil
}

func (c *Controller) trackLoop(ctx context.Context, log *slog.Logger, left, right *heldInput) error {
	tr := newTracker(c.cfg.Tracker)
	for ctx.Err() == nil {
		pos, ok := c.sense.FishPosition()
		d := tr.Step(pos, ok)
		// releases first so both keys are never down together
		if !d.Left {
			left.set(false)
		}
		if !d.Right {
			right.set(false)
		}
		if d.Left {
			left.set(true)
		}
		if d.Right {
			right.set(true)
		}
		log.Debug("tracking decision", "direction", d.Position.Direction.String(), "ratio", d.Position.OffsetRatio,
			"detected", ok, "left", d.Left, "right", d.Right, "sleep", d.Sleep, "reason", d.Reason)
		if action.Sleep(ctx, d.Sleep) != nil {
			break
		}
	}
	return nil
}

// guarded converts a panic in a channel into an error for the group.
func guarded(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s channel panic: %v\n%s", name, r, debug.Stack())
			}
		}()
		return fn()
	}
}
