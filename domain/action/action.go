package action

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"
)

var (
	ErrUnknownKey    = errors.New("action: unknown key")
	ErrUnknownButton = errors.New("action: unknown mouse button")
)

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	}
	return ButtonLeft, fmt.Errorf("%w: %q", ErrUnknownButton, s)
}

// Backend is the raw OS input layer. Every call emits exactly one event;
// releasing something that is not held is harmless.
type Backend interface {
	KeyDown(k Key) error
	KeyUp(k Key) error
	MouseDown(b Button) error
	MouseUp(b Button) error
	MoveTo(p image.Point) error
	CursorPos() (image.Point, error)
}

// Actuator turns configured key and button names into backend events and
// humanizes deliberate actions (Click, PressKey).
type Actuator struct {
	backend Backend
	human   *Humanizer
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewActuator(backend Backend, human *Humanizer, logger *slog.Logger) *Actuator {
	return &Actuator{backend: backend, human: human, logger: logger, sleep: Sleep}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *Actuator) KeyDown(name string) error {
	k, err := LookupKey(name)
	if err != nil {
		return err
	}
	return a.backend.KeyDown(k)
}

func (a *Actuator) KeyUp(name string) error {
	k, err := LookupKey(name)
	if err != nil {
		return err
	}
	return a.backend.KeyUp(k)
}

func (a *Actuator) MouseDown(b Button) error { return a.backend.MouseDown(b) }

func (a *Actuator) MouseUp(b Button) error { return a.backend.MouseUp(b) }

// PressKey taps a key: humanized delay, down, hold, up. A non-positive hold
// uses the humanized click hold. The key is released even when ctx is
// cancelled during the hold.
func (a *Actuator) PressKey(ctx context.Context, name string, hold time.Duration) error {
	k, err := LookupKey(name)
	if err != nil {
		return err
	}
	if hold <= 0 {
		hold = a.human.ClickHold()
	}
	if err := a.sleep(ctx, a.human.Delay()); err != nil {
		return err
	}
	if err := a.backend.KeyDown(k); err != nil {
		return err
	}
	sleepErr := a.sleep(ctx, hold)
	if err := a.backend.KeyUp(k); err != nil {
		return err
	}
	if a.logger != nil {
		a.logger.Debug("press key", "key", k.Name, "hold", hold)
	}
	return sleepErr
}

// Click moves to p (plus jitter, optionally along a smooth path over move)
// and clicks b.
func (a *Actuator) Click(ctx context.Context, p image.Point, b Button, move time.Duration) error {
	if err := a.sleep(ctx, a.human.Delay()); err != nil {
		return err
	}
	target := p.Add(a.human.Jitter())
	if move > 0 {
		if err := a.smoothMove(ctx, target, move); err != nil {
			return err
		}
	} else {
		if err := a.backend.MoveTo(target); err != nil {
			return err
		}
		if err := a.sleep(ctx, 10*time.Millisecond); err != nil {
			return err
		}
	}
	if err := a.backend.MouseDown(b); err != nil {
		return err
	}
	sleepErr := a.sleep(ctx, a.human.ClickHold())
	if err := a.backend.MouseUp(b); err != nil {
		return err
	}
	if a.logger != nil {
		a.logger.Debug("click", "x", p.X, "y", p.Y, "offset", target.Sub(p), "button", b)
	}
	return sleepErr
}

func (a *Actuator) smoothMove(ctx context.Context, to image.Point, d time.Duration) error {
	from, err := a.backend.CursorPos()
	if err != nil {
		return a.backend.MoveTo(to)
	}
	path := a.human.Path(from, to, d)
	step := d / time.Duration(len(path))
	for _, pt := range path {
		if err := a.backend.MoveTo(pt); err != nil {
			return err
		}
		if err := a.sleep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}
