package fishing

import (
	"errors"
	"testing"

	"github.com/soocke/reel-bot-go/domain/action"
)

var errOSInput = errors.New("os input failed")

// failingActuator records every event but reports an error for KeyDown,
// KeyUp and MouseDown.
type failingActuator struct {
	*fakeActuator
}

func (f failingActuator) KeyDown(name string) error {
	_ = f.fakeActuator.KeyDown(name)
	return errOSInput
}

func (f failingActuator) KeyUp(name string) error {
	_ = f.fakeActuator.KeyUp(name)
	return errOSInput
}

func (f failingActuator) MouseDown(b action.Button) error {
	_ = f.fakeActuator.MouseDown(b)
	return errOSInput
}

func TestHeldInputKeepsIntendedStateOnError(t *testing.T) {
	var downs, ups int
	h := newHeldInput("key:a",
		func() error { downs++; return errOSInput },
		func() error { ups++; return errOSInput },
		discardLogger)

	if !h.set(true) || !h.Held() {
		t.Fatalf("failed press must still be recorded as held")
	}
	if h.set(true) || downs != 1 {
		t.Fatalf("repeated press reached the backend, downs=%d", downs)
	}
	h.release()
	if ups != 1 || h.Held() {
		t.Fatalf("release: ups=%d held=%v", ups, h.Held())
	}
}

func TestHeldInputIgnoresPressAfterRelease(t *testing.T) {
	var downs, ups int
	h := newHeldInput("mouse:left",
		func() error { downs++; return nil },
		func() error { ups++; return nil },
		nil)

	h.release()
	if ups != 1 {
		t.Fatalf("release must send up even when not held, ups=%d", ups)
	}
	if h.set(true) || h.Held() || downs != 0 {
		t.Fatalf("press after release: downs=%d held=%v", downs, h.Held())
	}
}
