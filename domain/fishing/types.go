package fishing

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/soocke/reel-bot-go/assets"
	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/action"
	"github.com/soocke/reel-bot-go/domain/capture"
	"github.com/soocke/reel-bot-go/domain/geometry"
	"github.com/soocke/reel-bot-go/domain/vision"
)

// ErrNoGeometry is returned when an action needs the game window and it is
// not available (closed, minimized or not found).
var ErrNoGeometry = errors.New("fishing: window geometry unavailable")

// FishingState enumerates the phases of one fishing cycle.
type FishingState int

const (
	StateIdle FishingState = iota
	StatePreparing
	StateCasting
	StateWaitingBite
	StateReeling
	StateTensionTracking
	StateResetting
	StateHalted
)

func (s FishingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateCasting:
		return "casting"
	case StateWaitingBite:
		return "waiting_bite"
	case StateReeling:
		return "reeling"
	case StateTensionTracking:
		return "tension_tracking"
	case StateResetting:
		return "resetting"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// StateListener is called on each successful state transition.
type StateListener func(prev, next FishingState)

// Outcome is the reason a controller episode ended.
type Outcome int

const (
	OutcomeBarGone Outcome = iota
	OutcomeTimeout
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBarGone:
		return "bar_gone"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Direction is the side of the window centre the target is on.
type Direction int

const (
	DirectionCenter Direction = iota
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "center"
	}
}

// TargetPosition is the classified horizontal position of the splash.
// OffsetRatio is |offset| / window width.
type TargetPosition struct {
	Direction   Direction
	OffsetRatio float64
}

// TensionReading is one classification of the tension bar.
type TensionReading struct {
	Level  vision.TensionLevel
	Ratio  float64
	Source string // color|template
}

// Actuator is the input surface the phases and the controller drive.
type Actuator interface {
	KeyDown(name string) error
	KeyUp(name string) error
	MouseDown(b action.Button) error
	MouseUp(b action.Button) error
	PressKey(ctx context.Context, name string, hold time.Duration) error
	Click(ctx context.Context, p image.Point, b action.Button, move time.Duration) error
}

// GeometryProvider reports the current game window geometry.
type GeometryProvider interface {
	Geometry() (geometry.WindowGeometry, bool)
}

// FrameSource captures absolute screen rectangles.
type FrameSource interface {
	Capture(rect image.Rectangle) (*image.RGBA, error)
	Release(img *image.RGBA)
}

// TemplateSource loads named reference images.
type TemplateSource interface {
	Load(name string) (image.Image, error)
}

// TensionSensor is what the controller observes during an episode.
type TensionSensor interface {
	TensionBarPresent() bool
	TensionLevel() TensionReading
	FishPosition() (TargetPosition, bool)
}

// Senses is the full perception surface used by the bot.
type Senses interface {
	TensionSensor
	Available() bool
	BiteDetected() bool
	ResetBite()
	Locate(tc config.TemplateCheck) (image.Point, bool)
	Point(p geometry.NormalizedPoint) (image.Point, bool)
}

var (
	_ Actuator         = (*action.Actuator)(nil)
	_ GeometryProvider = (*action.Window)(nil)
	_ FrameSource      = (*capture.Source)(nil)
	_ TemplateSource   = (*assets.Store)(nil)
)

// recoverLog logs and swallows a panic.
func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r, "stack", string(debug.Stack()))
		}
	}
}

// nopLogger is used when a component is constructed without a logger.
var nopLogger = slog.New(slog.DiscardHandler)

func orNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return nopLogger
	}
	return l
}
