//go:build !windows

package action

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// RobotBackend injects events through robotgo.
type RobotBackend struct{}

var _ Backend = RobotBackend{}

// NewBackend returns the platform input backend.
func NewBackend() Backend { return RobotBackend{} }

func (RobotBackend) KeyDown(k Key) error { return robotgo.KeyToggle(k.Robot, "down") }

func (RobotBackend) KeyUp(k Key) error { return robotgo.KeyToggle(k.Robot, "up") }

func robotButton(b Button) (string, error) {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return b.String(), nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownButton, b)
}

func (RobotBackend) MouseDown(b Button) error {
	name, err := robotButton(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "down")
}

func (RobotBackend) MouseUp(b Button) error {
	name, err := robotButton(b)
	if err != nil {
		return err
	}
	return robotgo.Toggle(name, "up")
}

func (RobotBackend) MoveTo(p image.Point) error {
	robotgo.Move(p.X, p.Y)
	return nil
}

func (RobotBackend) CursorPos() (image.Point, error) {
	x, y := robotgo.Location()
	return image.Pt(x, y), nil
}
