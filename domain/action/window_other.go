//go:build !windows

package action

import (
	"strings"

	"github.com/go-vgo/robotgo"

	"github.com/soocke/reel-bot-go/domain/geometry"
)

// RobotWindows enumerates windows through robotgo, using process ids as
// handles. Minimized and focus state are not reported.
type RobotWindows struct{}

var _ WindowSystem = RobotWindows{}

// NewWindowSystem returns the platform window API.
func NewWindowSystem() WindowSystem { return RobotWindows{} }

func (s RobotWindows) List() ([]WindowInfo, error) {
	pids, err := robotgo.Pids()
	if err != nil {
		return nil, err
	}
	out := make([]WindowInfo, 0, len(pids))
	for _, pid := range pids {
		if info, ok := s.Info(uintptr(pid)); ok && info.Title != "" {
			out = append(out, info)
		}
	}
	return out, nil
}

func (RobotWindows) Info(handle uintptr) (WindowInfo, bool) {
	pid := int(handle)
	if ok, err := robotgo.PidExists(pid); err != nil || !ok {
		return WindowInfo{}, false
	}
	x, y, w, h := robotgo.GetBounds(pid)
	return WindowInfo{
		Handle:   handle,
		Title:    strings.TrimSpace(robotgo.GetTitle(pid)),
		Geometry: geometry.WindowGeometry{Left: x, Top: y, Width: w, Height: h},
	}, true
}

func (RobotWindows) Activate(handle uintptr) error {
	return robotgo.ActivePid(int(handle))
}
