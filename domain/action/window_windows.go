//go:build windows

package action

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soocke/reel-bot-go/domain/geometry"
)

const swRestore = 9

var (
	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procIsWindow            = user32.NewProc("IsWindow")
	procIsIconic            = user32.NewProc("IsIconic")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

// Win32Windows enumerates windows through user32.
type Win32Windows struct{}

var _ WindowSystem = Win32Windows{}

// NewWindowSystem returns the platform window API.
func NewWindowSystem() WindowSystem { return Win32Windows{} }

func (s Win32Windows) List() ([]WindowInfo, error) {
	var out []WindowInfo
	cb := windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if vis, _, _ := procIsWindowVisible.Call(hwnd); vis == 0 {
			return 1
		}
		if info, ok := s.Info(hwnd); ok && info.Title != "" {
			out = append(out, info)
		}
		return 1
	})
	if r, _, err := procEnumWindows.Call(cb, 0); r == 0 {
		return nil, fmt.Errorf("action: EnumWindows: %w", err)
	}
	return out, nil
}

func (Win32Windows) Info(hwnd uintptr) (WindowInfo, bool) {
	if ok, _, _ := procIsWindow.Call(hwnd); ok == 0 {
		return WindowInfo{}, false
	}
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	title := strings.TrimSpace(windows.UTF16ToString(buf[:n]))

	var rc struct{ Left, Top, Right, Bottom int32 }
	if ok, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rc))); ok == 0 {
		return WindowInfo{}, false
	}
	iconic, _, _ := procIsIconic.Call(hwnd)
	fg, _, _ := procGetForegroundWindow.Call()
	return WindowInfo{
		Handle: hwnd,
		Title:  title,
		Geometry: geometry.WindowGeometry{
			Left:   int(rc.Left),
			Top:    int(rc.Top),
			Width:  int(rc.Right - rc.Left),
			Height: int(rc.Bottom - rc.Top),
		},
		Minimized: iconic != 0,
		Active:    fg == hwnd,
	}, true
}

func (Win32Windows) Activate(hwnd uintptr) error {
	if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
		procShowWindow.Call(hwnd, swRestore)
	}
	if ok, _, err := procSetForegroundWindow.Call(hwnd); ok == 0 {
		return fmt.Errorf("action: SetForegroundWindow: %w", err)
	}
	return nil
}
