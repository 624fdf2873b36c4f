//go:build windows

package action

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040

	keyeventfKeyUp = 0x0002
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
)

type mouseInput struct {
	Dx, Dy    int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk, Scan  uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// INPUT is a tagged union; mouseInput is its largest member so both event
// structs are padded to the same size.
type mouseEvent struct {
	Type uint32
	Mi   mouseInput
}

type keyboardEvent struct {
	Type uint32
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

// SendInputBackend injects events with user32!SendInput.
type SendInputBackend struct{}

var _ Backend = SendInputBackend{}

// NewBackend returns the platform input backend.
func NewBackend() Backend { return SendInputBackend{} }

func sendInput(ptr unsafe.Pointer, size uintptr) error {
	n, _, err := procSendInput.Call(1, uintptr(ptr), size)
	if n != 1 {
		return fmt.Errorf("action: SendInput: %w", err)
	}
	return nil
}

func (SendInputBackend) key(k Key, flags uint32) error {
	ev := keyboardEvent{Type: inputKeyboard, Ki: keybdInput{Vk: k.VK, Scan: k.Scan, Flags: flags}}
	return sendInput(unsafe.Pointer(&ev), unsafe.Sizeof(ev))
}

func (b SendInputBackend) KeyDown(k Key) error { return b.key(k, 0) }

func (b SendInputBackend) KeyUp(k Key) error { return b.key(k, keyeventfKeyUp) }

func buttonFlags(btn Button) (down, up uint32, err error) {
	switch btn {
	case ButtonLeft:
		return mouseeventfLeftDown, mouseeventfLeftUp, nil
	case ButtonRight:
		return mouseeventfRightDown, mouseeventfRightUp, nil
	case ButtonMiddle:
		return mouseeventfMiddleDown, mouseeventfMiddleUp, nil
	}
	return 0, 0, fmt.Errorf("%w: %d", ErrUnknownButton, btn)
}

func (SendInputBackend) mouse(flags uint32) error {
	ev := mouseEvent{Type: inputMouse, Mi: mouseInput{Flags: flags}}
	return sendInput(unsafe.Pointer(&ev), unsafe.Sizeof(ev))
}

func (b SendInputBackend) MouseDown(btn Button) error {
	down, _, err := buttonFlags(btn)
	if err != nil {
		return err
	}
	return b.mouse(down)
}

func (b SendInputBackend) MouseUp(btn Button) error {
	_, up, err := buttonFlags(btn)
	if err != nil {
		return err
	}
	return b.mouse(up)
}

func (SendInputBackend) MoveTo(p image.Point) error {
	ok, _, err := procSetCursorPos.Call(uintptr(int32(p.X)), uintptr(int32(p.Y)))
	if ok == 0 {
		return fmt.Errorf("action: SetCursorPos: %w", err)
	}
	return nil
}

func (SendInputBackend) CursorPos() (image.Point, error) {
	var pt struct{ X, Y int32 }
	ok, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ok == 0 {
		return image.Point{}, fmt.Errorf("action: GetCursorPos: %w", err)
	}
	return image.Pt(int(pt.X), int(pt.Y)), nil
}
