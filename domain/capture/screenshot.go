package capture

import (
	"image"

	kbinani "github.com/kbinani/screenshot"
	vova "github.com/vova616/screenshot"
)

// ScreenshotGrabber captures through github.com/vova616/screenshot.
type ScreenshotGrabber struct{}

var _ Grabber = ScreenshotGrabber{}

func (ScreenshotGrabber) Grab(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, ErrEmptyRect
	}
	img, err := vova.CaptureRect(rect)
	if err != nil {
		return nil, err
	}
	return rebase(img, rect), nil
}

// KbinaniGrabber captures through github.com/kbinani/screenshot, which handles
// multi-display virtual desktops.
type KbinaniGrabber struct{}

var _ Grabber = KbinaniGrabber{}

func (KbinaniGrabber) Grab(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, ErrEmptyRect
	}
	img, err := kbinani.CaptureRect(rect)
	if err != nil {
		return nil, err
	}
	return rebase(img, rect), nil
}

// DisplayBounds lists the bounds of every active display.
func DisplayBounds() []image.Rectangle {
	n := kbinani.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, kbinani.GetDisplayBounds(i))
	}
	return out
}
