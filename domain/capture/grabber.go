package capture

import (
	"errors"
	"fmt"
	"image"
)

// ErrEmptyRect is returned when a capture is requested for an empty rectangle.
var ErrEmptyRect = errors.New("capture: empty rectangle")

// Grabber copies the pixels of an absolute screen rectangle.
type Grabber interface {
	Grab(rect image.Rectangle) (*image.RGBA, error)
}

// GrabberFunc adapts a function to the Grabber interface.
type GrabberFunc func(rect image.Rectangle) (*image.RGBA, error)

func (f GrabberFunc) Grab(rect image.Rectangle) (*image.RGBA, error) { return f(rect) }

// NewGrabber returns the backend named by cfg: "gdi" (Windows BitBlt, falls
// back to "screenshot" elsewhere), "screenshot" or "kbinani".
func NewGrabber(backend string) (Grabber, error) {
	switch backend {
	case "", "gdi":
		if g, ok := newGDIGrabber(); ok {
			return g, nil
		}
		return ScreenshotGrabber{}, nil
	case "screenshot":
		return ScreenshotGrabber{}, nil
	case "kbinani":
		return KbinaniGrabber{}, nil
	default:
		return nil, fmt.Errorf("capture: unknown backend %q", backend)
	}
}

// rebase makes img's Rect equal to the absolute rectangle it was captured
// from so downstream coordinates are screen coordinates. The pixel buffer is
// shared, not copied.
func rebase(img *image.RGBA, abs image.Rectangle) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b == abs {
		return img
	}
	if b.Dx() != abs.Dx() || b.Dy() != abs.Dy() {
		abs = image.Rectangle{Min: abs.Min, Max: abs.Min.Add(b.Size())}
	}
	off := img.PixOffset(b.Min.X, b.Min.Y)
	return &image.RGBA{Pix: img.Pix[off:], Stride: img.Stride, Rect: abs}
}
