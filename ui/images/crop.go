package images

import (
	"errors"
	"image"
	"image/draw"
)

// Crop copies the part of frame inside r (absolute coordinates) into a new
// zero-origin image. r is clamped to the frame bounds.
func Crop(frame image.Image, r image.Rectangle) (*image.RGBA, error) {
	if frame == nil {
		return nil, errors.New("nil frame")
	}
	r = r.Intersect(frame.Bounds())
	if r.Empty() {
		return nil, errors.New("crop outside frame")
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), frame, r.Min, draw.Src)
	return out, nil
}
