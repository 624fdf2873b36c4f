package geometry

import (
	"fmt"
	"image"
	"math"
)

// WindowGeometry is a snapshot of the game window position and size in screen pixels.
// A nil *WindowGeometry means the window is currently unavailable.
type WindowGeometry struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Rect returns the window rectangle in screen coordinates.
func (g WindowGeometry) Rect() image.Rectangle {
	return image.Rect(g.Left, g.Top, g.Left+g.Width, g.Top+g.Height)
}

// Empty reports whether the geometry has no area (closed or minimized window).
func (g WindowGeometry) Empty() bool { return g.Width <= 0 || g.Height <= 0 }

func (g WindowGeometry) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", g.Left, g.Top, g.Width, g.Height)
}

// NormalizedRegion describes a rectangle as fractions of the window size.
type NormalizedRegion struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FullWindow covers the whole window.
var FullWindow = NormalizedRegion{X: 0, Y: 0, Width: 1, Height: 1}

// Valid reports whether every component lies in [0,1] and the region has area.
func (r NormalizedRegion) Valid() bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(r.X) && in(r.Y) && in(r.Width) && in(r.Height) && r.Width > 0 && r.Height > 0
}

// NormalizedPoint is a window-relative point in fractions of width and height.
type NormalizedPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Resolve maps r onto the window described by g and returns the absolute pixel
// rectangle. It returns false when the geometry is unavailable or the result is
// empty. The result never extends past the window bounds.
func Resolve(g *WindowGeometry, r NormalizedRegion) (image.Rectangle, bool) {
	if g == nil || g.Empty() {
		return image.Rectangle{}, false
	}
	x0 := g.Left + scale(g.Width, clamp01(r.X))
	y0 := g.Top + scale(g.Height, clamp01(r.Y))
	x1 := x0 + scale(g.Width, clamp01(r.Width))
	y1 := y0 + scale(g.Height, clamp01(r.Height))
	rect := image.Rect(x0, y0, x1, y1).Intersect(g.Rect())
	if rect.Empty() {
		return image.Rectangle{}, false
	}
	return rect, true
}

// ResolvePoint maps p onto the window described by g.
func ResolvePoint(g *WindowGeometry, p NormalizedPoint) (image.Point, bool) {
	if g == nil || g.Empty() {
		return image.Point{}, false
	}
	return image.Pt(g.Left+scale(g.Width, clamp01(p.X)), g.Top+scale(g.Height, clamp01(p.Y))), true
}

// Center returns the horizontal window centre shifted by bias pixels.
func (g WindowGeometry) Center(bias float64) float64 {
	return float64(g.Left) + float64(g.Width)/2 + bias
}

func scale(n int, f float64) int {
	return int(math.Floor(float64(n) * f))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
