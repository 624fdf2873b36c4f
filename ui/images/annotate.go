package images

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label is a rectangle to outline with a caption, in the frame's coordinates.
type Label struct {
	Rect  image.Rectangle
	Text  string
	Color color.RGBA
}

// Palette cycles through distinguishable outline colours.
var Palette = []color.RGBA{
	{R: 255, G: 64, B: 64, A: 255},
	{R: 64, G: 220, B: 64, A: 255},
	{R: 64, G: 128, B: 255, A: 255},
	{R: 255, G: 200, B: 0, A: 255},
	{R: 255, G: 0, B: 255, A: 255},
	{R: 0, G: 220, B: 220, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

const outline = 2

// Annotate returns a copy of frame with every label outlined and captioned.
func Annotate(frame image.Image, labels []Label) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, frame, b.Min, draw.Src)
	for _, l := range labels {
		r := l.Rect.Intersect(b)
		if r.Empty() {
			continue
		}
		src := image.NewUniform(l.Color)
		for _, edge := range []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+outline),
			image.Rect(r.Min.X, r.Max.Y-outline, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+outline, r.Max.Y),
			image.Rect(r.Max.X-outline, r.Min.Y, r.Max.X, r.Max.Y),
		} {
			draw.Draw(out, edge.Intersect(r), src, image.Point{}, draw.Src)
		}
		if l.Text == "" {
			continue
		}
		face := basicfont.Face7x13
		d := &font.Drawer{Dst: out, Src: src, Face: face}
		// caption sits inside the top-left corner, on a dark strip
		w := d.MeasureString(l.Text).Ceil()
		strip := image.Rect(r.Min.X+outline, r.Min.Y+outline, r.Min.X+outline+w+4, r.Min.Y+outline+face.Height+2).Intersect(r)
		draw.Draw(out, strip, image.NewUniform(color.RGBA{A: 200}), image.Point{}, draw.Over)
		d.Dot = fixed.P(r.Min.X+outline+2, r.Min.Y+outline+face.Ascent+1)
		d.DrawString(l.Text)
	}
	return out
}
