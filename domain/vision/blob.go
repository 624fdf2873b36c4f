package vision

import "image"

// Blob is a connected bright region.
type Blob struct {
	Centroid image.Point
	Area     int
	Bounds   image.Rectangle
}

// LocateBrightBlob thresholds frame on luminance and returns the centroid of the
// largest 8-connected component whose area is at least minArea. Coordinates are
// in the frame's coordinate space, so a frame whose Rect carries its absolute
// screen position yields absolute screen coordinates.
func LocateBrightBlob(frame *image.RGBA, threshold uint8, minArea int) (image.Point, bool) {
	blob, ok := LargestBrightBlob(frame, threshold, minArea)
	if !ok {
		return image.Point{}, false
	}
	return blob.Centroid, true
}

// LargestBrightBlob is LocateBrightBlob returning the full component description.
func LargestBrightBlob(frame *image.RGBA, threshold uint8, minArea int) (Blob, bool) {
	if frame == nil {
		return Blob{}, false
	}
	fb := frame.Bounds()
	w, h := fb.Dx(), fb.Dy()
	if w <= 0 || h <= 0 {
		return Blob{}, false
	}
	if minArea < 1 {
		minArea = 1
	}
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			if Luma(row[i], row[i+1], row[i+2]) > threshold {
				mask[y*w+x] = true
			}
		}
	}

	var best Blob
	found := false
	visited := make([]bool, w*h)
	stack := make([]int, 0, 256)
	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		visited[start] = true
		stack = append(stack[:0], start)
		area, sumX, sumY := 0, 0, 0
		minX, minY, maxX, maxY := w, h, -1, -1
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%w, p/w
			area++
			sumX += px
			sumY += py
			minX, minY = min(minX, px), min(minY, py)
			maxX, maxY = max(maxX, px), max(maxY, py)
			for dy := -1; dy <= 1; dy++ {
				ny := py + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := px + dx
					if nx < 0 || nx >= w || (dx == 0 && dy == 0) {
						continue
					}
					n := ny*w + nx
					if mask[n] && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
		if area < minArea || area <= best.Area {
			continue
		}
		found = true
		best = Blob{
			Centroid: image.Pt(fb.Min.X+sumX/area, fb.Min.Y+sumY/area),
			Area:     area,
			Bounds:   image.Rect(fb.Min.X+minX, fb.Min.Y+minY, fb.Min.X+maxX+1, fb.Min.Y+maxY+1),
		}
	}
	return best, found
}

// Luma is the integer BT.601 approximation used for all grayscale conversions.
func Luma(r, g, b uint8) uint8 {
	return uint8((77*uint32(r) + 150*uint32(g) + 29*uint32(b)) >> 8)
}
