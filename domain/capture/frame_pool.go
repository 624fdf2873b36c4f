package capture

import (
	"image"
	"sync"
)

// framePool recycles RGBA backing slices between captures. Extractors only
// read a frame for the duration of one check, so the perception layer hands
// frames back through RecycleFrame once the check is done. Frames that are
// never recycled are simply collected.
var framePool sync.Pool // *image.RGBA

// acquireFrame returns a frame whose Rect is rect and whose Stride is width*4.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	if v, ok := framePool.Get().(*image.RGBA); ok && cap(v.Pix) >= needed {
		v.Pix = v.Pix[:needed]
		v.Stride = w * 4
		v.Rect = rect
		return v
	}
	return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
}

// RecycleFrame returns img to the pool. The caller must not touch img afterwards.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	// Sub-images share a parent's buffer; only full-buffer frames are reusable.
	if img.Stride != img.Rect.Dx()*4 || len(img.Pix) != img.Stride*img.Rect.Dy() {
		return
	}
	framePool.Put(img)
}
