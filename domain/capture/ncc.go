package capture

import (
	"image"
	"math"
	"sync"
)

// grayPrecomp stores per-frame luminance and its summed-area tables (integral
// images). The integrals allow O(1) window sum and variance queries.
type grayPrecomp struct {
	gray       []float64
	integral   []float64
	integralSq []float64
	W, H       int
}

// templatePrecomp caches luminance and summary statistics for a template (or
// a scaled version of it).
type templatePrecomp struct {
	gray  []float32
	W, H  int
	meanT float64
	stdT  float64
}

type tmplKey struct {
	src  image.Image
	w, h int
}

// templateCache holds precomputed templates keyed by source image and size so
// two templates of equal dimensions never share statistics.
type templateCache struct {
	mu sync.RWMutex
	m  map[tmplKey]*templatePrecomp
}

func newTemplateCache() *templateCache {
	return &templateCache{m: make(map[tmplKey]*templatePrecomp)}
}

func (c *templateCache) load(k tmplKey) *templatePrecomp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[k]
}

// store keeps the first inserted value when two goroutines race.
func (c *templateCache) store(k tmplKey, pc *templatePrecomp) *templatePrecomp {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing := c.m[k]; existing != nil {
		return existing
	}
	c.m[k] = pc
	return pc
}

// base returns the unscaled precomp for tmpl. Transparent pixels contribute zero.
func (c *templateCache) base(tmpl image.Image) *templatePrecomp {
	if tmpl == nil {
		return nil
	}
	b := tmpl.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	key := tmplKey{src: tmpl, w: w, h: h}
	if pc := c.load(key); pc != nil {
		return pc
	}
	gray := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, a := tmpl.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			gray[y*w+x] = float32(luminance16(r, g, bb))
		}
	}
	return c.store(key, newTemplatePrecomp(gray, w, h))
}

// scaled returns a bilinear-resized copy of base.
func (c *templateCache) scaled(tmpl image.Image, base *templatePrecomp, factor float64) *templatePrecomp {
	if base == nil || factor <= 0 {
		return nil
	}
	if factor == 1.0 {
		return base
	}
	w := int(float64(base.W) * factor)
	h := int(float64(base.H) * factor)
	if w < 2 || h < 2 {
		return nil
	}
	key := tmplKey{src: tmpl, w: w, h: h}
	if pc := c.load(key); pc != nil {
		return pc
	}
	gray := make([]float32, w*h)
	fx := float64(base.W) / float64(w)
	fy := float64(base.H) / float64(h)
	bw, bh := base.W, base.H
	src := base.gray
	for y := 0; y < h; y++ {
		ys := clampf((float64(y)+0.5)*fy-0.5, 0, float64(bh-1))
		y0 := int(ys)
		y1 := min(y0+1, bh-1)
		dy := ys - float64(y0)
		for x := 0; x < w; x++ {
			xs := clampf((float64(x)+0.5)*fx-0.5, 0, float64(bw-1))
			x0 := int(xs)
			x1 := min(x0+1, bw-1)
			dx := xs - float64(x0)
			top := float64(src[y0*bw+x0])*(1-dx) + float64(src[y0*bw+x1])*dx
			bottom := float64(src[y1*bw+x0])*(1-dx) + float64(src[y1*bw+x1])*dx
			gray[y*w+x] = float32(top*(1-dy) + bottom*dy)
		}
	}
	return c.store(key, newTemplatePrecomp(gray, w, h))
}

func newTemplatePrecomp(gray []float32, w, h int) *templatePrecomp {
	var sumT, sumT2 float64
	for _, v := range gray {
		fv := float64(v)
		sumT += fv
		sumT2 += fv * fv
	}
	n := float64(w * h)
	meanT := sumT / n
	varT := (sumT2 - sumT*sumT/n) / n
	stdT := 0.0
	if varT > 0 {
		stdT = math.Sqrt(varT)
	}
	return &templatePrecomp{gray: gray, W: w, H: h, meanT: meanT, stdT: stdT}
}

// NCCOptions configures normalized cross-correlation template matching.
type NCCOptions struct {
	Threshold float64 // minimum score for a positive match (default 0.80)
	Stride    int     // coarse scan stride (default 1)
	Refine    bool    // with Stride>1, rescan the neighbourhood of the coarse best at stride 1
}

// NCCResult holds the outcome of a template matching operation. X and Y are in
// the frame's coordinate space.
type NCCResult struct {
	X, Y  int
	Score float64
	Found bool
}

// matchPrecomp computes NCC between pc and the frame described by pre.
func matchPrecomp(fb image.Rectangle, pc *templatePrecomp, opts NCCOptions, pre *grayPrecomp) NCCResult {
	res := NCCResult{Score: -1}
	if pc == nil || pre == nil {
		return res
	}
	W, H := pre.W, pre.H
	w, h := pc.W, pc.H
	if w == 0 || h == 0 || W < w || H < h {
		return res
	}
	n := float64(w * h)
	stride := max(opts.Stride, 1)

	if pc.stdT <= 1e-9 {
		// Flat template: correlation is undefined, accept a flat window of the same level.
		for y := 0; y <= H-h; y += stride {
			for x := 0; x <= W-w; x += stride {
				sumF := integralSum(pre.integral, W, x, y, x+w-1, y+h-1)
				sumF2 := integralSum(pre.integralSq, W, x, y, x+w-1, y+h-1)
				meanF := sumF / n
				if (sumF2-sumF*sumF/n)/n <= 1e-6 && math.Abs(meanF-pc.meanT) <= 1e-6 {
					return NCCResult{X: x + fb.Min.X, Y: y + fb.Min.Y, Score: 1, Found: true}
				}
			}
		}
		return res
	}

	score := func(x, y int) (float64, bool) {
		sumF := integralSum(pre.integral, W, x, y, x+w-1, y+h-1)
		sumF2 := integralSum(pre.integralSq, W, x, y, x+w-1, y+h-1)
		meanF := sumF / n
		varF := (sumF2 - sumF*sumF/n) / n
		if varF <= 1e-9 {
			return 0, false
		}
		var sumFT float64
		for ty := 0; ty < h; ty++ {
			row := pre.gray[(y+ty)*W+x : (y+ty)*W+x+w]
			trow := pc.gray[ty*w : ty*w+w]
			for tx, t := range trow {
				sumFT += row[tx] * float64(t)
			}
		}
		denom := n * math.Sqrt(varF) * pc.stdT
		if denom <= 0 {
			return 0, false
		}
		return (sumFT - n*meanF*pc.meanT) / denom, true
	}

	bestX, bestY, bestScore := 0, 0, -1.0
	for y := 0; y <= H-h; y += stride {
		for x := 0; x <= W-w; x += stride {
			if s, ok := score(x, y); ok && s > bestScore {
				bestScore, bestX, bestY = s, x, y
			}
		}
	}
	if opts.Refine && stride > 1 && bestScore > -1 {
		cx, cy := bestX, bestY
		for y := max(0, cy-stride); y <= min(H-h, cy+stride); y++ {
			for x := max(0, cx-stride); x <= min(W-w, cx+stride); x++ {
				if s, ok := score(x, y); ok && s > bestScore {
					bestScore, bestX, bestY = s, x, y
				}
			}
		}
	}
	return NCCResult{
		X:     bestX + fb.Min.X,
		Y:     bestY + fb.Min.Y,
		Score: bestScore,
		Found: bestScore >= opts.Threshold,
	}
}

// buildGrayPrecomp computes luminance and summed-area tables for frame.
func buildGrayPrecomp(frame *image.RGBA) *grayPrecomp {
	if frame == nil {
		return nil
	}
	b := frame.Bounds()
	W, H := b.Dx(), b.Dy()
	p := &grayPrecomp{
		gray:       make([]float64, W*H),
		integral:   make([]float64, W*H),
		integralSq: make([]float64, W*H),
		W:          W,
		H:          H,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		row := frame.Pix[y*frame.Stride : y*frame.Stride+W*4]
		for x := 0; x < W; x++ {
			i := x * 4
			var g float64
			if row[i+3] != 0 {
				g = luminance8(row[i], row[i+1], row[i+2])
			}
			off := y*W + x
			p.gray[off] = g
			rowSum += g
			rowSum2 += g * g
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[off-W] + rowSum
				p.integralSq[off] = p.integralSq[off-W] + rowSum2
			}
		}
	}
	return p
}

// integralSum returns the inclusive sum over [x0..x1] x [y0..y1].
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	at := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
}

// Frame and template luminance share the 8-bit scale so flat templates compare.
func luminance8(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

func luminance16(r, g, b uint32) float64 {
	return luminance8(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
