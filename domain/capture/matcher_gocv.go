//go:build gocv

package capture

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"
)

// openCVMatcher delegates to OpenCV's TM_CCOEFF_NORMED.
type openCVMatcher struct {
	logger *slog.Logger
}

var _ Matcher = (*openCVMatcher)(nil)

func newOpenCVMatcher(logger *slog.Logger) (Matcher, error) {
	return &openCVMatcher{logger: logger}, nil
}

func (m *openCVMatcher) Match(frame *image.RGBA, tmpl image.Image, threshold float64) (Match, bool) {
	if frame == nil || tmpl == nil {
		return Match{}, false
	}
	fb, tb := frame.Bounds(), tmpl.Bounds()
	if tb.Dx() > fb.Dx() || tb.Dy() > fb.Dy() || tb.Empty() {
		return Match{}, false
	}
	src, err := grayMat(frame)
	if err != nil {
		m.debug("frame to mat", err)
		return Match{}, false
	}
	defer src.Close()
	tm, err := grayMat(tmpl)
	if err != nil {
		m.debug("template to mat", err)
		return Match{}, false
	}
	defer tm.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(src, tm, &result, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	p := maxLoc.Add(fb.Min)
	match := Match{
		Point:  p,
		Center: p.Add(image.Pt(tb.Dx()/2, tb.Dy()/2)),
		Score:  float64(maxVal),
		Scale:  1,
	}
	return match, match.Score >= threshold
}

func (m *openCVMatcher) debug(msg string, err error) {
	if m.logger != nil {
		m.logger.Debug("opencv match: "+msg, "error", err)
	}
}

func grayMat(img image.Image) (gocv.Mat, error) {
	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer bgr.Close()
	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return gray, nil
}
