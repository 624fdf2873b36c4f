package vision

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TensionLevel is the discrete fill level of the tension gauge.
type TensionLevel int

const (
	TensionNone TensionLevel = iota
	TensionElevated
	TensionCritical
)

func (l TensionLevel) String() string {
	switch l {
	case TensionNone:
		return "none"
	case TensionElevated:
		return "elevated"
	case TensionCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseTensionLevel accepts level names or the legacy 0..100 gauge values
// (anything >= 100 is critical, >= 50 elevated).
func ParseTensionLevel(s string) (TensionLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "none":
		return TensionNone, nil
	case "elevated", "high":
		return TensionElevated, nil
	case "critical", "max":
		return TensionCritical, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return TensionNone, fmt.Errorf("tension level %q: %w", s, err)
	}
	switch {
	case n >= 100:
		return TensionCritical, nil
	case n >= 50:
		return TensionElevated, nil
	default:
		return TensionNone, nil
	}
}

// UnmarshalYAML decodes a level name or legacy number.
func (l *TensionLevel) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseTensionLevel(node.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalYAML writes the level name.
func (l TensionLevel) MarshalYAML() (interface{}, error) { return l.String(), nil }

// RGB is a plain 8-bit color triple used in configuration.
type RGB [3]uint8

// ColorRange is an inclusive per-channel RGB range.
type ColorRange struct {
	Min RGB `yaml:"min"`
	Max RGB `yaml:"max"`
}

// Contains reports whether c lies inside the range on every channel.
func (r ColorRange) Contains(c color.RGBA) bool {
	return c.R >= r.Min[0] && c.R <= r.Max[0] &&
		c.G >= r.Min[1] && c.G <= r.Max[1] &&
		c.B >= r.Min[2] && c.B <= r.Max[2]
}

// ColorRatio returns the fraction of pixels of frame inside rng.
func ColorRatio(frame *image.RGBA, rng ColorRange) float64 {
	if frame == nil {
		return 0
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return 0
	}
	matched := 0
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			if rng.Contains(color.RGBA{R: row[x], G: row[x+1], B: row[x+2], A: row[x+3]}) {
				matched++
			}
		}
	}
	return float64(matched) / float64(w*h)
}

// TensionThresholds maps the critical-color pixel fraction to levels.
type TensionThresholds struct {
	Critical float64 `yaml:"critical_ratio"`
	Elevated float64 `yaml:"elevated_ratio"`
}

// DefaultTensionThresholds returns 0.95 critical / 0.6 elevated.
func DefaultTensionThresholds() TensionThresholds {
	return TensionThresholds{Critical: 0.95, Elevated: 0.6}
}

// ClassifyRatio converts a critical-color fraction into a level. Both bounds are exclusive.
func (t TensionThresholds) ClassifyRatio(ratio float64) TensionLevel {
	switch {
	case ratio > t.Critical:
		return TensionCritical
	case ratio > t.Elevated:
		return TensionElevated
	default:
		return TensionNone
	}
}

// ClassifyTensionByColor measures how much of the gauge is painted in the critical
// color and returns the matching level along with the measured fraction.
func ClassifyTensionByColor(frame *image.RGBA, critical ColorRange, t TensionThresholds) (TensionLevel, float64) {
	ratio := ColorRatio(frame, critical)
	return t.ClassifyRatio(ratio), ratio
}
