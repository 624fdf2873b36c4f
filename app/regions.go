package app

import (
	"errors"
	"image"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/geometry"
	"github.com/soocke/reel-bot-go/ui/images"
)

var errNoWindow = errors.New("game window not available")

// RegionLabels resolves every configured detection region against g. Regions
// that resolve to nothing are skipped.
func RegionLabels(det config.DetectionConfig, g geometry.WindowGeometry) []images.Label {
	named := []struct {
		name string
		r    geometry.NormalizedRegion
	}{
		{"bite", det.Bite.Region},
		{"tension_bar", det.TensionBar.Region},
		{"red_tension", det.RedTension.Region},
		{"red_tension_template", det.RedTensionTemplate.Region},
		{"fish_splash", det.FishSplash.Region},
		{"rod_durability", det.RodDurability.Region},
		{"retry_button", det.RetryButton.Region},
	}
	var out []images.Label
	for i, n := range named {
		rect, ok := geometry.Resolve(&g, n.r)
		if !ok {
			continue
		}
		out = append(out, images.Label{Rect: rect, Text: n.name, Color: images.Palette[i%len(images.Palette)]})
	}
	return out
}

// CaptureWindow grabs the whole game window. The caller releases the frame
// through c.Frames.
func (c *Container) CaptureWindow() (*image.RGBA, geometry.WindowGeometry, error) {
	g, ok := c.Window.Geometry()
	if !ok {
		return nil, g, errNoWindow
	}
	frame, err := c.Frames.Capture(g.Rect())
	if err != nil {
		return nil, g, err
	}
	return frame, g, nil
}

// AnnotatedRegions captures the window and outlines every detection region.
func (c *Container) AnnotatedRegions() (image.Image, error) {
	frame, g, err := c.CaptureWindow()
	if err != nil {
		return nil, err
	}
	defer c.Frames.Release(frame)
	return images.Annotate(frame, RegionLabels(c.Config.Detection, g)), nil
}
