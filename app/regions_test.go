package app

import (
	"testing"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/geometry"
)

func TestRegionLabelsResolveAgainstWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	g := geometry.WindowGeometry{Left: 100, Top: 50, Width: 1000, Height: 500}
	labels := RegionLabels(cfg.Detection, g)
	if len(labels) != 7 {
		t.Fatalf("labels=%d want 7", len(labels))
	}
	want, _ := geometry.Resolve(&g, cfg.Detection.Bite.Region)
	if labels[0].Text != "bite" || labels[0].Rect != want {
		t.Fatalf("bite label=%+v want rect %v", labels[0], want)
	}
	for _, l := range labels {
		if !l.Rect.In(g.Rect()) {
			t.Fatalf("%s outside window: %v", l.Text, l.Rect)
		}
	}
}

func TestRegionLabelsSkipEmpty(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detection.FishSplash.Region = geometry.NormalizedRegion{}
	labels := RegionLabels(cfg.Detection, geometry.WindowGeometry{Width: 800, Height: 600})
	for _, l := range labels {
		if l.Text == "fish_splash" {
			t.Fatalf("empty region should be skipped")
		}
	}
	if len(labels) != 6 {
		t.Fatalf("labels=%d want 6", len(labels))
	}
}
