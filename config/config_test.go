package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soocke/reel-bot-go/domain/vision"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fishing.TensionPhase.MaxReleaseDuration != 0.3 {
		t.Fatalf("max release = %v", cfg.Fishing.TensionPhase.MaxReleaseDuration)
	}
	if cfg.Fishing.FishTracking.MaxNoDetection != 100 {
		t.Fatalf("max no detection = %d", cfg.Fishing.FishTracking.MaxNoDetection)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	p := writeFile(t, `
game:
  window_title: "Angler"
fishing:
  cast_delay: 1.5
  tension_phase:
    max_tension_release_duration: 300ms
    red_tension_max_threshold: 100
  fish_tracking:
    left_key: q
detection:
  fish_splash:
    region: {x: 0.1, y: 0.2, width: 0.5, height: 0.4}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.WindowTitle != "Angler" {
		t.Fatalf("title = %q", cfg.Game.WindowTitle)
	}
	if cfg.Fishing.CastDelay.D() != 1500*time.Millisecond {
		t.Fatalf("cast delay = %v", cfg.Fishing.CastDelay.D())
	}
	if got := cfg.Fishing.TensionPhase.MaxReleaseDuration.D(); got != 300*time.Millisecond {
		t.Fatalf("max release = %v", got)
	}
	if cfg.Fishing.TensionPhase.MaxThreshold != vision.TensionCritical {
		t.Fatalf("max threshold = %v", cfg.Fishing.TensionPhase.MaxThreshold)
	}
	if cfg.Fishing.FishTracking.LeftKey != "q" || cfg.Fishing.FishTracking.RightKey != "d" {
		t.Fatalf("keys = %q/%q", cfg.Fishing.FishTracking.LeftKey, cfg.Fishing.FishTracking.RightKey)
	}
	if cfg.Fishing.ReelKey != "e" {
		t.Fatalf("reel key default lost: %q", cfg.Fishing.ReelKey)
	}
	if r := cfg.Detection.FishSplash.Region; r.X != 0.1 || r.Height != 0.4 {
		t.Fatalf("splash region = %+v", r)
	}
	if cfg.Detection.FishSplash.WhiteThreshold != 200 {
		t.Fatalf("white threshold default lost")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	p := writeFile(t, "fishing: [unclosed\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRequiresWindowTitle(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrNoWindowTitle) {
		t.Fatalf("err = %v, want ErrNoWindowTitle", err)
	}
}

func TestValidateStructuralErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.WindowTitle = "x"
	cfg.Fishing.CastType = "wave"
	cfg.Capture.Backend = "vnc"
	cfg.Detection.TensionBar.Region.Width = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected errors")
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.WindowTitle = "x"
	cfg.Detection.Match.Threshold = 3
	cfg.Fishing.FishTracking.CenterThresholdMax = 0.01
	cfg.AntiDetection.RestTimeMax = 0.5
	cfg.Fishing.TensionPhase.Duration = -1
	cfg.Detection.RetryButton.NotFoundDelay = -2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Detection.Match.Threshold != 0.8 {
		t.Fatalf("threshold = %v", cfg.Detection.Match.Threshold)
	}
	ft := cfg.Fishing.FishTracking
	if ft.CenterThresholdMax <= ft.CenterThresholdMin {
		t.Fatalf("center thresholds %v/%v", ft.CenterThresholdMin, ft.CenterThresholdMax)
	}
	if cfg.AntiDetection.RestTimeMax < cfg.AntiDetection.RestTimeMin {
		t.Fatalf("rest range inverted")
	}
	if cfg.Fishing.TensionPhase.Duration != 180 {
		t.Fatalf("duration = %v", cfg.Fishing.TensionPhase.Duration)
	}
	if cfg.Detection.RetryButton.NotFoundDelay != 0 {
		t.Fatalf("retry not found delay = %v", cfg.Detection.RetryButton.NotFoundDelay)
	}
}

func TestLookup(t *testing.T) {
	cfg := DefaultConfig()
	v, ok := cfg.Lookup("fishing.tension_phase.max_tension_release_duration")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if f, _ := v.(float64); f != 0.3 {
		t.Fatalf("value = %#v", v)
	}
	v, ok = cfg.Lookup("fishing.fish_tracking.left_key")
	if !ok || v != "a" {
		t.Fatalf("left key = %#v, %v", v, ok)
	}
	if v, ok = cfg.Lookup("detection.bite.region.width"); !ok {
		t.Fatalf("inline region lookup failed")
	}
	if _, ok := cfg.Lookup("fishing.nope"); ok {
		t.Fatalf("unknown key resolved")
	}
	if _, ok := cfg.Lookup("fishing.cast_key.deeper"); ok {
		t.Fatalf("path through scalar resolved")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.WindowTitle = "Angler"
	cfg.Fishing.TensionPhase.IntermittentThreshold = vision.TensionCritical
	p := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Game.WindowTitle != "Angler" || got.Fishing.TensionPhase.IntermittentThreshold != vision.TensionCritical {
		t.Fatalf("round trip lost values: %+v", got.Fishing.TensionPhase)
	}
}
