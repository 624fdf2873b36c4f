package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soocke/reel-bot-go/domain/geometry"
	"github.com/soocke/reel-bot-go/domain/vision"
)

// ErrNoWindowTitle is returned by Validate when no target window is configured.
var ErrNoWindowTitle = errors.New("config: game.window_title is empty")

// Seconds is a duration written in YAML as float seconds (0.05) or a Go
// duration string ("300ms").
type Seconds float64

// D converts to time.Duration.
func (s Seconds) D() time.Duration { return time.Duration(float64(s) * float64(time.Second)) }

// UnmarshalYAML accepts numbers and duration strings.
func (s *Seconds) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		return nil
	}
	if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*s = Seconds(f)
		return nil
	}
	d, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %q is neither seconds nor a duration", node.Line, node.Value)
	}
	*s = Seconds(d.Seconds())
	return nil
}

// Config holds the complete runtime configuration of the bot.
type Config struct {
	Debug         bool                `yaml:"debug"`
	Game          GameConfig          `yaml:"game"`
	Logging       LoggingConfig       `yaml:"logging"`
	Capture       CaptureConfig       `yaml:"capture"`
	Detection     DetectionConfig     `yaml:"detection"`
	Fishing       FishingConfig       `yaml:"fishing"`
	AntiDetection AntiDetectionConfig `yaml:"anti_detection"`
}

type GameConfig struct {
	WindowTitle    string `yaml:"window_title"`
	ActivateWindow bool   `yaml:"activate_window"`
	TemplatesDir   string `yaml:"templates_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json|text
	File   string `yaml:"file"`
}

type CaptureConfig struct {
	Backend       string  `yaml:"backend"` // gdi|screenshot|kbinani
	StatsInterval Seconds `yaml:"stats_interval"`
}

// MatchConfig controls template matching for every template-based check.
type MatchConfig struct {
	Engine    string  `yaml:"engine"` // ncc|opencv
	Threshold float64 `yaml:"threshold"`
	MinScale  float64 `yaml:"min_scale"`
	MaxScale  float64 `yaml:"max_scale"`
	ScaleStep float64 `yaml:"scale_step"`
	Stride    int     `yaml:"stride"`
	Workers   int     `yaml:"workers"`
}

// TemplateCheck is a region searched for a named template.
type TemplateCheck struct {
	Region    geometry.NormalizedRegion `yaml:"region"`
	Template  string                    `yaml:"template"`
	Threshold float64                   `yaml:"threshold"`
}

type MotionConfig struct {
	Enabled              bool `yaml:"enabled"`
	vision.MotionOptions `yaml:",inline"`
}

type BiteConfig struct {
	TemplateCheck `yaml:",inline"`
	Color         vision.ColorRange `yaml:"color"`
	MinRatio      float64           `yaml:"min_ratio"`
	Motion        MotionConfig      `yaml:"motion"`
}

type RedTensionConfig struct {
	Region                   geometry.NormalizedRegion `yaml:"region"`
	Color                    vision.ColorRange         `yaml:"color"`
	vision.TensionThresholds `yaml:",inline"`
}

type FishSplashConfig struct {
	Region         geometry.NormalizedRegion `yaml:"region"`
	WhiteThreshold int                       `yaml:"white_threshold"`
	MinArea        int                       `yaml:"min_area"`
}

// PollConfig describes a bounded "wait, then poll for a template" search.
type PollConfig struct {
	WaitTime      Seconds `yaml:"wait_time"`
	SearchTimeout Seconds `yaml:"search_timeout"`
	CheckInterval Seconds `yaml:"check_interval"`
	ClickDelay    Seconds `yaml:"click_delay"`
	ResponseDelay Seconds `yaml:"response_delay"`
}

type RodDurabilityConfig struct {
	TemplateCheck `yaml:",inline"`
	PollConfig    `yaml:",inline"`
	Enabled       bool                     `yaml:"enabled"`
	ModifierKey   string                   `yaml:"modifier_key"`
	FirstClick    geometry.NormalizedPoint `yaml:"first_click_pos"`
	SecondClick   geometry.NormalizedPoint `yaml:"second_click_pos"`
}

type RetryButtonConfig struct {
	TemplateCheck `yaml:",inline"`
	PollConfig    `yaml:",inline"`
	// NotFoundDelay is the pause before the next cycle when the button never shows.
	NotFoundDelay Seconds `yaml:"not_found_delay"`
}

type DetectionConfig struct {
	Match              MatchConfig         `yaml:"match"`
	Bite               BiteConfig          `yaml:"bite"`
	TensionBar         TemplateCheck       `yaml:"tension_bar"`
	RedTension         RedTensionConfig    `yaml:"red_tension"`
	RedTensionTemplate TemplateCheck       `yaml:"red_tension_template"`
	FishSplash         FishSplashConfig    `yaml:"fish_splash"`
	RodDurability      RodDurabilityConfig `yaml:"rod_durability"`
	RetryButton        RetryButtonConfig   `yaml:"retry_button"`
}

type TensionPhaseConfig struct {
	Duration              Seconds             `yaml:"duration"`
	SupervisorInterval    Seconds             `yaml:"supervisor_interval"`
	CheckInterval         Seconds             `yaml:"check_interval"`
	JoinTimeout           Seconds             `yaml:"join_timeout"`
	Button                string              `yaml:"button"`
	IntermittentThreshold vision.TensionLevel `yaml:"red_tension_intermittent_hold_threshold"`
	MaxThreshold          vision.TensionLevel `yaml:"red_tension_max_threshold"`
	HoldDuration          Seconds             `yaml:"intermittent_hold_duration"`
	ReleaseDuration       Seconds             `yaml:"intermittent_release_duration"`
	MaxReleaseDuration    Seconds             `yaml:"max_tension_release_duration"`
}

type FishTrackingConfig struct {
	Enabled            bool    `yaml:"enabled"`
	LeftKey            string  `yaml:"left_key"`
	RightKey           string  `yaml:"right_key"`
	CheckInterval      Seconds `yaml:"check_interval"`
	CenterOffset       float64 `yaml:"center_offset"`
	CenterThresholdMin float64 `yaml:"center_threshold_min"`
	CenterThresholdMax float64 `yaml:"center_threshold_max"`
	MaxNoDetection     int     `yaml:"max_no_detection"`
	HoldRate           float64 `yaml:"hold_rate"`
	FishSpeedRate      float64 `yaml:"fish_speed_rate"`
	MaxPulseFactor     float64 `yaml:"max_pulse_factor"`
	MinPulse           Seconds `yaml:"min_pulse"`
}

type FishingConfig struct {
	CastType          string                   `yaml:"cast_type"` // key|click
	CastKey           string                   `yaml:"cast_key"`
	CastClickPos      geometry.NormalizedPoint `yaml:"cast_click_pos"`
	CastDelay         Seconds                  `yaml:"cast_delay"`
	ReelType          string                   `yaml:"reel_type"`
	ReelKey           string                   `yaml:"reel_key"`
	ReelClickPos      geometry.NormalizedPoint `yaml:"reel_click_pos"`
	ReelDelay         Seconds                  `yaml:"reel_delay"`
	BiteTimeout       Seconds                  `yaml:"bite_timeout"`
	BiteCheckInterval Seconds                  `yaml:"bite_check_interval"`
	BiteRetries       int                      `yaml:"bite_retries"`
	ErrorCooldown     Seconds                  `yaml:"error_cooldown"`
	TensionPhase      TensionPhaseConfig       `yaml:"tension_phase"`
	FishTracking      FishTrackingConfig       `yaml:"fish_tracking"`
}

type AntiDetectionConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RandomDelayMin    Seconds `yaml:"random_delay_min"`
	RandomDelayMax    Seconds `yaml:"random_delay_max"`
	ClickJitterPx     int     `yaml:"click_jitter_px"`
	MouseMoveDuration Seconds `yaml:"mouse_move_duration"`
	ClickHoldMin      Seconds `yaml:"click_hold_min"`
	ClickHoldMax      Seconds `yaml:"click_hold_max"`
	RestTimeMin       Seconds `yaml:"rest_time_min"`
	RestTimeMax       Seconds `yaml:"rest_time_max"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			ActivateWindow: true,
			TemplatesDir:   "templates",
		},
		Logging: LoggingConfig{Level: "info", Format: "json", File: "fishing_bot.log"},
		Capture: CaptureConfig{Backend: "gdi", StatsInterval: 30},
		Detection: DetectionConfig{
			Match: MatchConfig{
				Engine:    "ncc",
				Threshold: 0.80,
				MinScale:  1.0,
				MaxScale:  1.0,
				ScaleStep: 0.05,
				Stride:    1,
				Workers:   4,
			},
			Bite: BiteConfig{
				TemplateCheck: TemplateCheck{
					Region:    geometry.NormalizedRegion{X: 0.4, Y: 0.3, Width: 0.2, Height: 0.3},
					Template:  "bite_indicator.png",
					Threshold: 0.8,
				},
				Color:    vision.ColorRange{Min: vision.RGB{246, 70, 1}, Max: vision.RGB{254, 195, 29}},
				MinRatio: 0.03,
				Motion:   MotionConfig{MotionOptions: vision.DefaultMotionOptions()},
			},
			TensionBar: TemplateCheck{
				Region:    geometry.NormalizedRegion{X: 0.25, Y: 0.7, Width: 0.4, Height: 0.2},
				Template:  "tension_bar.png",
				Threshold: 0.8,
			},
			RedTension: RedTensionConfig{
				Region:            geometry.NormalizedRegion{X: 0.25, Y: 0.7, Width: 0.4, Height: 0.2},
				Color:             vision.ColorRange{Min: vision.RGB{229, 13, 13}, Max: vision.RGB{255, 255, 255}},
				TensionThresholds: vision.DefaultTensionThresholds(),
			},
			RedTensionTemplate: TemplateCheck{
				Region:    geometry.NormalizedRegion{X: 0.33, Y: 0.8, Width: 0.34, Height: 0.06},
				Template:  "red_tension.png",
				Threshold: 0.8,
			},
			FishSplash: FishSplashConfig{
				Region:         geometry.NormalizedRegion{X: 0.2, Y: 0.3, Width: 0.6, Height: 0.3},
				WhiteThreshold: 200,
				MinArea:        50,
			},
			RodDurability: RodDurabilityConfig{
				TemplateCheck: TemplateCheck{Region: geometry.FullWindow, Template: "rod_depleted.png", Threshold: 0.87},
				PollConfig: PollConfig{
					WaitTime:      0.1,
					SearchTimeout: 0.4,
					CheckInterval: 0.1,
					ClickDelay:    0.5,
					ResponseDelay: 0.1,
				},
				Enabled:     true,
				ModifierKey: "alt",
				FirstClick:  geometry.NormalizedPoint{X: 0.5, Y: 0.5},
				SecondClick: geometry.NormalizedPoint{X: 0.5, Y: 0.6},
			},
			RetryButton: RetryButtonConfig{
				TemplateCheck: TemplateCheck{Region: geometry.FullWindow, Template: "retry_button.png", Threshold: 0.8},
				PollConfig: PollConfig{
					WaitTime:      2,
					SearchTimeout: 5,
					CheckInterval: 0.5,
					ClickDelay:    0.5,
					ResponseDelay: 1,
				},
				NotFoundDelay: 1,
			},
		},
		Fishing: FishingConfig{
			CastType:          "key",
			CastKey:           "e",
			CastClickPos:      geometry.NormalizedPoint{X: 0.5, Y: 0.5},
			CastDelay:         2,
			ReelType:          "key",
			ReelKey:           "e",
			ReelClickPos:      geometry.NormalizedPoint{X: 0.5, Y: 0.5},
			ReelDelay:         0.1,
			BiteTimeout:       30,
			BiteCheckInterval: 0.1,
			BiteRetries:       2,
			ErrorCooldown:     5,
			TensionPhase: TensionPhaseConfig{
				Duration:              180,
				SupervisorInterval:    0.5,
				CheckInterval:         0.05,
				JoinTimeout:           1,
				Button:                "left",
				IntermittentThreshold: vision.TensionElevated,
				MaxThreshold:          vision.TensionCritical,
				HoldDuration:          0.2,
				ReleaseDuration:       0.2,
				MaxReleaseDuration:    0.3,
			},
			FishTracking: FishTrackingConfig{
				Enabled:            true,
				LeftKey:            "a",
				RightKey:           "d",
				CheckInterval:      0.05,
				CenterThresholdMin: 0.05,
				CenterThresholdMax: 0.10,
				MaxNoDetection:     100,
				HoldRate:           2.8,
				FishSpeedRate:      1.7,
				MaxPulseFactor:     10,
				MinPulse:           0.01,
			},
		},
		AntiDetection: AntiDetectionConfig{
			Enabled:        true,
			RandomDelayMin: 0.1,
			RandomDelayMax: 0.5,
			ClickJitterPx:  3,
			ClickHoldMin:   0.08,
			ClickHoldMax:   0.12,
			RestTimeMin:    1,
			RestTimeMax:    3,
		},
	}
}

// Validate clamps numeric values to safe ranges and reports structural errors
// that must stop the bot at startup.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Game.WindowTitle) == "" {
		errs = append(errs, ErrNoWindowTitle)
	}
	switch c.Capture.Backend {
	case "gdi", "screenshot", "kbinani":
	case "":
		c.Capture.Backend = "gdi"
	default:
		errs = append(errs, fmt.Errorf("capture.backend: unknown backend %q", c.Capture.Backend))
	}
	switch c.Detection.Match.Engine {
	case "ncc", "opencv":
	case "":
		c.Detection.Match.Engine = "ncc"
	default:
		errs = append(errs, fmt.Errorf("detection.match.engine: unknown engine %q", c.Detection.Match.Engine))
	}
	for _, t := range []struct {
		name string
		v    string
	}{{"fishing.cast_type", c.Fishing.CastType}, {"fishing.reel_type", c.Fishing.ReelType}} {
		if t.v != "key" && t.v != "click" {
			errs = append(errs, fmt.Errorf("%s: must be key or click, got %q", t.name, t.v))
		}
	}

	regions := map[string]*geometry.NormalizedRegion{
		"detection.bite.region":                 &c.Detection.Bite.Region,
		"detection.tension_bar.region":          &c.Detection.TensionBar.Region,
		"detection.red_tension.region":          &c.Detection.RedTension.Region,
		"detection.red_tension_template.region": &c.Detection.RedTensionTemplate.Region,
		"detection.fish_splash.region":          &c.Detection.FishSplash.Region,
		"detection.rod_durability.region":       &c.Detection.RodDurability.Region,
		"detection.retry_button.region":         &c.Detection.RetryButton.Region,
	}
	for name, r := range regions {
		if !r.Valid() {
			errs = append(errs, fmt.Errorf("%s: invalid region %+v", name, *r))
		}
	}

	m := &c.Detection.Match
	if m.Threshold <= 0 || m.Threshold > 1 {
		m.Threshold = 0.80
	}
	if m.MinScale <= 0 {
		m.MinScale = 1.0
	}
	if m.MaxScale < m.MinScale {
		m.MaxScale = m.MinScale
	}
	if m.ScaleStep <= 0 {
		m.ScaleStep = 0.05
	}
	if m.Stride <= 0 {
		m.Stride = 1
	}
	if m.Workers <= 0 {
		m.Workers = 1
	}
	for _, tc := range []*TemplateCheck{
		&c.Detection.Bite.TemplateCheck, &c.Detection.TensionBar, &c.Detection.RedTensionTemplate,
		&c.Detection.RodDurability.TemplateCheck, &c.Detection.RetryButton.TemplateCheck,
	} {
		if tc.Threshold <= 0 || tc.Threshold > 1 {
			tc.Threshold = m.Threshold
		}
	}
	if b := &c.Detection.Bite; b.MinRatio <= 0 || b.MinRatio > 1 {
		b.MinRatio = 0.03
	}
	rt := &c.Detection.RedTension.TensionThresholds
	if rt.Critical <= 0 || rt.Critical > 1 {
		rt.Critical = 0.95
	}
	if rt.Elevated <= 0 || rt.Elevated >= rt.Critical {
		rt.Elevated = min(0.6, rt.Critical/2)
	}
	fs := &c.Detection.FishSplash
	if fs.WhiteThreshold <= 0 || fs.WhiteThreshold > 254 {
		fs.WhiteThreshold = 200
	}
	if fs.MinArea <= 0 {
		fs.MinArea = 1
	}

	f := &c.Fishing
	if f.BiteRetries <= 0 {
		f.BiteRetries = 1
	}
	clampPositive(&f.BiteTimeout, 30)
	clampPositive(&f.BiteCheckInterval, 0.1)
	clampNonNegative(&f.CastDelay)
	clampNonNegative(&f.ReelDelay)
	clampNonNegative(&f.ErrorCooldown)

	tp := &f.TensionPhase
	clampPositive(&tp.Duration, 180)
	clampPositive(&tp.SupervisorInterval, 0.5)
	clampPositive(&tp.CheckInterval, 0.05)
	clampPositive(&tp.JoinTimeout, 1)
	clampNonNegative(&tp.HoldDuration)
	clampNonNegative(&tp.ReleaseDuration)
	clampNonNegative(&tp.MaxReleaseDuration)
	if tp.Button == "" {
		tp.Button = "left"
	}
	if tp.MaxThreshold < tp.IntermittentThreshold {
		tp.MaxThreshold = tp.IntermittentThreshold
	}

	ft := &f.FishTracking
	clampPositive(&ft.CheckInterval, 0.05)
	if ft.CenterThresholdMin < 0 {
		ft.CenterThresholdMin = 0
	}
	if ft.CenterThresholdMax <= ft.CenterThresholdMin {
		ft.CenterThresholdMax = ft.CenterThresholdMin + 0.05
	}
	if ft.MaxNoDetection < 0 {
		ft.MaxNoDetection = 0
	}
	if ft.HoldRate <= 0 {
		ft.HoldRate = 2.8
	}
	if ft.FishSpeedRate <= 0 {
		ft.FishSpeedRate = 1.7
	}
	if ft.MaxPulseFactor <= 0 {
		ft.MaxPulseFactor = 10
	}
	clampNonNegative(&ft.MinPulse)
	if ft.Enabled && (ft.LeftKey == "" || ft.RightKey == "") {
		errs = append(errs, errors.New("fishing.fish_tracking: left_key and right_key are required"))
	}

	ad := &c.AntiDetection
	clampNonNegative(&ad.RandomDelayMin)
	if ad.RandomDelayMax < ad.RandomDelayMin {
		ad.RandomDelayMax = ad.RandomDelayMin
	}
	clampNonNegative(&ad.ClickHoldMin)
	if ad.ClickHoldMax < ad.ClickHoldMin {
		ad.ClickHoldMax = ad.ClickHoldMin
	}
	clampNonNegative(&ad.RestTimeMin)
	if ad.RestTimeMax < ad.RestTimeMin {
		ad.RestTimeMax = ad.RestTimeMin
	}
	if ad.ClickJitterPx < 0 {
		ad.ClickJitterPx = 0
	}
	clampNonNegative(&ad.MouseMoveDuration)
	clampNonNegative(&c.Detection.RetryButton.NotFoundDelay)
	clampPositive(&c.Capture.StatsInterval, 30)
	return errors.Join(errs...)
}

func clampPositive(s *Seconds, def Seconds) {
	if *s <= 0 {
		*s = def
	}
}

func clampNonNegative(s *Seconds) {
	if *s < 0 {
		*s = 0
	}
}

// Load reads configuration from the given YAML file over the defaults. A missing
// file yields DefaultConfig(). Values are clamped but structural errors are left
// for the caller's Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in YAML format.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Lookup resolves a dotted path such as "fishing.tension_phase.duration"
// against the effective configuration, using the YAML key names.
func (c *Config) Lookup(path string) (any, bool) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, false
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, false
	}
	cur := tree
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}
