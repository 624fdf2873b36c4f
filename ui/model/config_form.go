package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/soocke/reel-bot-go/config"
)

// FormField binds one editable configuration value to its text form.
type FormField struct {
	ID    string
	Label string
	get   func(*config.Config) string
	set   func(*config.Config, string) error
}

// Get renders the field's current value.
func (f FormField) Get(cfg *config.Config) string { return f.get(cfg) }

func stringField(id, label string, p func(*config.Config) *string) FormField {
	return FormField{ID: id, Label: label,
		get: func(c *config.Config) string { return *p(c) },
		set: func(c *config.Config, s string) error {
			if s == "" {
				return errors.New("empty value")
			}
			*p(c) = s
			return nil
		},
	}
}

func secondsField(id, label string, p func(*config.Config) *config.Seconds) FormField {
	return FormField{ID: id, Label: label,
		get: func(c *config.Config) string { return strconv.FormatFloat(float64(*p(c)), 'f', -1, 64) },
		set: func(c *config.Config, s string) error {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*p(c) = config.Seconds(f)
			return nil
		},
	}
}

func floatField(id, label string, p func(*config.Config) *float64) FormField {
	return FormField{ID: id, Label: label,
		get: func(c *config.Config) string { return strconv.FormatFloat(*p(c), 'f', -1, 64) },
		set: func(c *config.Config, s string) error {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*p(c) = f
			return nil
		},
	}
}

func intField(id, label string, p func(*config.Config) *int) FormField {
	return FormField{ID: id, Label: label,
		get: func(c *config.Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *config.Config, s string) error {
			i, err := strconv.Atoi(s)
			if err != nil {
				return err
			}
			*p(c) = i
			return nil
		},
	}
}

func boolField(id, label string, p func(*config.Config) *bool) FormField {
	return FormField{ID: id, Label: label,
		get: func(c *config.Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *config.Config, s string) error {
			b, ok := parseBoolLoose(s)
			if !ok {
				return fmt.Errorf("not a boolean: %q", s)
			}
			*p(c) = b
			return nil
		},
	}
}

// ConfigFields lists the values editable from the control window.
func ConfigFields() []FormField {
	return []FormField{
		stringField("windowTitle", "Window Title", func(c *config.Config) *string { return &c.Game.WindowTitle }),
		stringField("castType", "Cast Type (key/click)", func(c *config.Config) *string { return &c.Fishing.CastType }),
		stringField("castKey", "Cast Key", func(c *config.Config) *string { return &c.Fishing.CastKey }),
		stringField("reelType", "Reel Type (key/click)", func(c *config.Config) *string { return &c.Fishing.ReelType }),
		stringField("reelKey", "Reel Key", func(c *config.Config) *string { return &c.Fishing.ReelKey }),
		secondsField("biteTimeout", "Bite Timeout (s)", func(c *config.Config) *config.Seconds { return &c.Fishing.BiteTimeout }),
		intField("biteRetries", "Bite Retries", func(c *config.Config) *int { return &c.Fishing.BiteRetries }),
		secondsField("tensionDuration", "Tension Duration (s)", func(c *config.Config) *config.Seconds { return &c.Fishing.TensionPhase.Duration }),
		stringField("tensionButton", "Tension Button", func(c *config.Config) *string { return &c.Fishing.TensionPhase.Button }),
		boolField("tracking", "Fish Tracking (true/false)", func(c *config.Config) *bool { return &c.Fishing.FishTracking.Enabled }),
		floatField("centerMin", "Center Threshold Min", func(c *config.Config) *float64 { return &c.Fishing.FishTracking.CenterThresholdMin }),
		floatField("threshold", "Match Threshold", func(c *config.Config) *float64 { return &c.Detection.Match.Threshold }),
		boolField("rodCheck", "Rod Check (true/false)", func(c *config.Config) *bool { return &c.Detection.RodDurability.Enabled }),
		boolField("antiDetection", "Anti-Detection (true/false)", func(c *config.Config) *bool { return &c.AntiDetection.Enabled }),
		secondsField("restMin", "Rest Min (s)", func(c *config.Config) *config.Seconds { return &c.AntiDetection.RestTimeMin }),
		secondsField("restMax", "Rest Max (s)", func(c *config.Config) *config.Seconds { return &c.AntiDetection.RestTimeMax }),
	}
}

// ApplyForm parses values (keyed by field ID) over a copy of cfg and
// validates the result. Fields absent from values keep their current value.
// cfg is left untouched on error.
func ApplyForm(cfg *config.Config, fields []FormField, values map[string]string) (*config.Config, error) {
	next := *cfg
	var errs []error
	for _, f := range fields {
		raw, ok := values[f.ID]
		if !ok {
			continue
		}
		if err := f.set(&next, strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Label, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
