package model

import (
	"testing"

	"github.com/soocke/reel-bot-go/config"
)

func TestApplyFormUpdatesCopy(t *testing.T) {
	cfg := config.DefaultConfig()
	next, err := ApplyForm(cfg, ConfigFields(), map[string]string{
		"castType":    " click ",
		"biteRetries": "5",
		"tracking":    "off",
		"biteTimeout": "12.5",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next.Fishing.CastType != "click" || next.Fishing.BiteRetries != 5 || next.Fishing.FishTracking.Enabled || next.Fishing.BiteTimeout != 12.5 {
		t.Fatalf("unexpected result %+v", next.Fishing)
	}
	if cfg.Fishing.CastType != "key" {
		t.Fatalf("source config modified")
	}
}

func TestApplyFormRejectsBadInput(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := ApplyForm(cfg, ConfigFields(), map[string]string{"biteRetries": "many"}); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ApplyForm(cfg, ConfigFields(), map[string]string{"castType": "shout"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestConfigFieldsRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	fields := ConfigFields()
	values := make(map[string]string, len(fields))
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f.ID] {
			t.Fatalf("duplicate field id %s", f.ID)
		}
		seen[f.ID] = true
		values[f.ID] = f.Get(cfg)
	}
	next, err := ApplyForm(cfg, fields, values)
	if err != nil {
		t.Fatalf("rendered defaults must apply cleanly: %v", err)
	}
	for _, f := range fields {
		if f.Get(next) != values[f.ID] {
			t.Fatalf("%s changed: %q -> %q", f.ID, values[f.ID], f.Get(next))
		}
	}
}
