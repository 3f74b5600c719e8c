package config

import (
	"testing"
	"time"

	"pivotnote/internal/core"
)

func validConfig() *Config {
	return &Config{
		Pipeline: Pipeline{Region: "india", Mode: "auto", ModelTier: "fast"},
		Gemini:   Gemini{Timeout: "90s"},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad region", func(c *Config) { c.Pipeline.Region = "mars" }},
		{"bad mode", func(c *Config) { c.Pipeline.Mode = "hybrid" }},
		{"bad tier", func(c *Config) { c.Pipeline.ModelTier = "turbo" }},
		{"bad timeout", func(c *Config) { c.Gemini.Timeout = "ninety seconds" }},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestAccessors(t *testing.T) {
	cfg := validConfig()
	if cfg.Region() != core.RegionIndia {
		t.Errorf("unexpected region %q", cfg.Region())
	}
	if cfg.Mode() != ModeAuto {
		t.Errorf("unexpected mode %q", cfg.Mode())
	}
	if cfg.Tier() != TierFast {
		t.Errorf("unexpected tier %q", cfg.Tier())
	}
	if cfg.GeminiTimeout() != 90*time.Second {
		t.Errorf("unexpected timeout %v", cfg.GeminiTimeout())
	}

	cfg.Gemini.Timeout = "garbage"
	if cfg.GeminiTimeout() != 90*time.Second {
		t.Error("unparseable timeout should fall back to the default")
	}
}
