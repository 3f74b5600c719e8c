package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pivotnote/internal/core"
)

// Mode selects how intelligence grids are obtained.
type Mode string

const (
	// ModeAuto calls the generative provider directly.
	ModeAuto Mode = "auto"
	// ModeManual skips the network call and parses operator-pasted JSON.
	ModeManual Mode = "manual"
)

// ModelTier selects the latency/quality tradeoff for generative calls.
type ModelTier string

const (
	TierFast    ModelTier = "fast"
	TierQuality ModelTier = "quality"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Prompts  Prompts  `mapstructure:"prompts"`
	Metadata Metadata `mapstructure:"metadata"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Gemini holds generative provider configuration.
type Gemini struct {
	APIKey       string  `mapstructure:"api_key"`
	FastModel    string  `mapstructure:"fast_model"`
	QualityModel string  `mapstructure:"quality_model"`
	Timeout      string  `mapstructure:"timeout"`
	MaxTokens    int32   `mapstructure:"max_tokens"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxRetries   int     `mapstructure:"max_retries"`
}

// Pipeline holds per-run pipeline options.
type Pipeline struct {
	Region    string `mapstructure:"region"`     // india | usa
	Mode      string `mapstructure:"mode"`       // auto | manual
	ModelTier string `mapstructure:"model_tier"` // fast | quality
}

// Prompts holds prompt template store configuration.
type Prompts struct {
	Directory string `mapstructure:"directory"`
}

// Metadata holds publishing metadata bounds.
type Metadata struct {
	HashtagCount int `mapstructure:"hashtag_count"`
	TitleMaxLen  int `mapstructure:"title_max_len"`
}

// Load reads configuration from viper (config file + env) into a Config.
// A .env file is loaded first if present so GEMINI_API_KEY can live there.
func Load() (*Config, error) {
	_ = godotenv.Load()

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", defaultDataDir())

	viper.SetDefault("gemini.fast_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.quality_model", "gemini-2.5-pro")
	viper.SetDefault("gemini.timeout", "90s")
	viper.SetDefault("gemini.max_tokens", 8192)
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("gemini.max_retries", 3)

	viper.SetDefault("pipeline.region", "india")
	viper.SetDefault("pipeline.mode", "auto")
	viper.SetDefault("pipeline.model_tier", "fast")

	viper.SetDefault("prompts.directory", filepath.Join(defaultDataDir(), "prompts"))

	viper.SetDefault("metadata.hashtag_count", 3)
	viper.SetDefault("metadata.title_max_len", 60)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pivotnote"
	}
	return filepath.Join(home, ".pivotnote")
}

// Validate checks option values that have a closed set of legal states.
// Region/mode/tier mismatches must fail here, at the boundary, not deep
// inside a prompt render.
func (c *Config) Validate() error {
	if r := core.Region(c.Pipeline.Region); !r.Valid() {
		return fmt.Errorf("invalid pipeline.region %q: must be %q or %q", c.Pipeline.Region, core.RegionIndia, core.RegionUSA)
	}
	switch Mode(c.Pipeline.Mode) {
	case ModeAuto, ModeManual:
	default:
		return fmt.Errorf("invalid pipeline.mode %q: must be %q or %q", c.Pipeline.Mode, ModeAuto, ModeManual)
	}
	switch ModelTier(c.Pipeline.ModelTier) {
	case TierFast, TierQuality:
	default:
		return fmt.Errorf("invalid pipeline.model_tier %q: must be %q or %q", c.Pipeline.ModelTier, TierFast, TierQuality)
	}
	if _, err := time.ParseDuration(c.Gemini.Timeout); err != nil {
		return fmt.Errorf("invalid gemini.timeout %q: %w", c.Gemini.Timeout, err)
	}
	return nil
}

// Region returns the configured pipeline region.
func (c *Config) Region() core.Region { return core.Region(c.Pipeline.Region) }

// Mode returns the configured pipeline mode.
func (c *Config) Mode() Mode { return Mode(c.Pipeline.Mode) }

// Tier returns the configured model tier.
func (c *Config) Tier() ModelTier { return ModelTier(c.Pipeline.ModelTier) }

// GeminiTimeout returns the parsed provider timeout.
func (c *Config) GeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 90 * time.Second
	}
	return d
}
