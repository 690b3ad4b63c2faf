package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"pulse/internal/domain"
)

// Config holds every runtime setting of the dashboard core.
// LoadConfig reads it from YAML and then applies environment overrides.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		FineIntervalMS    int     `yaml:"fine_interval_ms"`
		FineProbability   float64 `yaml:"fine_probability"`
		FineMaxDeltaPct   float64 `yaml:"fine_max_delta_pct"`
		CoarseIntervalMS  int     `yaml:"coarse_interval_ms"`
		CoarseProbability float64 `yaml:"coarse_probability"`
		CoarseMaxDeltaPct float64 `yaml:"coarse_max_delta_pct"`
		HistorySize       int     `yaml:"history_size"`
		Seed              uint64  `yaml:"seed"`
	} `yaml:"feed"`

	Source struct {
		LatencyMS         int     `yaml:"latency_ms"`
		TokensPerCategory int     `yaml:"tokens_per_category"`
		FailureRate       float64 `yaml:"failure_rate"`
		Seed              uint64  `yaml:"seed"`
	} `yaml:"source"`

	UI struct {
		RenderIntervalMS  int    `yaml:"render_interval_ms"`
		RefetchIntervalMS int    `yaml:"refetch_interval_ms"`
		MaxNotifications  int    `yaml:"max_notifications"`
		DisplayMode       string `yaml:"display_mode"`
		IconDir           string `yaml:"icon_dir"`
	} `yaml:"ui"`

	Trade struct {
		SettlementDelayMS int             `yaml:"settlement_delay_ms"`
		MinPrice          decimal.Decimal `yaml:"min_price"`
	} `yaml:"trade"`

	Engine struct {
		InboxSize int `yaml:"inbox_size"`
	} `yaml:"engine"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`

	Debug struct {
		PprofAddr string `yaml:"pprof_addr"`
	} `yaml:"debug"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "pulse"
	cfg.App.Version = "dev"

	cfg.Feed.FineIntervalMS = 500
	cfg.Feed.FineProbability = 0.35
	cfg.Feed.FineMaxDeltaPct = 1
	cfg.Feed.CoarseIntervalMS = 5000
	cfg.Feed.CoarseProbability = 0.15
	cfg.Feed.CoarseMaxDeltaPct = 4
	cfg.Feed.HistorySize = 50

	cfg.Source.LatencyMS = 800
	cfg.Source.TokensPerCategory = 12

	cfg.UI.RenderIntervalMS = 2000
	cfg.UI.RefetchIntervalMS = 3000
	cfg.UI.MaxNotifications = 50
	cfg.UI.DisplayMode = string(domain.DisplayDetailed)

	cfg.Trade.SettlementDelayMS = 1000
	cfg.Trade.MinPrice = decimal.RequireFromString("0.001")

	cfg.Engine.InboxSize = 1024

	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads the YAML file on top of DefaultConfig.
// A missing file is not an error; defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	positive := []struct {
		field string
		value int
	}{
		{"feed.fine_interval_ms", c.Feed.FineIntervalMS},
		{"feed.coarse_interval_ms", c.Feed.CoarseIntervalMS},
		{"feed.history_size", c.Feed.HistorySize},
		{"source.tokens_per_category", c.Source.TokensPerCategory},
		{"ui.render_interval_ms", c.UI.RenderIntervalMS},
		{"ui.refetch_interval_ms", c.UI.RefetchIntervalMS},
		{"ui.max_notifications", c.UI.MaxNotifications},
		{"engine.inbox_size", c.Engine.InboxSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &domain.ConfigError{Field: p.field, Err: errors.New("must be positive")}
		}
	}

	probabilities := []struct {
		field string
		value float64
	}{
		{"feed.fine_probability", c.Feed.FineProbability},
		{"feed.coarse_probability", c.Feed.CoarseProbability},
		{"source.failure_rate", c.Source.FailureRate},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return &domain.ConfigError{Field: p.field, Err: fmt.Errorf("%v not in [0,1]", p.value)}
		}
	}

	if c.Feed.FineMaxDeltaPct < 0 || c.Feed.CoarseMaxDeltaPct < 0 {
		return &domain.ConfigError{Field: "feed.max_delta_pct", Err: errors.New("must not be negative")}
	}
	if c.Source.LatencyMS < 0 || c.Trade.SettlementDelayMS < 0 {
		return &domain.ConfigError{Field: "latency", Err: errors.New("must not be negative")}
	}

	switch domain.DisplayMode(c.UI.DisplayMode) {
	case domain.DisplayCompact, domain.DisplayDetailed:
	default:
		return &domain.ConfigError{Field: "ui.display_mode", Err: fmt.Errorf("unknown mode %q", c.UI.DisplayMode)}
	}

	if !c.Trade.MinPrice.IsPositive() {
		return &domain.ConfigError{Field: "trade.min_price", Err: errors.New("must be positive")}
	}

	return nil
}

// overrideWithEnv applies PULSE_* environment variables on top of the file values.
func overrideWithEnv(cfg *Config) error {
	if level := os.Getenv("PULSE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if raw := os.Getenv("PULSE_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return &domain.ConfigError{Field: "PULSE_SEED", Err: err}
		}
		cfg.Feed.Seed = seed
		cfg.Source.Seed = seed
	}
	if raw := os.Getenv("PULSE_LATENCY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return &domain.ConfigError{Field: "PULSE_LATENCY_MS", Err: err}
		}
		cfg.Source.LatencyMS = ms
	}
	return nil
}
