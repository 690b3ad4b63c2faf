package infra

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"pulse/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.FineIntervalMS != 500 || cfg.Feed.CoarseIntervalMS != 5000 {
		t.Errorf("Unexpected feed intervals: %+v", cfg.Feed)
	}
	if cfg.UI.MaxNotifications != 50 {
		t.Errorf("Expected notification cap 50, got %d", cfg.UI.MaxNotifications)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
feed:
  fine_interval_ms: 250
  seed: 7
source:
  latency_ms: 10
trade:
  min_price: "0.01"
ui:
  display_mode: compact
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.FineIntervalMS != 250 {
		t.Errorf("Expected 250, got %d", cfg.Feed.FineIntervalMS)
	}
	if cfg.Feed.CoarseIntervalMS != 5000 {
		t.Errorf("Unset fields should keep defaults, got %d", cfg.Feed.CoarseIntervalMS)
	}
	if cfg.Feed.Seed != 7 || cfg.Source.LatencyMS != 10 {
		t.Errorf("Unexpected values: seed=%d latency=%d", cfg.Feed.Seed, cfg.Source.LatencyMS)
	}
	if !cfg.Trade.MinPrice.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Expected min price 0.01, got %s", cfg.Trade.MinPrice)
	}
	if cfg.UI.DisplayMode != "compact" {
		t.Errorf("Expected compact, got %s", cfg.UI.DisplayMode)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PULSE_SEED", "99")
	t.Setenv("PULSE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.Seed != 99 || cfg.Source.Seed != 99 {
		t.Errorf("Seed override not applied: %d/%d", cfg.Feed.Seed, cfg.Source.Seed)
	}
	if ParseLevel(cfg.Logging.Level) != slog.LevelDebug {
		t.Errorf("Expected debug level, got %s", cfg.Logging.Level)
	}

	t.Setenv("PULSE_SEED", "abc")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for malformed PULSE_SEED")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("probability out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Feed.FineProbability = 1.5

		var cerr *domain.ConfigError
		if err := cfg.Validate(); !errors.As(err, &cerr) || cerr.Field != "feed.fine_probability" {
			t.Errorf("Expected ConfigError for fine_probability, got %v", err)
		}
	})

	t.Run("non-positive interval", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UI.RefetchIntervalMS = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for zero refetch interval")
		}
	})

	t.Run("unknown display mode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UI.DisplayMode = "fancy"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for unknown display mode")
		}
	})
}
