package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines engine configuration.
type Config struct {
	TableName      string  `yaml:"table_name"`
	PathSeparator  string  `yaml:"path_separator"`
	BatchSize      int     `yaml:"batch_size"`
	BatchDelayMs   int     `yaml:"batch_delay_ms"`
	MaxPasses      int     `yaml:"max_passes"`
	PowerTolerance float64 `yaml:"power_tolerance"`
	SinkTimeoutMs  int     `yaml:"sink_timeout_ms"`
	StrictHeadRule bool    `yaml:"strict_head_rule"`
	WebhookURL     string  `yaml:"webhook_url"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TableName:      "AllDevice",
		PathSeparator:  `\`,
		BatchSize:      100,
		BatchDelayMs:   200,
		MaxPasses:      10,
		PowerTolerance: 0.001,
		SinkTimeoutMs:  10000,
	}
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("HIERARCHY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.TableName = getenvDefault("HIERARCHY_TABLE", cfg.TableName)
	cfg.BatchSize = getenvIntDefault("HIERARCHY_BATCH_SIZE", cfg.BatchSize)
	cfg.BatchDelayMs = getenvIntDefault("HIERARCHY_BATCH_DELAY_MS", cfg.BatchDelayMs)
	cfg.MaxPasses = getenvIntDefault("HIERARCHY_MAX_PASSES", cfg.MaxPasses)
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("HIERARCHY_WEBHOOK_URL")
	}
	return cfg, cfg.Validate()
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.TableName == "" {
		return errors.New("config: empty table name")
	}
	if c.PathSeparator == "" {
		return errors.New("config: empty path separator")
	}
	if c.BatchSize <= 0 {
		return errors.New("config: non-positive batch size")
	}
	if c.MaxPasses <= 0 {
		return errors.New("config: non-positive max passes")
	}
	if c.PowerTolerance < 0 {
		return errors.New("config: negative power tolerance")
	}
	return nil
}

// BatchDelay returns the inter-batch pause.
func (c Config) BatchDelay() time.Duration {
	if c.BatchDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}

// SinkTimeout returns the per-batch sink timeout; zero disables it.
func (c Config) SinkTimeout() time.Duration {
	if c.SinkTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.SinkTimeoutMs) * time.Millisecond
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
