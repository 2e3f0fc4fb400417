package infra

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pricestream/internal/domain"
)

// Config holds the full application configuration. Values come from the
// YAML file first; environment variables override them when set.
type Config struct {
	App struct {
		Name    string `yaml:"name" env:"PRICESTREAM_APP_NAME"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	IEX struct {
		BaseURL        string `yaml:"base_url" env:"PRICESTREAM_IEX_BASE_URL"`
		Token          string `yaml:"token" env:"PRICESTREAM_IEX_TOKEN"`
		TimeoutSec     int    `yaml:"timeout_sec" env:"PRICESTREAM_IEX_TIMEOUT_SEC"`
		PollIntervalMS int    `yaml:"poll_interval_ms" env:"PRICESTREAM_POLL_INTERVAL_MS"`
	} `yaml:"iex"`

	Chart struct {
		WindowSize    int    `yaml:"window_size" env:"PRICESTREAM_WINDOW_SIZE"`
		Timezone      string `yaml:"timezone" env:"PRICESTREAM_TIMEZONE"`
		DefaultSymbol string `yaml:"default_symbol" env:"PRICESTREAM_DEFAULT_SYMBOL"`
	} `yaml:"chart"`

	Server struct {
		Addr string `yaml:"addr" env:"PRICESTREAM_ADDR"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path" env:"PRICESTREAM_DB_PATH"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level" env:"PRICESTREAM_LOG_LEVEL"`
		Dir   string `yaml:"dir" env:"PRICESTREAM_LOG_DIR"`
	} `yaml:"logging"`
}

// LoadConfig reads the YAML file at path, then overrides values from the
// environment. A .env file in the working directory is honored when present.
func LoadConfig(path string) (*Config, error) {
	// .env is optional for local development; a missing file is fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment override: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills values left unset by both the file and the
// environment. Explicitly configured bad values are left for Validate.
func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "pricestream"
	}
	if c.IEX.BaseURL == "" {
		c.IEX.BaseURL = "https://ws-api.iextrading.com/1.0"
	}
	if c.IEX.TimeoutSec == 0 {
		c.IEX.TimeoutSec = 5
	}
	if c.IEX.PollIntervalMS == 0 {
		c.IEX.PollIntervalMS = 1000
	}
	if c.Chart.WindowSize == 0 {
		c.Chart.WindowSize = 3600
	}
	if c.Chart.Timezone == "" {
		c.Chart.Timezone = "America/New_York"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5006"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "pricestream.db"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !hasPrefix(c.IEX.BaseURL, "http://") && !hasPrefix(c.IEX.BaseURL, "https://") {
		return &domain.ConfigError{Field: "iex.base_url", Err: fmt.Errorf("must be an http(s) URL, got %q", c.IEX.BaseURL)}
	}
	if c.IEX.TimeoutSec < 0 {
		return &domain.ConfigError{Field: "iex.timeout_sec", Err: fmt.Errorf("must be positive")}
	}
	if c.IEX.PollIntervalMS < 0 {
		return &domain.ConfigError{Field: "iex.poll_interval_ms", Err: fmt.Errorf("must be positive")}
	}
	if c.Chart.WindowSize < 0 {
		return &domain.ConfigError{Field: "chart.window_size", Err: fmt.Errorf("must be positive")}
	}
	if _, err := time.LoadLocation(c.Chart.Timezone); err != nil {
		return &domain.ConfigError{Field: "chart.timezone", Err: err}
	}
	return nil
}

// PollInterval returns the poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.IEX.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request vendor timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.IEX.TimeoutSec) * time.Second
}

// Location returns the display timezone. Validate has already checked the
// name, so failures only happen on a broken tz database; fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Chart.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}
