package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/mycelian/partitionkey/internal/platform/logger"
)

// Prefix is prepended to every environment variable, e.g. DPK_LOG_LEVEL.
const Prefix = "DPK"

// Config holds the dpk tool settings. The derivation itself has no knobs.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// New reads Config from DPK_* environment variables and validates it.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks LogLevel and LogFormat.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case logger.FormatJSON, logger.FormatConsole:
		return nil
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", c.LogFormat)
	}
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unsupported LOG_LEVEL: %s", c.LogLevel)
	}
	return lvl, nil
}
