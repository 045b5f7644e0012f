// Package config loads chatwidget settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds host settings. Flags may override any field after Load.
type Config struct {
	WebSocketURL string `env:"CHATWIDGET_WS_URL" envDefault:"ws://localhost:8000/ws"`
	APIURL       string `env:"CHATWIDGET_API_URL" envDefault:"http://localhost:8000"`

	// SessionID is sent with every message when set.
	SessionID string `env:"CHATWIDGET_SESSION_ID"`

	LegacyFrames bool   `env:"CHATWIDGET_LEGACY_FRAMES"`
	Reconnect    bool   `env:"CHATWIDGET_RECONNECT"`
	LogLevel     string `env:"CHATWIDGET_LOG_LEVEL" envDefault:"warn"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown names are an error.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
