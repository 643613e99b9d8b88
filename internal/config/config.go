// Package config loads bot configuration from the environment.
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// OneBotAPIURL is the base URL of the OneBot/Napcat HTTP API.
	OneBotAPIURL   string        `env:"ONEBOT_API_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" default:"10s"`

	DefaultMuteMinutes int  `env:"DEFAULT_MUTE_MINUTES" default:"1"`
	VoteWindowSeconds  int  `env:"VOTE_WINDOW_SECONDS" default:"60"`
	DebugLogging       bool `env:"DEBUG_LOGGING" default:"false"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.OneBotAPIURL == "" {
		return fmt.Errorf("ONEBOT_API_URL is required")
	}
	if cfg.DefaultMuteMinutes <= 0 {
		return fmt.Errorf("DEFAULT_MUTE_MINUTES must be positive, got %d", cfg.DefaultMuteMinutes)
	}
	if cfg.VoteWindowSeconds <= 0 {
		return fmt.Errorf("VOTE_WINDOW_SECONDS must be positive, got %d", cfg.VoteWindowSeconds)
	}
	if cfg.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", cfg.BackendTimeout)
	}
	return nil
}

// VoteWindow returns the voting window as a duration.
func (c *Config) VoteWindow() time.Duration {
	return time.Duration(c.VoteWindowSeconds) * time.Second
}

// EffectiveLogLevel honors the DEBUG_LOGGING switch over LOG_LEVEL.
func (c *Config) EffectiveLogLevel() string {
	if c.DebugLogging {
		return "debug"
	}
	return c.LogLevel
}
