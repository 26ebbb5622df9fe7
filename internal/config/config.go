package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration, populated from environment variables.
type Config struct {
	Addr     string `env:"POINTSBOARD_ADDR" envDefault:":8080"`
	DBPath   string `env:"POINTSBOARD_DB_PATH" envDefault:"pointsboard.db"`
	Timezone string `env:"POINTSBOARD_TIMEZONE" envDefault:"Asia/Kolkata"`
	Env      string `env:"POINTSBOARD_ENV" envDefault:"development"`

	// CSRFKey must be 64 hex characters (32 bytes) in production.
	CSRFKey string `env:"POINTSBOARD_CSRF_KEY"`

	// RateLimitPerSecond is the per-IP request budget.
	RateLimitPerSecond int `env:"POINTSBOARD_RATE_LIMIT" envDefault:"10"`

	// Announcement email settings. An empty API key selects the noop sender.
	ResendAPIKey string   `env:"POINTSBOARD_RESEND_API_KEY"`
	EmailFrom    string   `env:"POINTSBOARD_EMAIL_FROM" envDefault:"Pointsboard <noreply@pointsboard.local>"`
	AnnounceTo   []string `env:"POINTSBOARD_ANNOUNCE_TO" envSeparator:","`
}

// Load parses configuration from the environment.
// POST: Returns a Config with defaults applied, or an error
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
