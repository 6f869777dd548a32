package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken          string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath            string        `envconfig:"DB_PATH" default:"./data/attendance.db"`
	Timezone          string        `envconfig:"TIMEZONE" default:"Asia/Jakarta"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1h"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves the configured IANA timezone. All reminder windows and
// ledger dates are evaluated in this location.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
