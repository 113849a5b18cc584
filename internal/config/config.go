// Package config loads server settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start.
type Config struct {
	ListenAddr     string `env:"CHESS_LISTEN_ADDR"     envDefault:":3000"`
	DBPath         string `env:"CHESS_DB_PATH"         envDefault:"chess.db"`
	AllowedOrigins string `env:"CHESS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	LogLevel       string `env:"CHESS_LOG_LEVEL"       envDefault:"info"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
