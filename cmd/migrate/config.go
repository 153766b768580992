package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"bookreview/internal/config"
)

// migrateConfig is the subset of settings the migration runner needs. It
// does not require the API secrets.
type migrateConfig struct {
	DatabaseDSN   string `env:"DB_DSN,required"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
}

func loadConfig() (migrateConfig, error) {
	config.LoadEnvFiles()

	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		return migrateConfig{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
