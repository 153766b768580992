// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string `env:"APP_ADDR" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDSN     string        `env:"DB_DSN,required"`
	DatabaseTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"3s"`
	DatabaseMaxConn int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MigrationsDir   string        `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	EnableHSTS     bool     `env:"ENABLE_HSTS" envDefault:"false"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
	MaxBodyBytes   int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	OpenLibraryUserAgent  string  `env:"OPENLIBRARY_USER_AGENT" envDefault:"bookreview/1.0"`
	OpenLibraryRPS        float64 `env:"OPENLIBRARY_RPS" envDefault:"1"`
	OpenLibraryMaxRetries int     `env:"OPENLIBRARY_MAX_RETRIES" envDefault:"2"`
}

// LoadEnvFiles reads .env and .env.local. Variables already present in the
// process environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the env files and parses the environment into a Config.
func Load() (*Config, error) {
	LoadEnvFiles()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
