package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath        string     `env:"DB_PATH" envDefault:"data/scoreboard.db"`
	LogLevel      slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir        string     `env:"SPA_DIR" envDefault:"../web/dist"`
	RedisURL      string     `env:"REDIS_URL"`
	PIN           string     `env:"PIN" envDefault:"5122"`
	SessionSecret string     `env:"SESSION_SECRET"`
	PublicURL     string     `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	CORSOrigins   []string   `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	SeedDemo      bool       `env:"SEED_DEMO" envDefault:"false"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if len(c.PIN) != 4 {
		return fmt.Errorf("PIN must be 4 digits, got %d characters", len(c.PIN))
	}
	for _, r := range c.PIN {
		if r < '0' || r > '9' {
			return errors.New("PIN must only contain digits")
		}
	}
	return nil
}
