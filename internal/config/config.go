package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from the environment. Only POSTGRES_DSN is mandatory;
// everything else defaults to a local development setup.
type Config struct {
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	PostgresDSN string `env:"POSTGRES_DSN,notEmpty"`
	APIAddr     string `env:"API_ADDR" envDefault:":8080"`
	CeleryQueue string `env:"CELERY_QUEUE" envDefault:"celery"`

	// Poll-and-dispatch daemon knobs.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	PollBatch    int           `env:"POLL_BATCH" envDefault:"10"`

	// Result poller knobs.
	ResultPollInterval time.Duration `env:"RESULT_POLL_INTERVAL" envDefault:"2s"`
	ResultPollTimeout  time.Duration `env:"RESULT_POLL_TIMEOUT" envDefault:"10m"`

	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
