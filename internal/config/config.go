package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreBackend selects "postgres" or "memory". The in-memory store keeps
	// the same atomicity contract and exists for local runs and tests.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`

	// RequestTimeout bounds every store round trip; requests that exceed it
	// fail as retryable.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	// DeadlineWindow is the default auction deadline when the owner does not
	// supply one.
	DeadlineWindow time.Duration `env:"AUCTION_DEADLINE_WINDOW" envDefault:"168h"`

	// ChatServiceURL is the collaboration-channel service. Empty disables the
	// post-selection channel request.
	ChatServiceURL string `env:"CHAT_SERVICE_URL" envDefault:""`

	PostgresConfig
}

func NewConfig() (*Config, error) {
	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, err
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://test:test@db:5432/test?sslmode=disable"`
	AutoMigrateUp   string `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown string `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	MigrationsURL   string `env:"MIGRATIONS_URL" envDefault:"file://internal/repository/db/migrations"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}
