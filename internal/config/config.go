package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/hunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Catalog content source. When SheetsID is set the catalog is loaded from
	// Google Sheets; otherwise from the JSON file at CatalogFile.
	CatalogFile       string `env:"CATALOG_FILE" envDefault:"data/catalog.json"`
	SheetsID          string `env:"GOOGLE_SHEETS_ID"`
	SheetsCredentials string `env:"GOOGLE_SHEETS_CREDENTIALS" envDefault:"service-account.json"`

	// Optional cross-instance event backplane. Empty means in-process fan-out only.
	RedisURL string `env:"REDIS_URL"`

	// Bcrypt hash of the operator console password. Empty disables operator
	// authentication (local development).
	OperatorPasswordHash string `env:"OPERATOR_PASSWORD_HASH"`

	// Upper bound for any single team-store operation.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// Seed demo teams on startup when the store is empty.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
