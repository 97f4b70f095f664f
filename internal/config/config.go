// Package config loads typed application configuration from the environment.
// A local .env file is read first when present; real deployments set the
// variables directly.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Port  string `env:"APP_PORT" env-default:"8080"`
	Debug bool   `env:"APP_DEBUG" env-default:"false"`

	// Remote store. Empty credentials select the in-memory store so the
	// server still boots for local development.
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	SpreadsheetID   string `env:"SPREADSHEET_ID"`

	// Catalog cache TTL in seconds. Bounds remote API call volume while
	// keeping staleness short enough that back-to-back checkouts rarely
	// observe stale stock.
	CacheTTLSeconds int `env:"PRODUCTS_CACHE_TTL" env-default:"10"`

	AdminPassword string `env:"ADMIN_PASSWORD"`
	JWTSecret     string `env:"JWT_SECRET" env-default:"dev-only-secret"`
	SecureCookies bool   `env:"SECURE_COOKIES" env-default:"false"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	CompanyName    string `env:"COMPANY_NAME" env-default:"SheetPOS Store"`
	CompanyAddress string `env:"COMPANY_ADDRESS"`
	CompanyPhone   string `env:"COMPANY_PHONE"`
	CompanyEmail   string `env:"COMPANY_EMAIL"`
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if cfg.CacheTTLSeconds < 1 {
		cfg.CacheTTLSeconds = 1
	}
	return &cfg, nil
}

// CacheTTL returns the catalog cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
