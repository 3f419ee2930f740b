package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	// TelegramToken is the bot API token. Required.
	TelegramToken string `envconfig:"TELEGRAM_TOKEN" required:"true"`

	// SaldoBaseURL is the Lunch Check balance endpoint; the 16-digit card
	// number is appended directly to it.
	SaldoBaseURL string `envconfig:"LUNCHCHECK_BASE_URL" default:"https://www.lunch-card.ch/saldo/saldo.aspx?crd="`

	// FetchTimeout bounds a single balance request.
	FetchTimeout time.Duration `envconfig:"LUNCHCHECK_TIMEOUT" default:"10s"`

	// CheckSchedule is a 5-field cron expression for the balance scan.
	CheckSchedule string `envconfig:"CARD_CHECK_CRON" default:"0 14 * * *"`

	// CheckConcurrency caps concurrent balance fetches within one scan.
	CheckConcurrency int `envconfig:"CHECK_CONCURRENCY" default:"4"`

	// SnapshotInterval is how often the store is flushed to the backend.
	SnapshotInterval time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"10s"`

	// DataFile is the snapshot path for the file backend.
	DataFile string `envconfig:"DATA_FILE" default:"data.json"`

	// MongoURI selects the mongo snapshot backend when non-empty.
	MongoURI    string `envconfig:"MONGO_URI"`
	MongoDBName string `envconfig:"MONGO_DB_NAME" default:"lunchcheck_bot"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN cannot be empty")
	}
	cfg.SaldoBaseURL = strings.TrimSpace(cfg.SaldoBaseURL)
	if cfg.SaldoBaseURL == "" {
		return nil, fmt.Errorf("LUNCHCHECK_BASE_URL cannot be empty")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("LUNCHCHECK_TIMEOUT must be > 0, got %s", cfg.FetchTimeout)
	}
	if cfg.CheckConcurrency < 1 {
		return nil, fmt.Errorf("CHECK_CONCURRENCY must be >= 1, got %d", cfg.CheckConcurrency)
	}
	if cfg.SnapshotInterval <= 0 {
		return nil, fmt.Errorf("SNAPSHOT_INTERVAL must be > 0, got %s", cfg.SnapshotInterval)
	}
	if strings.TrimSpace(cfg.CheckSchedule) == "" {
		return nil, fmt.Errorf("CARD_CHECK_CRON cannot be empty")
	}

	return &cfg, nil
}
