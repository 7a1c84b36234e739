// internal/infra/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken       string
	DatabaseURL         string
	LogLevel            string
	Environment         string
	Location            *time.Location
	CronSpecMaterialize string // Spawns today's regular operations
	CronSpecReminder    string // Re-asks about unconfirmed receipts
	PageSize            int
	PaginationWindow    int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a variable lookup function.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	// Required settings
	cfg.TelegramToken = getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	// Logging
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	// Operation dates and cron schedules are evaluated in this zone
	tz := getenv("TIMEZONE")
	if tz == "" {
		tz = "Europe/Kyiv"
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	// Cron schedules
	cfg.CronSpecMaterialize = getenv("CRON_SPEC_MATERIALIZE")
	if cfg.CronSpecMaterialize == "" {
		cfg.CronSpecMaterialize = "0 8 * * *" // 08:00 daily
	}

	cfg.CronSpecReminder = getenv("CRON_SPEC_REMINDER")
	if cfg.CronSpecReminder == "" {
		cfg.CronSpecReminder = "0 20 * * *" // 20:00 daily
	}

	// Operation list paging
	cfg.PageSize, err = intOrDefault(getenv, "PAGE_SIZE", 5)
	if err != nil {
		return nil, err
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	cfg.PaginationWindow, err = intOrDefault(getenv, "PAGINATION_WINDOW", 5)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intOrDefault(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
