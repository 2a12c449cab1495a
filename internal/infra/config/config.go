package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application. It is built once
// at process start; there is no other process-wide mutable state.
type AppConfig struct {
	// Mandatory user-session credentials. Missing values are a fatal
	// precondition failure before any network activity.
	APIID         int
	APIHash       string
	SessionString string

	// Optional notification bot credentials. When either is missing the
	// final notification is skipped with a warning.
	NotifyToken  string
	NotifyChatID int64

	LogLevel    string
	Environment string

	DatabaseURL   string   // optional run-history store
	Providers     []string // providers to run; empty = all built-ins
	CronSpec      string   // daemon schedule
	ProvidersFile string   // optional yaml provider overrides
}

// Notifiable reports whether notification credentials are fully configured.
func (c *AppConfig) Notifiable() bool {
	return c.NotifyToken != "" && c.NotifyChatID != 0
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	apiIDStr := os.Getenv("TG_API_ID")
	if apiIDStr == "" {
		return nil, fmt.Errorf("TG_API_ID is not set")
	}
	apiID, err := strconv.Atoi(apiIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TG_API_ID: %w", err)
	}
	cfg.APIID = apiID

	cfg.APIHash = os.Getenv("TG_API_HASH")
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("TG_API_HASH is not set")
	}

	cfg.SessionString = os.Getenv("TG_SESSION_STR")
	if cfg.SessionString == "" {
		return nil, fmt.Errorf("TG_SESSION_STR is not set; run the session export script first")
	}

	cfg.NotifyToken = os.Getenv("TG_BOT_TOKEN")
	if chatIDStr := os.Getenv("TG_CHAT_ID"); chatIDStr != "" {
		cfg.NotifyChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TG_CHAT_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if list := os.Getenv("CHECKIN_PROVIDERS"); list != "" {
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Providers = append(cfg.Providers, name)
			}
		}
	}

	cfg.CronSpec = os.Getenv("CHECKIN_CRON")
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 9 * * *" // Default: 9:00 AM daily
	}

	cfg.ProvidersFile = os.Getenv("PROVIDERS_FILE")

	return cfg, nil
}
