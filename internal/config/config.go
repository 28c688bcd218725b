package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	Factory   FactoryConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Sheets    SheetsConfig
	Webhook   WebhookConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds the shared secret used to verify access tokens.
type AuthConfig struct {
	JWTSecret string
}

// FactoryConfig holds plant-wide settings.
type FactoryConfig struct {
	Timezone string
	LogLevel string
}

// RedisConfig points at the plan cache. An empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// SchedulerConfig holds the cron expressions of the background jobs.
type SchedulerConfig struct {
	LedgerProvisionCron string
	ReportCron          string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheet export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// WebhookConfig is the endpoint receiving the daily text summary.
type WebhookConfig struct {
	URL   string
	Token string
}

// Enabled reports whether the webhook delivery is configured.
func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	redisDB, err := strconv.Atoi(getenvWithDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "sharanga"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Factory: FactoryConfig{
			Timezone: getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Scheduler: SchedulerConfig{
			LedgerProvisionCron: getenvWithDefault("LEDGER_PROVISION_CRON", "5 0 * * *"),
			ReportCron:          getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Webhook: WebhookConfig{
			URL:   os.Getenv("REPORT_WEBHOOK_URL"),
			Token: os.Getenv("REPORT_WEBHOOK_TOKEN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Factory.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Scheduler.LedgerProvisionCron == "" {
		return errors.New("LEDGER_PROVISION_CRON must be provided")
	}
	if c.Scheduler.ReportCron == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	// The sheet export needs both values or neither.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Webhook.Token != "" && c.Webhook.URL == "" {
		return errors.New("REPORT_WEBHOOK_URL must be provided when REPORT_WEBHOOK_TOKEN is set")
	}
	if c.Webhook.URL != "" {
		u, err := url.ParseRequestURI(c.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("REPORT_WEBHOOK_URL must be an absolute http(s) URL, got %q", c.Webhook.URL)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
