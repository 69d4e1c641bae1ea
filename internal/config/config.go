package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the optional YAML file read before the environment.
const ConfigPathEnv = "LEXDASH_CONFIG_PATH"

type Config struct {
	// HTTP Server
	Port           string   `yaml:"port"`
	WriteRateLimit int      `yaml:"write_rate_limit"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	SecureCookies  bool     `yaml:"secure_cookies"`

	// Database
	SQLiteDBPath string `yaml:"sqlite_db_path"`

	// Practice
	Timezone      string `yaml:"timezone"`
	RevenueMonths int    `yaml:"revenue_months"`
	UpcomingLimit int    `yaml:"upcoming_limit"`

	LogLevel string `yaml:"log_level"`

	// AMQP record events; disabled when AMQPURL is empty.
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Token cache
	TokenCacheSize int           `yaml:"token_cache_size"`
	TokenCacheTTL  time.Duration `yaml:"token_cache_ttl"`

	// TokenRevalidate is how long a cached token is trusted before the
	// database is checked again, which bounds how late a revocation lands.
	TokenRevalidate time.Duration `yaml:"token_revalidate"`

	// Google Sheets revenue export
	GoogleSpreadsheetID      string `yaml:"google_spreadsheet_id"`
	GoogleSheetName          string `yaml:"google_sheet_name"`
	GoogleServiceAccountFile string `yaml:"google_service_account_file"`
	GoogleServiceAccountJSON string `yaml:"google_service_account_json"`
}

func defaults() *Config {
	return &Config{
		Port:            "8080",
		WriteRateLimit:  60,
		SQLiteDBPath:    "./data/lexdash.db",
		Timezone:        "America/Sao_Paulo",
		RevenueMonths:   6,
		UpcomingLimit:   5,
		LogLevel:        "info",
		AMQPExchange:    "lexdash",
		AMQPQueue:       "record_events",
		TokenCacheSize:  1000,
		TokenCacheTTL:   5 * time.Minute,
		GoogleSheetName: "Receita",
		TokenRevalidate: 15 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// LEXDASH_CONFIG_PATH, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.WriteRateLimit = getEnvInt("WRITE_RATE_LIMIT", cfg.WriteRateLimit)
	cfg.TrustedProxies = getEnvList("TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.SecureCookies = getEnvBool("SECURE_COOKIES", cfg.SecureCookies)

	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)

	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.RevenueMonths = getEnvInt("REVENUE_MONTHS", cfg.RevenueMonths)
	cfg.UpcomingLimit = getEnvInt("UPCOMING_LIMIT", cfg.UpcomingLimit)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)

	cfg.TokenCacheSize = getEnvInt("TOKEN_CACHE_SIZE", cfg.TokenCacheSize)
	cfg.TokenCacheTTL = getEnvDuration("TOKEN_CACHE_TTL", cfg.TokenCacheTTL)
	cfg.TokenRevalidate = getEnvDuration("TOKEN_REVALIDATE", cfg.TokenRevalidate)

	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", cfg.GoogleSheetName)
	cfg.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", cfg.GoogleServiceAccountFile)
	cfg.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", cfg.GoogleServiceAccountJSON)

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Location resolves Timezone. Call Validate first.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// ExportEnabled reports whether a revenue spreadsheet is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s'", c.Timezone))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.WriteRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid write rate limit %d: must be at least 1", c.WriteRateLimit))
	}
	if c.RevenueMonths < 1 || c.RevenueMonths > 36 {
		errors = append(errors, fmt.Sprintf("invalid revenue months %d: must be between 1 and 36", c.RevenueMonths))
	}
	if c.UpcomingLimit < 1 || c.UpcomingLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid upcoming limit %d: must be between 1 and 100", c.UpcomingLimit))
	}
	if c.TokenCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid token cache size %d: must not be negative", c.TokenCacheSize))
	}
	if c.TokenCacheSize > 0 && c.TokenCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid token cache TTL %v: must be at least 1 second", c.TokenCacheTTL))
	}
	if c.TokenCacheSize > 0 && (c.TokenRevalidate < time.Second || c.TokenRevalidate > c.TokenCacheTTL) {
		errors = append(errors, fmt.Sprintf("invalid token revalidate interval %v: must be between 1 second and the token cache TTL", c.TokenRevalidate))
	}

	if c.ExportEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the revenue export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
