package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string
	SeedFile    string

	// Database
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID    string
	GoogleProjectsSheet    string
	GoogleMilestonesSheet  string
	GoogleReceivablesSheet string

	// AMQP, optional. Empty URL means approvals are only logged.
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Report cache
	ReportCacheSize int
	ReportCacheTTL  time.Duration

	// Dashboard
	FeaturedDocument string

	// Catalog refresh; zero disables the periodic reload.
	CatalogMaxAge          time.Duration
	CatalogRefreshInterval time.Duration

	LogLevel string
}

var (
	validBackends  = []string{"memory", "yaml", "sqlite", "sheets"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		SeedFile:    getEnv("SEED_FILE", "./data/obras.yaml"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/obras.db"),

		GoogleSpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleProjectsSheet:    getEnv("GOOGLE_PROJECTS_SHEET", "Obras"),
		GoogleMilestonesSheet:  getEnv("GOOGLE_MILESTONES_SHEET", "Hitos"),
		GoogleReceivablesSheet: getEnv("GOOGLE_RECEIVABLES_SHEET", "Cobranzas"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "obras"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "obras.progress_approved"),

		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 64),
		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 10*time.Minute),

		FeaturedDocument: getEnv("FEATURED_DOCUMENT", ""),

		CatalogMaxAge:          getEnvDuration("CATALOG_MAX_AGE", 15*time.Minute),
		CatalogRefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 0),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "yaml":
		if c.SeedFile == "" {
			errors = append(errors, "seed file cannot be empty when using yaml backend")
		} else if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file '%s' is not readable: %v", c.SeedFile, err))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleProjectsSheet == "" || c.GoogleMilestonesSheet == "" || c.GoogleReceivablesSheet == "" {
			errors = append(errors, "Google sheet names for projects, milestones and receivables cannot be empty")
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReportCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: cannot be negative", c.ReportCacheSize))
	} else if c.ReportCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at most 10000", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must be at least 1 second", c.ReportCacheTTL))
	}

	if c.CatalogRefreshInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid catalog refresh interval %v: cannot be negative", c.CatalogRefreshInterval))
	} else if c.CatalogRefreshInterval > 0 && c.CatalogRefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid catalog refresh interval %v: must be at least 1 second", c.CatalogRefreshInterval))
	}
	if c.CatalogMaxAge < 0 {
		errors = append(errors, fmt.Sprintf("invalid catalog max age %v: cannot be negative", c.CatalogMaxAge))
	}

	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// AMQPEnabled reports whether approval events go to a broker.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
