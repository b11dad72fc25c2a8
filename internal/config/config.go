package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"badhige/internal/gateway"
)

type Config struct {
	// HTTP Server
	Port string

	// Remote gateway
	GatewayURL     string
	GatewayTimeout time.Duration

	// Reconciliation
	InsertSettle time.Duration
	DeleteSettle time.Duration

	// Offline snapshot cache
	SQLiteDBPath string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GatewayURL:     getEnv("GATEWAY_URL", gateway.DefaultEndpoint),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 30*time.Second),
		InsertSettle:   getEnvDuration("INSERT_SETTLE", 2500*time.Millisecond),
		DeleteSettle:   getEnvDuration("DELETE_SETTLE", 3*time.Second),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/badhige.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if parsedURL, err := url.Parse(c.GatewayURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid gateway URL '%s': %v", c.GatewayURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid gateway URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.GatewayTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid gateway timeout %v: must be at least 1 second", c.GatewayTimeout))
	}

	if c.InsertSettle <= 0 {
		errors = append(errors, fmt.Sprintf("invalid insert settle delay %v: must be positive", c.InsertSettle))
	} else if c.InsertSettle > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid insert settle delay %v: must be at most 1 minute", c.InsertSettle))
	}

	if c.DeleteSettle <= 0 {
		errors = append(errors, fmt.Sprintf("invalid delete settle delay %v: must be positive", c.DeleteSettle))
	} else if c.DeleteSettle > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid delete settle delay %v: must be at most 1 minute", c.DeleteSettle))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
