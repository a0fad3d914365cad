// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/units"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath         string
	InboxPath            string
	LogPath              string
	LogLevel             string
	PageSize             int
	DefaultReportType    models.ReportType
	InboxDebounce        time.Duration
	DesktopNotifications bool

	// Parser table overrides.
	ExtraUnits []units.Unit
	ShortNames map[string]string
}

// Default values
const (
	appDirName           = "tower-battlelog"
	defaultLogLevel      = "info"
	defaultPageSize      = 10
	defaultInboxDebounce = 250 * time.Millisecond
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	reportType, err := models.ParseReportType(getEnvString("DEFAULT_REPORT_TYPE", ""))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_REPORT_TYPE: %w", err)
	}

	extraUnits, err := parseUnitOverrides(os.Getenv("EXTRA_UNITS"))
	if err != nil {
		return nil, fmt.Errorf("EXTRA_UNITS: %w", err)
	}

	cfg := &Config{
		DatabasePath:         getEnvString("DATABASE_PATH", defaultPath("battlelog.db")),
		InboxPath:            getEnvString("INBOX_PATH", defaultPath("inbox")),
		LogPath:              getEnvString("LOG_PATH", defaultPath("battlelog.log")),
		LogLevel:             strings.ToLower(getEnvString("LOG_LEVEL", defaultLogLevel)),
		PageSize:             getEnvInt("PAGE_SIZE", defaultPageSize),
		DefaultReportType:    reportType,
		InboxDebounce:        getEnvDuration("INBOX_DEBOUNCE", defaultInboxDebounce),
		DesktopNotifications: getEnvBool("DESKTOP_NOTIFICATIONS", true),
		ExtraUnits:           extraUnits,
		ShortNames:           parseShortNameOverrides(os.Getenv("DAMAGE_SHORT_NAMES")),
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure log directory exists
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory location
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the application config directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as milliseconds if no unit specified
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
