package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appDirName = "findash"
	dbFileName = "finance.db"
)

type Config struct {
	// DataDir is the per-user application data directory holding the
	// database file. Resolved once at startup and injected everywhere;
	// nothing else reads the environment.
	DataDir string

	// DBPath is the SQLite database file. Defaults to DataDir/finance.db.
	DBPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

func Load() *Config {
	dataDir := resolveDataDir()
	cfg := &Config{
		DataDir:  dataDir,
		DBPath:   getEnv("FINDASH_DB_PATH", filepath.Join(dataDir, dbFileName)),
		LogLevel: getEnv("FINDASH_LOG_LEVEL", "info"),
	}
	return cfg
}

// resolveDataDir picks the data directory: explicit override first, then the
// platform's per-user application-data location.
func resolveDataDir() string {
	if configured := os.Getenv("FINDASH_DATA_DIR"); configured != "" {
		return expandHome(configured)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(base, appDirName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName)
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, appDirName)
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
