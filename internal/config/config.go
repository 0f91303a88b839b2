package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DataDir      string
	DatabasePath string // main application database (analyses, workflows, signals)
	HistoryDir   string // per-symbol price history databases
	WeightsPath  string // optional scoring weights YAML, empty = built-in defaults
	LogLevel     string
	SyncSchedule string   // cron spec (with seconds) for the nightly price sync
	SyncSymbols  []string // symbols kept up to date by the sync job
	SyncPeriod   string   // lookback range requested from the data provider
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8090),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DataDir:      dataDir,
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join(dataDir, "tickerlens.db")),
		HistoryDir:   getEnv("HISTORY_DIR", filepath.Join(dataDir, "history")),
		WeightsPath:  getEnv("WEIGHTS_PATH", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SyncSchedule: getEnv("SYNC_SCHEDULE", "0 30 18 * * MON-FRI"),
		SyncSymbols:  getEnvAsList("SYNC_SYMBOLS"),
		SyncPeriod:   getEnv("SYNC_PERIOD", "2y"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.HistoryDir == "" {
		return fmt.Errorf("HISTORY_DIR is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
