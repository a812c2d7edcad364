// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseConnStr   string
	Port              int
	APIToken          string
	MarketDataBaseURL string
	MarketDataAPIKey  string
	RefreshCron       string // cron spec for the nightly price refresh
	LogLevel          string
}

// Load reads configuration from environment variables, loading a local .env
// file first if one is present.
func Load() (*Config, error) {
	// Silently ignore a missing .env file; plain env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseConnStr:   getEnv("DB_CONN_STR", ""),
		Port:              8080,
		APIToken:          getEnv("API_TOKEN", "dev-token"),
		MarketDataBaseURL: getEnv("MARKETDATA_BASE_URL", "https://quotes.example.com"),
		MarketDataAPIKey:  getEnv("MARKETDATA_API_KEY", ""),
		RefreshCron:       getEnv("PRICE_REFRESH_CRON", "30 3 * * *"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.DatabaseConnStr == "" {
		// Build the connection string from individual vars (Docker friendly)
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "postgres")
		dbname := getEnv("DB_NAME", "foliotrack")

		cfg.DatabaseConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
