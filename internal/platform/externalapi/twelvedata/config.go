// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is used when TWELVE_DATA_BASE_URL is unset.
const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API
	Timeout          time.Duration // HTTP request timeout
	RequestsPerMin   int           // Plan quota; the free tier allows 8
}

// LoadConfig loads Twelve Data configuration from environment variables.
// TWELVE_DATA_RATE_LIMIT overrides the per-minute quota for paid plans.
func LoadConfig() Config {
	cfg := Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          os.Getenv("TWELVE_DATA_BASE_URL"),
		Timeout:          10 * time.Second,
		RequestsPerMin:   8,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if v := os.Getenv("TWELVE_DATA_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestsPerMin = n
		} else {
			slog.Warn("ignoring invalid TWELVE_DATA_RATE_LIMIT", "value", v)
		}
	}
	return cfg
}
