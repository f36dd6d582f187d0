// Package config loads process settings shared by the server and the CLIs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"stock_backtest/internal/feature/backtest/domain/entity"

	"github.com/joho/godotenv"
)

// Price sources selectable with PRICE_SOURCE.
const (
	SourceDB         = "db"
	SourceTwelveData = "twelvedata"
	SourceAlpaca     = "alpaca"
)

// DefaultHTTPAddr is used when HTTP_ADDR is unset.
const DefaultHTTPAddr = ":8080"

// ErrInvalidConfig wraps every malformed setting.
var ErrInvalidConfig = errors.New("invalid configuration")

// App holds the backtest service settings.
type App struct {
	HTTPAddr           string
	PriceSource        string
	CORSAllowedOrigins []string
	Calendar           entity.Calendar
	MaxParallel        int
}

// LoadDotEnv loads .env from the working directory if it exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
}

// Load reads HTTP_ADDR, PRICE_SOURCE, CORS_ALLOWED_ORIGINS, BACKTEST_TRADING_PERIODS_PER_YEAR,
// BACKTEST_DAYS_PER_YEAR and BACKTEST_MAX_PARALLEL.
func Load() (App, error) {
	cfg := App{
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		PriceSource: strings.ToLower(strings.TrimSpace(os.Getenv("PRICE_SOURCE"))),
		Calendar:    entity.DefaultCalendar(),
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.PriceSource == "" {
		cfg.PriceSource = SourceDB
	}
	if err := ValidateSource(cfg.PriceSource); err != nil {
		return cfg, err
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.Calendar.TradingPeriodsPerYear, err = positiveFloat("BACKTEST_TRADING_PERIODS_PER_YEAR", cfg.Calendar.TradingPeriodsPerYear); err != nil {
		return cfg, err
	}
	if cfg.Calendar.DaysPerYear, err = positiveFloat("BACKTEST_DAYS_PER_YEAR", cfg.Calendar.DaysPerYear); err != nil {
		return cfg, err
	}
	if cfg.MaxParallel, err = PositiveInt("BACKTEST_MAX_PARALLEL", 0); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ValidateSource rejects unknown price sources.
func ValidateSource(s string) error {
	switch s {
	case SourceDB, SourceTwelveData, SourceAlpaca:
		return nil
	default:
		return fmt.Errorf("%w: unknown price source %q", ErrInvalidConfig, s)
	}
}

// PositiveInt reads key as an integer > 0, returning fallback when unset.
func PositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q must be a positive integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}

func positiveFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%w: %s=%q must be a positive number", ErrInvalidConfig, key, v)
	}
	return f, nil
}
