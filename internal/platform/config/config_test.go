package config

import (
	"os"
	"path/filepath"
	"testing"

	"stock_backtest/internal/feature/backtest/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"HTTP_ADDR", "PRICE_SOURCE", "CORS_ALLOWED_ORIGINS",
	"BACKTEST_TRADING_PERIODS_PER_YEAR", "BACKTEST_DAYS_PER_YEAR", "BACKTEST_MAX_PARALLEL",
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, env[k])
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want App
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: App{HTTPAddr: DefaultHTTPAddr, PriceSource: SourceDB, Calendar: entity.DefaultCalendar()},
		},
		{
			name: "crypto calendar and alpaca",
			env: map[string]string{
				"HTTP_ADDR":                         ":9000",
				"PRICE_SOURCE":                      " Alpaca ",
				"CORS_ALLOWED_ORIGINS":              "https://a.example, ,https://b.example",
				"BACKTEST_TRADING_PERIODS_PER_YEAR": "365",
				"BACKTEST_DAYS_PER_YEAR":            "365.25",
				"BACKTEST_MAX_PARALLEL":             "8",
			},
			want: App{
				HTTPAddr:           ":9000",
				PriceSource:        SourceAlpaca,
				CORSAllowedOrigins: []string{"https://a.example", "https://b.example"},
				Calendar:           entity.Calendar{TradingPeriodsPerYear: 365, DaysPerYear: 365.25},
				MaxParallel:        8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			got, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown source", map[string]string{"PRICE_SOURCE": "yahoo"}},
		{"zero periods", map[string]string{"BACKTEST_TRADING_PERIODS_PER_YEAR": "0"}},
		{"bad days", map[string]string{"BACKTEST_DAYS_PER_YEAR": "year"}},
		{"negative parallel", map[string]string{"BACKTEST_MAX_PARALLEL": "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRICE_SOURCE=twelvedata\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("PRICE_SOURCE", "")
	require.NoError(t, os.Unsetenv("PRICE_SOURCE"))

	LoadDotEnv()

	assert.Equal(t, "twelvedata", os.Getenv("PRICE_SOURCE"))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NotPanics(t, LoadDotEnv)
}
