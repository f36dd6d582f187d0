// Package alpaca adapts the Alpaca market data API to the candles MarketRepository.
package alpaca

import (
	"context"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
)

// Config holds Alpaca credentials. Feed is "iex" (free plan) or "sip".
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string
}

// LoadConfig reads ALPACA_* variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:    os.Getenv("ALPACA_API_KEY"),
		APISecret: os.Getenv("ALPACA_API_SECRET"),
		BaseURL:   os.Getenv("ALPACA_DATA_URL"),
		Feed:      os.Getenv("ALPACA_FEED"),
	}
	if cfg.Feed == "" {
		cfg.Feed = string(marketdata.IEX)
	}
	return cfg
}

// newYork is the exchange time zone. Alpaca stamps daily bars at midnight New York time.
var newYork = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("alpaca: load location %s: %v", name, err))
	}
	return loc
}

// sessionDate maps a bar timestamp to its trading day at 00:00 UTC, the
// convention of stored daily candles.
func sessionDate(ts time.Time) time.Time {
	y, mo, d := ts.In(newYork).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// barsGetter is the subset of *marketdata.Client used here.
type barsGetter interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Market fetches split- and dividend-adjusted daily bars.
type Market struct {
	client barsGetter
	feed   string
}

var _ usecase.MarketRepository = (*Market)(nil)

// NewMarket builds a Market backed by the official Alpaca client.
func NewMarket(cfg Config) *Market {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	return newMarket(client, cfg.Feed)
}

func newMarket(client barsGetter, feed string) *Market {
	return &Market{client: client, feed: feed}
}

// GetTimeSeriesRange returns daily bars for every session in [from, to], oldest first.
// Only the daily interval is supported.
func (m *Market) GetTimeSeriesRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	if interval != entity.DailyInterval {
		return nil, fmt.Errorf("alpaca: unsupported interval %q", interval)
	}
	// the SDK call is not context-aware
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := m.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      from.UTC(),
		End:        to.UTC().AddDate(0, 0, 1).Add(-time.Second),
		Feed:       marketdata.Feed(m.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca: get bars %s: %w", symbol, err)
	}

	candles := make([]entity.Candle, 0, len(bars))
	for _, b := range bars {
		candles = append(candles, entity.Candle{
			Time:   sessionDate(b.Timestamp),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		})
	}
	entity.SortByTime(candles)
	return candles, nil
}
