// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"time"

	backtestadapters "stock_backtest/internal/feature/backtest/adapters"
	backtestusecase "stock_backtest/internal/feature/backtest/usecase"
	candlesusecase "stock_backtest/internal/feature/candles/usecase"
	"stock_backtest/internal/platform/cache"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/externalapi/alpaca"
	"stock_backtest/internal/platform/externalapi/twelvedata"
	infrahttp "stock_backtest/internal/platform/http"
	"stock_backtest/internal/shared/ratelimiter"

	"github.com/redis/go-redis/v9"
)

// alpacaRequestsPerMin is the free-plan quota of the Alpaca data API.
const alpacaRequestsPerMin = 200

// Market pairs a market data provider with a limiter sized to its quota.
type Market struct {
	Repo    candlesusecase.MarketRepository
	Limiter *ratelimiter.RateLimiter
}

// NewMarket creates the provider named by source (twelvedata or alpaca).
func NewMarket(source string) (Market, error) {
	switch source {
	case config.SourceTwelveData:
		cfg := twelvedata.LoadConfig()
		httpClient := infrahttp.NewHTTPClient(cfg.Timeout, "")
		return Market{
			Repo:    twelvedata.NewTwelveDataMarket(cfg, httpClient),
			Limiter: ratelimiter.NewRateLimiter(cfg.RequestsPerMin, time.Minute),
		}, nil
	case config.SourceAlpaca:
		return Market{
			Repo:    alpaca.NewMarket(alpaca.LoadConfig()),
			Limiter: ratelimiter.NewRateLimiter(alpacaRequestsPerMin, time.Minute),
		}, nil
	default:
		return Market{}, fmt.Errorf("%w: %q is not a market data provider", config.ErrInvalidConfig, source)
	}
}

// NewCandleRepository wraps repo in the Redis cache, expiring entries at the
// next daily market refresh. A nil rdb disables caching.
func NewCandleRepository(rdb *redis.Client, repo candlesusecase.CandleRepository) *cache.CachingCandleRepository {
	return cache.NewCachingCandleRepository(rdb, cache.TimeUntilMarketRefresh(), repo, "candles")
}

// NewPriceSource returns the backtest price history for source. db reads
// stored candles; twelvedata and alpaca fetch from the provider on each run.
func NewPriceSource(source string, candles backtestadapters.CandleReader) (backtestusecase.PriceHistoryRepository, error) {
	if source == config.SourceDB {
		return backtestadapters.NewCandleSource(candles), nil
	}
	m, err := NewMarket(source)
	if err != nil {
		return nil, err
	}
	return backtestadapters.NewMarketSource(m.Repo, m.Limiter), nil
}
