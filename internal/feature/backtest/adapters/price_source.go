// Package adapters connects the backtest usecase to candle storage and market data providers.
package adapters

import (
	"context"
	"fmt"
	"slices"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"
	candle "stock_backtest/internal/feature/candles/domain/entity"
)

// CandleReader reads stored candles for [from, to].
type CandleReader interface {
	FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]candle.Candle, error)
}

// MarketReader fetches candles from an external provider.
type MarketReader interface {
	GetTimeSeriesRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]candle.Candle, error)
}

// Limiter throttles provider calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// CandleSource serves closes from the candles table (optionally behind the Redis cache).
type CandleSource struct {
	repo CandleReader
}

var _ usecase.PriceHistoryRepository = (*CandleSource)(nil)

// NewCandleSource returns a price source reading daily candles from repo.
func NewCandleSource(repo CandleReader) *CandleSource {
	return &CandleSource{repo: repo}
}

// GetCloses implements usecase.PriceHistoryRepository.
func (s *CandleSource) GetCloses(ctx context.Context, symbol string, from, to time.Time) (entity.PriceSeries, error) {
	cs, err := s.repo.FindRange(ctx, symbol, candle.DailyInterval, from, to)
	if err != nil {
		return nil, fmt.Errorf("read candles: %w", err)
	}
	return toSeries(cs), nil
}

// MarketSource fetches closes directly from a provider on every run.
type MarketSource struct {
	market  MarketReader
	limiter Limiter
}

var _ usecase.PriceHistoryRepository = (*MarketSource)(nil)

// NewMarketSource returns a price source backed by market. limiter may be nil.
func NewMarketSource(market MarketReader, limiter Limiter) *MarketSource {
	return &MarketSource{market: market, limiter: limiter}
}

// GetCloses implements usecase.PriceHistoryRepository.
func (s *MarketSource) GetCloses(ctx context.Context, symbol string, from, to time.Time) (entity.PriceSeries, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	cs, err := s.market.GetTimeSeriesRange(ctx, symbol, candle.DailyInterval, from, to)
	if err != nil {
		return nil, err
	}
	return toSeries(cs), nil
}

// toSeries maps candles to closes, oldest first. The input is left untouched.
func toSeries(cs []candle.Candle) entity.PriceSeries {
	sorted := slices.Clone(cs)
	candle.SortByTime(sorted)

	out := make(entity.PriceSeries, len(sorted))
	for i, c := range sorted {
		out[i] = entity.PricePoint{Time: c.Time, Close: c.Close}
	}
	return out
}
