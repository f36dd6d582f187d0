// Package entity defines the domain models for the candles feature.
package entity

import (
	"slices"
	"time"
)

// DailyInterval is the candle interval used for backtests.
const DailyInterval = "1day"

// Candle is one OHLCV bar of a stock symbol.
type Candle struct {
	Symbol   string    // Ticker symbol (e.g., "AAPL", "7203.T")
	Interval string    // Bar interval (e.g., "1day", "1week")
	Time     time.Time // Start of the bar period
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
}

// SortByTime orders candles oldest first. Providers and the repository
// return the newest bar first.
func SortByTime(cs []Candle) {
	slices.SortStableFunc(cs, func(a, b Candle) int {
		return a.Time.Compare(b.Time)
	})
}
