package crossover_test

import (
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// dailySeries builds a series with one close per calendar day starting at day0.
func dailySeries(closes ...float64) entity.PriceSeries {
	out := make(entity.PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = entity.PricePoint{Time: day0.AddDate(0, 0, i), Close: c}
	}
	return out
}

func flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func values(xs ...float64) entity.Series {
	out := make(entity.Series, len(xs))
	for i, x := range xs {
		out[i] = entity.Some(x)
	}
	return out
}
