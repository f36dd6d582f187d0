// Package crossover implements the dual moving-average crossover backtest:
// moving averages, signals and positions, return attribution and
// performance metrics. Every function is pure.
package crossover

import "stock_backtest/internal/feature/backtest/domain/entity"

// MovingAverage returns the simple moving average of closes over window,
// aligned with closes. The first window-1 entries are undefined; when window
// exceeds len(closes) (or is not positive) every entry is undefined.
func MovingAverage(closes []float64, window int) entity.Series {
	out := make(entity.Series, len(closes))
	if window <= 0 || window > len(closes) {
		return out
	}

	var sum float64
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = entity.Some(sum / float64(window))
		}
	}
	return out
}
